package models

import "time"

// Activity log status values. "pending" is accepted as an input alias of
// "assigned" in filters but never stored.
const (
	LogStatusAssigned   = "assigned"
	LogStatusInProgress = "inprogress"
	LogStatusCompleted  = "completed"
	LogStatusDone       = "done"
)

// ActivityLog is a cleaning task assigned to a janitor for a bin. bin_level is
// a snapshot taken at assignment time and is never recomputed.
type ActivityLog struct {
	ID             string  `json:"id" db:"id"`
	UserID         string  `json:"u_id" db:"user_id"`
	BinID          string  `json:"bin_id" db:"bin_id"`
	BinLevel       int     `json:"bin_level" db:"bin_level"`
	Floor          int     `json:"floor" db:"floor"`
	AssignedTask   string  `json:"assigned_task" db:"assigned_task"`
	Date           string  `json:"date" db:"date"` // display date, e.g. "2026-08-28"
	Time           string  `json:"time" db:"time"` // display time, e.g. "14:05"
	Status         string  `json:"status" db:"status"`
	Notes          *string `json:"notes,omitempty" db:"notes"`
	StartTime      *int64  `json:"start_time,omitempty" db:"start_time"` // Unix timestamp
	EndTime        *int64  `json:"end_time,omitempty" db:"end_time"`     // Unix timestamp
	CompletionDate *string `json:"completion_date,omitempty" db:"completion_date"`
	CreatedAt      int64   `json:"created_at" db:"created_at"`
	UpdatedAt      int64   `json:"updated_at" db:"updated_at"`
}

// ActivityLogResponse is what we send to the client with ISO timestamps
type ActivityLogResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"u_id"`
	BinID          string  `json:"bin_id"`
	BinLevel       int     `json:"bin_level"`
	Floor          int     `json:"floor"`
	AssignedTask   string  `json:"assigned_task"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes,omitempty"`
	StartTimeIso   *string `json:"startTimeIso,omitempty"`
	EndTimeIso     *string `json:"endTimeIso,omitempty"`
	CompletionDate *string `json:"completion_date,omitempty"`
	CreatedAt      int64   `json:"created_at"`
}

// CreateActivityLogRequest is the request body for POST /api/activity-logs
type CreateActivityLogRequest struct {
	BinID        string `json:"bin_id"`
	UserID       string `json:"u_id"`
	BinLevel     int    `json:"bin_level"`
	Floor        int    `json:"floor"`
	AssignedTask string `json:"assigned_task"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// UpdateActivityLogRequest is the request body for PUT /api/activity-logs/:id.
// Timestamps are RFC3339 strings; missing values default to now.
type UpdateActivityLogRequest struct {
	Status         string  `json:"status"`
	Notes          *string `json:"notes,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	CompletionDate *string `json:"completion_date,omitempty"`
}

// IsTerminalStatus reports whether a status ends the task lifecycle.
func IsTerminalStatus(status string) bool {
	return status == LogStatusCompleted || status == LogStatusDone
}

// IsValidLogStatus reports whether a status value is recognized by the
// lifecycle at all.
func IsValidLogStatus(status string) bool {
	switch status {
	case LogStatusAssigned, LogStatusInProgress, LogStatusCompleted, LogStatusDone:
		return true
	}
	return false
}

// ToActivityLogResponse converts an ActivityLog to ActivityLogResponse
func (l *ActivityLog) ToActivityLogResponse() ActivityLogResponse {
	resp := ActivityLogResponse{
		ID:             l.ID,
		UserID:         l.UserID,
		BinID:          l.BinID,
		BinLevel:       l.BinLevel,
		Floor:          l.Floor,
		AssignedTask:   l.AssignedTask,
		Date:           l.Date,
		Time:           l.Time,
		Status:         l.Status,
		Notes:          l.Notes,
		CompletionDate: l.CompletionDate,
		CreatedAt:      l.CreatedAt,
	}

	if l.StartTime != nil {
		iso := time.Unix(*l.StartTime, 0).Format(time.RFC3339)
		resp.StartTimeIso = &iso
	}

	if l.EndTime != nil {
		iso := time.Unix(*l.EndTime, 0).Format(time.RFC3339)
		resp.EndTimeIso = &iso
	}

	return resp
}
