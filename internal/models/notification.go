package models

import "time"

// Notification status values. The transition is one-way: sent -> read.
const (
	NotificationStatusSent = "sent"
	NotificationStatusRead = "read"
)

const NotifTypeTaskAssigned = "task_assigned"

type Notification struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	BinID     string `json:"bin_id" db:"bin_id"`
	Message   string `json:"message" db:"message"`
	NotifType string `json:"notif_type" db:"notif_type"`
	CreatedAt int64  `json:"created_at" db:"created_at"` // Unix timestamp
	SendTime  int64  `json:"send_time" db:"send_time"`   // Unix timestamp
	Status    string `json:"status" db:"status"`
}

// NotificationResponse is what we send to the client with ISO timestamps
type NotificationResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	BinID        string `json:"bin_id"`
	Message      string `json:"message"`
	NotifType    string `json:"notif_type"`
	CreatedAtIso string `json:"createdAtIso"`
	SendTimeIso  string `json:"sendTimeIso"`
	Status       string `json:"status"`
}

// ToNotificationResponse converts a Notification to NotificationResponse
func (n *Notification) ToNotificationResponse() NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		UserID:       n.UserID,
		BinID:        n.BinID,
		Message:      n.Message,
		NotifType:    n.NotifType,
		CreatedAtIso: time.Unix(n.CreatedAt, 0).Format(time.RFC3339),
		SendTimeIso:  time.Unix(n.SendTime, 0).Format(time.RFC3339),
		Status:       n.Status,
	}
}
