package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"smartbin-backend/internal/models"
)

// Lifecycle validation failures. Handlers map these to 422.
var (
	ErrInvalidStatus  = errors.New("unrecognized status value")
	ErrLogAlreadyDone = errors.New("completed tasks cannot be reopened")
)

// LifecycleStore is the persistence surface the status transitions need.
type LifecycleStore interface {
	GetActivityLog(id string) (*models.ActivityLog, error)
	UpdateActivityLog(logRec *models.ActivityLog) error
	ResetBinAfterCollection(binID string, collectedAt int64) error
}

// LifecycleService governs a task's status transitions:
// assigned -> inprogress -> completed/done.
type LifecycleService struct {
	store LifecycleStore
	now   func() time.Time
}

func NewLifecycleService(store LifecycleStore) *LifecycleService {
	return &LifecycleService{store: store, now: time.Now}
}

// UpdateStatus applies one transition to an activity log.
//
//   - moving into inprogress stamps start_time once; repeated inprogress
//     updates keep the original stamp
//   - moving into completed/done stamps end_time and completion_date
//     (caller-supplied or now) and resets the bin as a side effect
//   - notes are overwritten at any transition, never appended
//   - a completed log never moves back; the API has no revert path
func (s *LifecycleService) UpdateStatus(logID string, req models.UpdateActivityLogRequest) (*models.ActivityLog, error) {
	if !models.IsValidLogStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	logRec, err := s.store.GetActivityLog(logID)
	if err != nil {
		return nil, err
	}

	if models.IsTerminalStatus(logRec.Status) && !models.IsTerminalStatus(req.Status) {
		return nil, fmt.Errorf("%w: log %s", ErrLogAlreadyDone, logID)
	}

	now := s.now()

	if req.Status == models.LogStatusInProgress && logRec.StartTime == nil {
		start := now.Unix()
		if req.StartTime != nil {
			if parsed, err := time.Parse(time.RFC3339, *req.StartTime); err == nil {
				start = parsed.Unix()
			}
		}
		logRec.StartTime = &start
	}

	if models.IsTerminalStatus(req.Status) && !models.IsTerminalStatus(logRec.Status) {
		end := now.Unix()
		if req.EndTime != nil {
			if parsed, err := time.Parse(time.RFC3339, *req.EndTime); err == nil {
				end = parsed.Unix()
			}
		}
		logRec.EndTime = &end

		completion := now.Format("2006-01-02")
		if req.CompletionDate != nil && *req.CompletionDate != "" {
			completion = *req.CompletionDate
		}
		logRec.CompletionDate = &completion

		// The bin was physically emptied; the registry should say so.
		if err := s.store.ResetBinAfterCollection(logRec.BinID, end); err != nil {
			log.Printf("⚠️  Bin reset failed for %s after completing log %s: %v", logRec.BinID, logID, err)
		}
	}

	logRec.Status = req.Status
	if req.Notes != nil {
		logRec.Notes = req.Notes
	}

	if err := s.store.UpdateActivityLog(logRec); err != nil {
		return nil, fmt.Errorf("persist status transition for log %s: %w", logID, err)
	}

	return logRec, nil
}
