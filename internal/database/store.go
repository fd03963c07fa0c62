package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the database handle with the queries the services need.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.Get(&user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

func (s *Store) GetBinByID(id string) (*models.Bin, error) {
	var bin models.Bin
	err := s.db.Get(&bin, `SELECT * FROM bins WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bin %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bin %s: %w", id, err)
	}
	return &bin, nil
}

func (s *Store) GetBinByCode(code string) (*models.Bin, error) {
	var bin models.Bin
	err := s.db.Get(&bin, `SELECT * FROM bins WHERE bin_code = $1`, code)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bin code %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bin by code %s: %w", code, err)
	}
	return &bin, nil
}

func (s *Store) CreateBin(bin *models.Bin) error {
	if bin.ID == "" {
		bin.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	bin.CreatedAt = now
	bin.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO bins (id, bin_code, type, location, floor, bin_level, capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, bin.ID, bin.BinCode, bin.Type, bin.Location, bin.Floor, bin.BinLevel, bin.Capacity, bin.Status, bin.CreatedAt, bin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create bin %s: %w", bin.BinCode, err)
	}
	return nil
}

// UpdateBinAssignment records who a bin is assigned to and its level at
// assignment time. Best-effort bookkeeping; callers log and move on.
func (s *Store) UpdateBinAssignment(binID, userID string, level int) error {
	_, err := s.db.Exec(`
		UPDATE bins
		SET assigned_to = $1, bin_level = $2, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $3
	`, userID, level, binID)
	if err != nil {
		return fmt.Errorf("update bin %s assignment: %w", binID, err)
	}
	return nil
}

// UpdateBinLevel stores the latest computed level for dashboard listings.
func (s *Store) UpdateBinLevel(binID string, level int) error {
	_, err := s.db.Exec(`
		UPDATE bins
		SET bin_level = $1, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $2
	`, level, binID)
	if err != nil {
		return fmt.Errorf("update bin %s level: %w", binID, err)
	}
	return nil
}

// ResetBinAfterCollection models a physical emptying: level back to zero,
// status active, collection timestamp recorded, assignment cleared.
func (s *Store) ResetBinAfterCollection(binID string, collectedAt int64) error {
	_, err := s.db.Exec(`
		UPDATE bins
		SET bin_level = 0, status = 'active', last_collected = $1, assigned_to = NULL,
		    updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE id = $2
	`, collectedAt, binID)
	if err != nil {
		return fmt.Errorf("reset bin %s after collection: %w", binID, err)
	}
	return nil
}

func (s *Store) CreateActivityLog(logRec *models.ActivityLog) error {
	if logRec.ID == "" {
		logRec.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	logRec.CreatedAt = now
	logRec.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO activity_logs (id, user_id, bin_id, bin_level, floor, assigned_task, date, time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, logRec.ID, logRec.UserID, logRec.BinID, logRec.BinLevel, logRec.Floor, logRec.AssignedTask,
		logRec.Date, logRec.Time, logRec.Status, logRec.Notes, logRec.CreatedAt, logRec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create activity log for bin %s: %w", logRec.BinID, err)
	}
	return nil
}

func (s *Store) GetActivityLog(id string) (*models.ActivityLog, error) {
	var logRec models.ActivityLog
	err := s.db.Get(&logRec, `SELECT * FROM activity_logs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity log %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity log %s: %w", id, err)
	}
	return &logRec, nil
}

func (s *Store) UpdateActivityLog(logRec *models.ActivityLog) error {
	logRec.UpdatedAt = time.Now().Unix()
	_, err := s.db.Exec(`
		UPDATE activity_logs
		SET status = $1, notes = $2, start_time = $3, end_time = $4, completion_date = $5, updated_at = $6
		WHERE id = $7
	`, logRec.Status, logRec.Notes, logRec.StartTime, logRec.EndTime, logRec.CompletionDate, logRec.UpdatedAt, logRec.ID)
	if err != nil {
		return fmt.Errorf("update activity log %s: %w", logRec.ID, err)
	}
	return nil
}

// LatestActivityLogForBin returns the most recent task for a bin, used to seed
// a new assignment's displayed start time.
func (s *Store) LatestActivityLogForBin(binID string) (*models.ActivityLog, error) {
	var logRec models.ActivityLog
	err := s.db.Get(&logRec, `
		SELECT * FROM activity_logs
		WHERE bin_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, binID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity log for bin %s: %w", binID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest activity log for bin %s: %w", binID, err)
	}
	return &logRec, nil
}

func (s *Store) CreateNotification(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if n.CreatedAt == 0 {
		n.CreatedAt = now
	}
	if n.SendTime == 0 {
		n.SendTime = now
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusSent
	}

	_, err := s.db.Exec(`
		INSERT INTO notifications (id, user_id, bin_id, message, notif_type, created_at, send_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, n.UserID, n.BinID, n.Message, n.NotifType, n.CreatedAt, n.SendTime, n.Status)
	if err != nil {
		return fmt.Errorf("create notification for user %s: %w", n.UserID, err)
	}
	return nil
}

// MarkNotificationRead applies the one-way sent -> read transition. Marking an
// already-read notification again is a no-op, not an error.
func (s *Store) MarkNotificationRead(id string) error {
	result, err := s.db.Exec(`UPDATE notifications SET status = 'read' WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead transitions every sent notification for a user.
func (s *Store) MarkAllNotificationsRead(userID string) (int64, error) {
	result, err := s.db.Exec(`
		UPDATE notifications SET status = 'read' WHERE user_id = $1 AND status = 'sent'
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read for user %s: %w", userID, err)
	}
	return result.RowsAffected()
}

func (s *Store) NotificationsForUser(userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.db.Select(&notifications, `
		SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

// SaveSensorEvent persists a threshold crossing. Satisfies fill.EventSink.
func (s *Store) SaveSensorEvent(event *models.SensorEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.Exec(`
		INSERT INTO sensor_events (id, bin_id, height, weight, type, starting_time, full_bin_time, fill_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.BinID, event.Height, event.Weight, event.Type,
		event.StartingTime, event.FullBinTime, event.FillLevel, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("save sensor event for bin %s: %w", event.BinID, err)
	}
	return nil
}

func (s *Store) SensorEventsForBin(binID string, limit int) ([]models.SensorEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	events := []models.SensorEvent{}
	err := s.db.Select(&events, `
		SELECT * FROM sensor_events
		WHERE bin_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, binID, limit)
	if err != nil {
		return nil, fmt.Errorf("sensor events for bin %s: %w", binID, err)
	}
	return events, nil
}

func (s *Store) FCMTokensForUser(userID string) ([]string, error) {
	tokens := []string{}
	err := s.db.Select(&tokens, `SELECT token FROM fcm_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("fcm tokens for user %s: %w", userID, err)
	}
	return tokens, nil
}

func (s *Store) UpsertFCMToken(userID, token, deviceType string) error {
	_, err := s.db.Exec(`
		INSERT INTO fcm_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, device_type = EXCLUDED.device_type,
		              updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
	`, userID, token, deviceType)
	if err != nil {
		return fmt.Errorf("upsert fcm token for user %s: %w", userID, err)
	}
	return nil
}
