package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/models"
)

// ErrStaffNotFound is returned when the assignee does not exist. Unlike bins,
// users are never auto-provisioned.
var ErrStaffNotFound = errors.New("assigned staff not found")

// AssignmentStore is the persistence surface the assignment workflow needs.
// *database.Store satisfies it; tests use fakes.
type AssignmentStore interface {
	GetUserByID(id string) (*models.User, error)
	GetBinByID(id string) (*models.Bin, error)
	GetBinByCode(code string) (*models.Bin, error)
	CreateBin(bin *models.Bin) error
	CreateActivityLog(logRec *models.ActivityLog) error
	UpdateBinAssignment(binID, userID string, level int) error
	CreateNotification(n *models.Notification) error
	FCMTokensForUser(userID string) ([]string, error)
}

// Broadcaster pushes a payload to one connected dashboard user. Satisfied by
// the websocket hub.
type Broadcaster interface {
	BroadcastToUser(userID string, data interface{})
}

// AssignmentService creates cleaning tasks and the notifications that go with
// them.
type AssignmentService struct {
	store AssignmentStore
	fcm   *FCMService // nil when push is not configured
	hub   Broadcaster // nil in tests
}

func NewAssignmentService(store AssignmentStore, fcm *FCMService, hub Broadcaster) *AssignmentService {
	return &AssignmentService{store: store, fcm: fcm, hub: hub}
}

// CreateAssignment persists an ActivityLog for a bin+staff pair and emits
// exactly one notification to the assignee. The bin level is a snapshot taken
// at assignment time; it is never recomputed from live sensor data.
//
// The bin reference is permissive: a raw id lookup falls back to a
// human-readable code lookup, and a truly absent bin is auto-provisioned as a
// placeholder so partially-seeded facilities can still assign tasks.
// Everything after the ActivityLog write is best-effort: bin bookkeeping and
// notification failures are logged, not rolled back.
func (s *AssignmentService) CreateAssignment(req models.CreateActivityLogRequest) (*models.ActivityLog, error) {
	staff, err := s.store.GetUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStaffNotFound, req.UserID)
		}
		return nil, fmt.Errorf("resolve staff %s: %w", req.UserID, err)
	}

	bin, err := s.resolveBin(req.BinID, req.Floor, req.BinLevel)
	if err != nil {
		return nil, err
	}

	logRec := &models.ActivityLog{
		UserID:       staff.ID,
		BinID:        bin.ID,
		BinLevel:     req.BinLevel,
		Floor:        req.Floor,
		AssignedTask: req.AssignedTask,
		Date:         req.Date,
		Time:         req.Time,
		Status:       models.LogStatusAssigned,
	}
	if err := s.store.CreateActivityLog(logRec); err != nil {
		return nil, fmt.Errorf("persist activity log: %w", err)
	}

	// Best-effort bin bookkeeping; the task already exists.
	if err := s.store.UpdateBinAssignment(bin.ID, staff.ID, req.BinLevel); err != nil {
		log.Printf("⚠️  Bin bookkeeping failed for %s after assignment %s: %v", bin.ID, logRec.ID, err)
	}

	s.notifyAssignee(staff, bin, logRec)

	return logRec, nil
}

// resolveBin looks a bin up by id, then by code, then provisions a
// placeholder.
func (s *AssignmentService) resolveBin(ref string, floor, level int) (*models.Bin, error) {
	bin, err := s.store.GetBinByID(ref)
	if err == nil {
		return bin, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("resolve bin %s: %w", ref, err)
	}

	bin, err = s.store.GetBinByCode(ref)
	if err == nil {
		return bin, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("resolve bin by code %s: %w", ref, err)
	}

	// Deliberately permissive: tolerate partially-seeded facility data.
	placeholder := &models.Bin{
		BinCode:  ref,
		Type:     "general",
		Location: "unknown",
		Floor:    floor,
		BinLevel: level,
		Capacity: 120,
		Status:   "active",
	}
	if err := s.store.CreateBin(placeholder); err != nil {
		return nil, fmt.Errorf("auto-provision bin %s: %w", ref, err)
	}
	log.Printf("⚠️  Auto-provisioned placeholder bin %s (%s)", placeholder.ID, ref)
	return placeholder, nil
}

// notifyAssignee writes exactly one Notification row and pushes it out over
// FCM and the websocket hub. All of it is best-effort.
func (s *AssignmentService) notifyAssignee(staff *models.User, bin *models.Bin, logRec *models.ActivityLog) {
	notification := &models.Notification{
		UserID:    staff.ID,
		BinID:     bin.ID,
		NotifType: models.NotifTypeTaskAssigned,
		Message: fmt.Sprintf("New task: %s — bin %s on floor %d is at %d%%.",
			logRec.AssignedTask, bin.BinCode, logRec.Floor, logRec.BinLevel),
	}

	if err := s.store.CreateNotification(notification); err != nil {
		log.Printf("⚠️  Notification write failed for assignment %s (user %s): %v", logRec.ID, staff.ID, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToUser(staff.ID, map[string]interface{}{
			"type": "notification",
			"data": notification.ToNotificationResponse(),
		})
	}

	if s.fcm == nil {
		return
	}
	tokens, err := s.store.FCMTokensForUser(staff.ID)
	if err != nil {
		log.Printf("⚠️  Could not load FCM tokens for user %s: %v", staff.ID, err)
		return
	}
	for _, token := range tokens {
		if err := s.fcm.SendTaskAssignedNotification(token, bin.BinCode, logRec.Floor, logRec.BinLevel, logRec.AssignedTask); err != nil {
			log.Printf("⚠️  FCM push failed for user %s: %v", staff.ID, err)
		}
	}
}

// ValidateAssignmentRequest rejects requests missing required identifiers.
func ValidateAssignmentRequest(req models.CreateActivityLogRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return errors.New("u_id is required")
	}
	if strings.TrimSpace(req.BinID) == "" {
		return errors.New("bin_id is required")
	}
	if strings.TrimSpace(req.AssignedTask) == "" {
		return errors.New("assigned_task is required")
	}
	if req.BinLevel < 0 || req.BinLevel > 100 {
		return errors.New("bin_level must be between 0 and 100")
	}
	return nil
}
