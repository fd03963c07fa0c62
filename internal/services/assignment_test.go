package services

import (
	"errors"
	"fmt"
	"testing"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory AssignmentStore.
type fakeStore struct {
	users         map[string]*models.User
	bins          map[string]*models.Bin
	logs          []*models.ActivityLog
	notifications []*models.Notification
	tokens        map[string][]string

	failNotification   bool
	failBinBookkeeping bool
	binAssignments     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*models.User),
		bins:   make(map[string]*models.Bin),
		tokens: make(map[string][]string),
	}
}

func (f *fakeStore) GetUserByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, database.ErrNotFound)
}

func (f *fakeStore) GetBinByID(id string) (*models.Bin, error) {
	if b, ok := f.bins[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("bin %s: %w", id, database.ErrNotFound)
}

func (f *fakeStore) GetBinByCode(code string) (*models.Bin, error) {
	for _, b := range f.bins {
		if b.BinCode == code {
			return b, nil
		}
	}
	return nil, fmt.Errorf("bin code %s: %w", code, database.ErrNotFound)
}

func (f *fakeStore) CreateBin(bin *models.Bin) error {
	if bin.ID == "" {
		bin.ID = "generated-" + bin.BinCode
	}
	f.bins[bin.ID] = bin
	return nil
}

func (f *fakeStore) CreateActivityLog(logRec *models.ActivityLog) error {
	if logRec.ID == "" {
		logRec.ID = fmt.Sprintf("log-%d", len(f.logs)+1)
	}
	f.logs = append(f.logs, logRec)
	return nil
}

func (f *fakeStore) UpdateBinAssignment(binID, userID string, level int) error {
	if f.failBinBookkeeping {
		return errors.New("bookkeeping down")
	}
	f.binAssignments++
	return nil
}

func (f *fakeStore) CreateNotification(n *models.Notification) error {
	if f.failNotification {
		return errors.New("notification store down")
	}
	if n.ID == "" {
		n.ID = fmt.Sprintf("notif-%d", len(f.notifications)+1)
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) FCMTokensForUser(userID string) ([]string, error) {
	return f.tokens[userID], nil
}

func seedStaffAndBin(store *fakeStore) {
	store.users["staff-1"] = &models.User{ID: "staff-1", Name: "Janitor", Role: "janitor"}
	store.bins["bin-id-1"] = &models.Bin{ID: "bin-id-1", BinCode: "bin1", Floor: 3, Status: "active"}
}

func assignmentRequest() models.CreateActivityLogRequest {
	return models.CreateActivityLogRequest{
		BinID:        "bin-id-1",
		UserID:       "staff-1",
		BinLevel:     72,
		Floor:        3,
		AssignedTask: "Empty bin",
		Date:         "2026-08-28",
		Time:         "14:05",
	}
}

func TestCreateAssignmentRoundTrip(t *testing.T) {
	store := newFakeStore()
	seedStaffAndBin(store)
	service := NewAssignmentService(store, nil, nil)

	logRec, err := service.CreateAssignment(assignmentRequest())
	require.NoError(t, err)

	assert.Equal(t, models.LogStatusAssigned, logRec.Status)
	assert.Equal(t, 72, logRec.BinLevel)
	assert.Equal(t, "bin-id-1", logRec.BinID)
	assert.Equal(t, "staff-1", logRec.UserID)

	require.Len(t, store.notifications, 1)
	notification := store.notifications[0]
	assert.Equal(t, "staff-1", notification.UserID)
	assert.Equal(t, models.NotifTypeTaskAssigned, notification.NotifType)
	assert.Contains(t, notification.Message, "floor 3")
	assert.Contains(t, notification.Message, "72%")
	assert.Contains(t, notification.Message, "bin1")

	assert.Equal(t, 1, store.binAssignments)
}

func TestCreateAssignmentResolvesBinByCode(t *testing.T) {
	store := newFakeStore()
	seedStaffAndBin(store)
	service := NewAssignmentService(store, nil, nil)

	req := assignmentRequest()
	req.BinID = "bin1" // code, not id

	logRec, err := service.CreateAssignment(req)
	require.NoError(t, err)
	assert.Equal(t, "bin-id-1", logRec.BinID)
}

func TestCreateAssignmentAutoProvisionsBin(t *testing.T) {
	store := newFakeStore()
	store.users["staff-1"] = &models.User{ID: "staff-1", Role: "janitor"}
	service := NewAssignmentService(store, nil, nil)

	req := assignmentRequest()
	req.BinID = "bin9"

	logRec, err := service.CreateAssignment(req)
	require.NoError(t, err)

	bin, err := store.GetBinByCode("bin9")
	require.NoError(t, err)
	assert.Equal(t, bin.ID, logRec.BinID)
	assert.Equal(t, "active", bin.Status)
}

func TestCreateAssignmentUnknownStaff(t *testing.T) {
	store := newFakeStore()
	seedStaffAndBin(store)
	service := NewAssignmentService(store, nil, nil)

	req := assignmentRequest()
	req.UserID = "nobody"

	_, err := service.CreateAssignment(req)
	assert.True(t, errors.Is(err, ErrStaffNotFound))
	assert.Empty(t, store.logs)
	assert.Empty(t, store.notifications)
}

func TestCreateAssignmentSurvivesNotificationFailure(t *testing.T) {
	store := newFakeStore()
	seedStaffAndBin(store)
	store.failNotification = true
	service := NewAssignmentService(store, nil, nil)

	logRec, err := service.CreateAssignment(assignmentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusAssigned, logRec.Status)
	assert.Empty(t, store.notifications)
}

func TestCreateAssignmentSurvivesBinBookkeepingFailure(t *testing.T) {
	store := newFakeStore()
	seedStaffAndBin(store)
	store.failBinBookkeeping = true
	service := NewAssignmentService(store, nil, nil)

	logRec, err := service.CreateAssignment(assignmentRequest())
	require.NoError(t, err)
	require.Len(t, store.logs, 1)
	assert.Equal(t, logRec.ID, store.logs[0].ID)
	// Notification still goes out even when the bookkeeping update failed.
	assert.Len(t, store.notifications, 1)
}

func TestValidateAssignmentRequest(t *testing.T) {
	valid := assignmentRequest()
	assert.NoError(t, ValidateAssignmentRequest(valid))

	missingUser := valid
	missingUser.UserID = " "
	assert.Error(t, ValidateAssignmentRequest(missingUser))

	missingBin := valid
	missingBin.BinID = ""
	assert.Error(t, ValidateAssignmentRequest(missingBin))

	missingTask := valid
	missingTask.AssignedTask = ""
	assert.Error(t, ValidateAssignmentRequest(missingTask))

	badLevel := valid
	badLevel.BinLevel = 140
	assert.Error(t, ValidateAssignmentRequest(badLevel))
}
