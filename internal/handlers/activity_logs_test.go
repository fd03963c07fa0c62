package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
)

type fakeLifecycleStore struct {
	logs      map[string]*models.ActivityLog
	binResets []string
}

func (f *fakeLifecycleStore) GetActivityLog(id string) (*models.ActivityLog, error) {
	logRec, ok := f.logs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	clone := *logRec
	return &clone, nil
}

func (f *fakeLifecycleStore) UpdateActivityLog(logRec *models.ActivityLog) error {
	clone := *logRec
	f.logs[logRec.ID] = &clone
	return nil
}

func (f *fakeLifecycleStore) ResetBinAfterCollection(binID string, collectedAt int64) error {
	f.binResets = append(f.binResets, binID)
	return nil
}

func lifecycleRouter(store *fakeLifecycleStore) *chi.Mux {
	r := chi.NewRouter()
	r.Put("/api/activity-logs/{id}", UpdateActivityLog(services.NewLifecycleService(store)))
	return r
}

func putJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateActivityLogCompletesTask(t *testing.T) {
	store := &fakeLifecycleStore{logs: map[string]*models.ActivityLog{
		"log-1": {ID: "log-1", BinID: "bin-9", UserID: "jan-1", Status: models.LogStatusInProgress},
	}}
	router := lifecycleRouter(store)

	rec := putJSON(t, router, "/api/activity-logs/log-1", map[string]string{"status": "completed"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ActivityLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.LogStatusCompleted, resp.Status)
	assert.NotNil(t, resp.CompletionDate)
	assert.Equal(t, []string{"bin-9"}, store.binResets)
}

func TestUpdateActivityLogInvalidStatus(t *testing.T) {
	store := &fakeLifecycleStore{logs: map[string]*models.ActivityLog{
		"log-1": {ID: "log-1", BinID: "bin-9", Status: models.LogStatusAssigned},
	}}
	router := lifecycleRouter(store)

	rec := putJSON(t, router, "/api/activity-logs/log-1", map[string]string{"status": "archived"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, models.LogStatusAssigned, store.logs["log-1"].Status)
}

func TestUpdateActivityLogReopenRejected(t *testing.T) {
	store := &fakeLifecycleStore{logs: map[string]*models.ActivityLog{
		"log-1": {ID: "log-1", BinID: "bin-9", Status: models.LogStatusCompleted},
	}}
	router := lifecycleRouter(store)

	rec := putJSON(t, router, "/api/activity-logs/log-1", map[string]string{"status": "inprogress"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateActivityLogNotFound(t *testing.T) {
	store := &fakeLifecycleStore{logs: map[string]*models.ActivityLog{}}
	router := lifecycleRouter(store)

	rec := putJSON(t, router, "/api/activity-logs/ghost", map[string]string{"status": "inprogress"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeAssignmentStore struct {
	users         map[string]*models.User
	bins          map[string]*models.Bin
	logs          []*models.ActivityLog
	notifications []*models.Notification
}

func (f *fakeAssignmentStore) GetUserByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeAssignmentStore) GetBinByID(id string) (*models.Bin, error) {
	if b, ok := f.bins[id]; ok {
		return b, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeAssignmentStore) GetBinByCode(code string) (*models.Bin, error) {
	for _, b := range f.bins {
		if b.BinCode == code {
			return b, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeAssignmentStore) CreateBin(bin *models.Bin) error {
	f.bins[bin.ID] = bin
	return nil
}

func (f *fakeAssignmentStore) CreateActivityLog(logRec *models.ActivityLog) error {
	f.logs = append(f.logs, logRec)
	return nil
}

func (f *fakeAssignmentStore) UpdateBinAssignment(binID, userID string, level int) error {
	return nil
}

func (f *fakeAssignmentStore) CreateNotification(n *models.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeAssignmentStore) FCMTokensForUser(userID string) ([]string, error) {
	return nil, nil
}

func assignmentRouter(store *fakeAssignmentStore) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/activity-logs", CreateActivityLog(services.NewAssignmentService(store, nil, nil)))
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateActivityLogAssignsTask(t *testing.T) {
	janitorFloor := 3
	store := &fakeAssignmentStore{
		users: map[string]*models.User{
			"jan-1": {ID: "jan-1", Name: "Third Floor Cleaner", Role: "janitor", Floor: &janitorFloor},
		},
		bins: map[string]*models.Bin{
			"bin-9": {ID: "bin-9", BinCode: "bin1", Floor: 3},
		},
	}
	router := assignmentRouter(store)

	rec := postJSON(t, router, "/api/activity-logs", models.CreateActivityLogRequest{
		BinID:        "bin-9",
		UserID:       "jan-1",
		BinLevel:     88,
		Floor:        3,
		AssignedTask: "Empty the bin",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.ActivityLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.LogStatusAssigned, resp.Status)
	assert.Equal(t, 88, resp.BinLevel)
	require.Len(t, store.notifications, 1)
	assert.Equal(t, "jan-1", store.notifications[0].UserID)
}

func TestCreateActivityLogUnknownStaff(t *testing.T) {
	store := &fakeAssignmentStore{
		users: map[string]*models.User{},
		bins:  map[string]*models.Bin{"bin-9": {ID: "bin-9", BinCode: "bin1"}},
	}
	router := assignmentRouter(store)

	rec := postJSON(t, router, "/api/activity-logs", models.CreateActivityLogRequest{
		BinID:        "bin-9",
		UserID:       "ghost",
		BinLevel:     88,
		AssignedTask: "Empty the bin",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.logs)
	assert.Empty(t, store.notifications)
}

func TestCreateActivityLogValidation(t *testing.T) {
	store := &fakeAssignmentStore{users: map[string]*models.User{}, bins: map[string]*models.Bin{}}
	router := assignmentRouter(store)

	rec := postJSON(t, router, "/api/activity-logs", models.CreateActivityLogRequest{
		BinID:    "bin-9",
		BinLevel: 130,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
