package database

import (
	"errors"
	"testing"

	"smartbin-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestMarkNotificationRead(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE notifications SET status = 'read' WHERE id").
		WithArgs("notif-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MarkNotificationRead("notif-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE notifications SET status = 'read' WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkNotificationRead("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMarkAllNotificationsRead(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE notifications SET status = 'read' WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := store.MarkAllNotificationsRead("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGetBinByCodeNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM bins WHERE bin_code").
		WithArgs("bin9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetBinByCode("bin9")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveSensorEventFillsDefaults(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO sensor_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := int64(1756300000)
	event := &models.SensorEvent{
		BinID:        "bin-1",
		Height:       18,
		Weight:       4200,
		Type:         models.SensorEventStarted,
		StartingTime: &now,
		FillLevel:    88,
	}

	err := store.SaveSensorEvent(event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NotZero(t, event.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
