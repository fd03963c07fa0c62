package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"smartbin-backend/internal/fill"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/websocket"
)

// Unauthenticated requests distinguish registered routes (401 from the auth
// middleware) from unregistered ones (404 from the router).
func TestRouterRegistersDocumentedPaths(t *testing.T) {
	hub := websocket.NewHub()
	calibration := fill.DefaultCalibration()
	router := newRouter(
		nil, nil,
		fill.NewTracker(nil),
		calibration,
		nil,
		services.NewAssignmentService(nil, nil, hub),
		services.NewLifecycleService(nil),
		hub,
	)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		// Both spellings of the latest-log endpoint resolve.
		{http.MethodGet, "/api/activity-log/latest?bin_id=bin1", http.StatusUnauthorized},
		{http.MethodGet, "/api/activity-logs/latest?bin_id=bin1", http.StatusUnauthorized},
		{http.MethodGet, "/api/activity-logs", http.StatusUnauthorized},
		{http.MethodGet, "/api/bins", http.StatusUnauthorized},
		{http.MethodGet, "/api/notifications", http.StatusUnauthorized},
		{http.MethodPost, "/api/activity-logs", http.StatusUnauthorized},
		{http.MethodGet, "/api/nonexistent", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}
