package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
	"smartbin-backend/pkg/utils"
)

// CreateActivityLog assigns a collection task to a janitor. The heavy lifting
// (bin resolution, snapshotting, notification fan-out) lives in the
// assignment service.
func CreateActivityLog(svc *services.AssignmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateActivityLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := services.ValidateAssignmentRequest(req); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		logRec, err := svc.CreateAssignment(req)
		if err != nil {
			if errors.Is(err, services.ErrStaffNotFound) {
				utils.Error(w, http.StatusNotFound, "Assigned user not found")
				return
			}
			log.Printf("❌ Failed to create activity log: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to create activity log")
			return
		}

		utils.JSON(w, http.StatusCreated, logRec.ToActivityLogResponse())
	}
}

// UpdateActivityLog moves a task through its lifecycle. Invalid or backwards
// transitions come back as 422 so the mobile app can show a precise error.
func UpdateActivityLog(svc *services.LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logID := chi.URLParam(r, "id")

		var req models.UpdateActivityLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		logRec, err := svc.UpdateStatus(logID, req)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrNotFound):
				utils.Error(w, http.StatusNotFound, "Activity log not found")
			case errors.Is(err, services.ErrInvalidStatus):
				utils.Error(w, http.StatusUnprocessableEntity, "Invalid status value")
			case errors.Is(err, services.ErrLogAlreadyDone):
				utils.Error(w, http.StatusUnprocessableEntity, "Completed tasks cannot be reopened")
			default:
				log.Printf("❌ Failed to update activity log %s: %v", logID, err)
				utils.Error(w, http.StatusInternalServerError, "Failed to update activity log")
			}
			return
		}

		utils.JSON(w, http.StatusOK, logRec.ToActivityLogResponse())
	}
}

// GetActivityLogs lists logs, optionally filtered by user, bin or status.
// "pending" is accepted as a legacy alias for "assigned" in the filter.
func GetActivityLogs(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM activity_logs WHERE 1=1`
		args := []interface{}{}
		argPos := 1

		if userID := r.URL.Query().Get("user_id"); userID != "" {
			query += ` AND u_id = $` + strconv.Itoa(argPos)
			args = append(args, userID)
			argPos++
		}
		if binID := r.URL.Query().Get("bin_id"); binID != "" {
			query += ` AND bin_id = $` + strconv.Itoa(argPos)
			args = append(args, binID)
			argPos++
		}
		if status := strings.ToLower(r.URL.Query().Get("status")); status != "" {
			if status == "pending" {
				status = models.LogStatusAssigned
			}
			query += ` AND status = $` + strconv.Itoa(argPos)
			args = append(args, status)
			argPos++
		}

		query += ` ORDER BY created_at DESC`

		var logs []models.ActivityLog
		if err := db.Select(&logs, query, args...); err != nil {
			log.Printf("❌ Failed to fetch activity logs: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch activity logs")
			return
		}

		responses := make([]models.ActivityLogResponse, len(logs))
		for i, logRec := range logs {
			responses[i] = logRec.ToActivityLogResponse()
		}

		utils.JSON(w, http.StatusOK, responses)
	}
}

// GetLatestActivityLog returns the most recent log for a bin, used by the
// dashboard to show who is currently responsible for it.
func GetLatestActivityLog(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.URL.Query().Get("bin_id")
		if binID == "" {
			utils.Error(w, http.StatusBadRequest, "bin_id query parameter is required")
			return
		}

		logRec, err := store.LatestActivityLogForBin(binID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Error(w, http.StatusNotFound, "No activity logs for this bin")
				return
			}
			log.Printf("❌ Failed to fetch latest activity log: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch activity log")
			return
		}

		utils.JSON(w, http.StatusOK, logRec.ToActivityLogResponse())
	}
}
