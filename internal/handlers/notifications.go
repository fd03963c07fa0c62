package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/models"
	"smartbin-backend/pkg/utils"
)

// GetNotifications lists a user's notifications, newest first.
func GetNotifications(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			utils.Error(w, http.StatusBadRequest, "user_id query parameter is required")
			return
		}

		notifications, err := store.NotificationsForUser(userID)
		if err != nil {
			log.Printf("❌ Failed to fetch notifications for %s: %v", userID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch notifications")
			return
		}

		responses := make([]models.NotificationResponse, len(notifications))
		for i, n := range notifications {
			responses[i] = n.ToNotificationResponse()
		}

		utils.JSON(w, http.StatusOK, responses)
	}
}

// MarkNotificationRead flips a single notification to read. Marking an
// already-read notification succeeds without complaint.
func MarkNotificationRead(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notifID := chi.URLParam(r, "id")

		if err := store.MarkNotificationRead(notifID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Error(w, http.StatusNotFound, "Notification not found")
				return
			}
			log.Printf("❌ Failed to mark notification %s read: %v", notifID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to update notification")
			return
		}

		utils.Success(w, "Notification marked as read")
	}
}

// MarkAllNotificationsRead marks every unread notification for a user.
func MarkAllNotificationsRead(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			utils.Error(w, http.StatusBadRequest, "user_id is required")
			return
		}

		count, err := store.MarkAllNotificationsRead(req.UserID)
		if err != nil {
			log.Printf("❌ Failed to mark notifications read for %s: %v", req.UserID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to update notifications")
			return
		}

		utils.JSON(w, http.StatusOK, map[string]interface{}{
			"message": "All notifications marked as read",
			"updated": count,
		})
	}
}
