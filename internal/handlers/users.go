package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/middleware"
	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" || req.Name == "" {
			http.Error(w, "email, password and name are required", http.StatusBadRequest)
			return
		}

		switch req.Role {
		case "admin", "staff", "janitor":
		default:
			http.Error(w, "role must be admin, staff or janitor", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		user := models.User{
			ID:        uuid.New().String(),
			Email:     req.Email,
			Name:      req.Name,
			Role:      req.Role,
			Floor:     req.Floor,
			CreatedAt: time.Now().Unix(),
		}

		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, floor)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, user.ID, user.Email, string(hash), user.Name, user.Role, user.Floor)
		if err != nil {
			log.Printf("❌ Failed to create user %s: %v", req.Email, err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

		log.Printf("✅ Created user %s (%s)", user.Email, user.Role)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(user.ToUserResponse())
	}
}

func GetUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM users ORDER BY name ASC`
		args := []interface{}{}

		if role := r.URL.Query().Get("role"); role != "" {
			query = `SELECT * FROM users WHERE role = $1 ORDER BY name ASC`
			args = append(args, role)
		}

		var users []models.User
		if err := db.Select(&users, query, args...); err != nil {
			http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
			return
		}

		responses := make([]models.UserResponse, len(users))
		for i, user := range users {
			responses[i] = user.ToUserResponse()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(responses)
	}
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterFCMToken stores a push token for the authenticated user so task
// assignments can reach their device.
func RegisterFCMToken(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req RegisterFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Token == "" {
			http.Error(w, "token is required", http.StatusBadRequest)
			return
		}

		switch req.DeviceType {
		case "ios", "android", "web":
		default:
			http.Error(w, "device_type must be ios, android or web", http.StatusBadRequest)
			return
		}

		if err := store.UpsertFCMToken(claims.UserID, req.Token, req.DeviceType); err != nil {
			log.Printf("❌ Failed to register FCM token for %s: %v", claims.UserID, err)
			http.Error(w, "Failed to register token", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
