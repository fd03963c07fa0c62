package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"smartbin-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func GetBins(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bins []models.Bin
		err := db.Select(&bins, `
			SELECT id, bin_code, type, location, floor, bin_level, capacity,
			       last_collected, assigned_to, status, created_at, updated_at
			FROM bins
			ORDER BY bin_code ASC
		`)
		if err != nil {
			http.Error(w, "Failed to fetch bins", http.StatusInternalServerError)
			return
		}

		responses := make([]models.BinResponse, len(bins))
		for i, bin := range bins {
			responses[i] = bin.ToBinResponse()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(responses)
	}
}

func GetBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var bin models.Bin
		err := db.Get(&bin, `SELECT * FROM bins WHERE id = $1 OR bin_code = $1`, id)
		if err == sql.ErrNoRows {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bin.ToBinResponse())
	}
}

func CreateBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		req.BinCode = strings.TrimSpace(req.BinCode)
		if req.BinCode == "" || strings.TrimSpace(req.Location) == "" {
			http.Error(w, "bin_code and location are required", http.StatusBadRequest)
			return
		}
		if req.Type == "" {
			req.Type = "general"
		}
		if req.Capacity <= 0 {
			req.Capacity = 120
		}
		if req.Status == "" {
			req.Status = "active"
		}

		bin := models.Bin{
			ID:        uuid.New().String(),
			BinCode:   req.BinCode,
			Type:      req.Type,
			Location:  req.Location,
			Floor:     req.Floor,
			Capacity:  req.Capacity,
			Status:    req.Status,
			CreatedAt: time.Now().Unix(),
			UpdatedAt: time.Now().Unix(),
		}

		_, err := db.Exec(`
			INSERT INTO bins (id, bin_code, type, location, floor, bin_level, capacity, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9)
		`, bin.ID, bin.BinCode, bin.Type, bin.Location, bin.Floor, bin.Capacity, bin.Status, bin.CreatedAt, bin.UpdatedAt)
		if err != nil {
			log.Printf("❌ Failed to create bin %s: %v", bin.BinCode, err)
			http.Error(w, "Failed to create bin", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(bin.ToBinResponse())
	}
}

func UpdateBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		var req models.UpdateBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var existing models.Bin
		err := db.Get(&existing, `SELECT * FROM bins WHERE id = $1`, id)
		if err == sql.ErrNoRows {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if req.Type != nil {
			existing.Type = *req.Type
		}
		if req.Location != nil {
			existing.Location = *req.Location
		}
		if req.Floor != nil {
			existing.Floor = *req.Floor
		}
		if req.Capacity != nil {
			existing.Capacity = *req.Capacity
		}
		if req.BinLevel != nil {
			level := *req.BinLevel
			if level < 0 {
				level = 0
			}
			if level > 100 {
				level = 100
			}
			existing.BinLevel = level
		}
		if req.Status != nil {
			existing.Status = *req.Status
		}

		_, err = db.Exec(`
			UPDATE bins
			SET type = $1, location = $2, floor = $3, capacity = $4, bin_level = $5, status = $6,
			    updated_at = $7
			WHERE id = $8
		`, existing.Type, existing.Location, existing.Floor, existing.Capacity,
			existing.BinLevel, existing.Status, time.Now().Unix(), id)
		if err != nil {
			http.Error(w, "Failed to update bin", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(existing.ToBinResponse())
	}
}

func DeleteBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		result, err := db.Exec(`DELETE FROM bins WHERE id = $1`, id)
		if err != nil {
			http.Error(w, "Failed to delete", http.StatusInternalServerError)
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
