package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/fill"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
	"smartbin-backend/pkg/utils"
)

// GetLatestData proxies the external sensor-device server, runs the readings
// through the fill calculator and feeds the bin state tracker. Upstream
// failures degrade to a documented offline payload; the dashboard shows the
// message instead of stale numbers.
func GetLatestData(device *services.DeviceClient, tracker *fill.Tracker, store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if device == nil {
			utils.Message(w, http.StatusOK, "Sensor device offline")
			return
		}

		data, err := device.FetchLatest()
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoData):
				utils.Message(w, http.StatusOK, "No sensor data available yet")
			case errors.Is(err, services.ErrBadPayload):
				log.Printf("❌ Sensor payload unreadable: %v", err)
				utils.Message(w, http.StatusOK, "Unable to parse sensor data")
			default:
				log.Printf("❌ Sensor device unreachable: %v", err)
				utils.Message(w, http.StatusOK, "Sensor device offline")
			}
			return
		}

		for code, bin := range data.Bins {
			raw := data.Raw[code]
			binID := resolveBinID(store, code)

			tracker.Observe(binID, raw[0], raw[1], fill.Levels{
				HeightPercent:  bin.Height,
				WeightPercent:  bin.Weight,
				AveragePercent: bin.Average,
			})

			if err := store.UpdateBinLevel(binID, bin.Average); err != nil {
				log.Printf("⚠️  Could not store level for bin %s: %v", code, err)
			}
		}

		utils.JSON(w, http.StatusOK, data)
	}
}

// resolveBinID maps a device channel code to the registry bin id, falling
// back to the code itself for bins the registry does not know yet.
func resolveBinID(store *database.Store, code string) string {
	if bin, err := store.GetBinByCode(code); err == nil {
		return bin.ID
	}
	return code
}

// LevelBroadcaster pushes live level updates to connected dashboards.
type LevelBroadcaster interface {
	BroadcastToAll(data interface{})
}

// IngestSensorReading accepts a reading pushed directly by a device, computes
// the fill levels and lets the tracker decide whether the crossing persists.
func IngestSensorReading(store *database.Store, tracker *fill.Tracker, cal fill.Calibration, hub LevelBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reading models.SensorReading
		if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if strings.TrimSpace(reading.BinID) == "" {
			utils.Error(w, http.StatusBadRequest, "bin_id is required")
			return
		}

		height := -1.0 // invalid reading, calculator maps it to 0 with a warning
		if reading.HeightCm != nil {
			height = *reading.HeightCm
		}

		levels := cal.Compute(height, reading.WeightGrams)
		binID := resolveBinID(store, reading.BinID)

		event := tracker.Observe(binID, height, reading.WeightGrams, levels)

		if err := store.UpdateBinLevel(binID, levels.AveragePercent); err != nil {
			log.Printf("⚠️  Could not store level for bin %s: %v", reading.BinID, err)
		}

		if hub != nil {
			hub.BroadcastToAll(map[string]interface{}{
				"type": "bin_level_update",
				"data": map[string]interface{}{
					"bin_id":  reading.BinID,
					"height":  levels.HeightPercent,
					"weight":  levels.WeightPercent,
					"average": levels.AveragePercent,
				},
			})
		}

		response := map[string]interface{}{
			"bin_id": reading.BinID,
			"levels": levels,
		}
		if event != nil {
			response["event"] = event.ToSensorEventResponse()
		}

		utils.JSON(w, http.StatusOK, response)
	}
}

// GetSensorEvents lists the persisted threshold crossings for a bin.
func GetSensorEvents(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.URL.Query().Get("bin_id")
		if binID == "" {
			utils.Error(w, http.StatusBadRequest, "bin_id query parameter is required")
			return
		}

		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil {
				limit = parsed
			}
		}

		events, err := store.SensorEventsForBin(resolveBinID(store, binID), limit)
		if err != nil {
			log.Printf("❌ Failed to fetch sensor events for %s: %v", binID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch sensor events")
			return
		}

		responses := make([]models.SensorEventResponse, len(events))
		for i, event := range events {
			responses[i] = event.ToSensorEventResponse()
		}

		utils.JSON(w, http.StatusOK, responses)
	}
}
