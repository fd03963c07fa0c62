package models

import "time"

// SensorEventType classifies a persisted threshold crossing
type SensorEventType string

const (
	SensorEventStarted SensorEventType = "started"
	SensorEventFull    SensorEventType = "full"
)

// SensorReading is one raw sample pushed by the device (or relayed by the
// proxy). It is never persisted as-is; threshold crossings become SensorEvents.
// HeightCm is a pointer so an omitted distance is distinguishable from a
// measured 0 cm (which would mean a bin filled to the sensor).
type SensorReading struct {
	BinID       string   `json:"bin_id"`
	HeightCm    *float64 `json:"height_cm"` // distance from sensor to waste surface
	WeightGrams float64  `json:"weight_grams"`
	Timestamp   *int64   `json:"timestamp,omitempty"` // Unix timestamp, defaults to now
}

// SensorEvent is a persisted threshold crossing. Immutable once written.
type SensorEvent struct {
	ID           string          `json:"id" db:"id"`
	BinID        string          `json:"bin_id" db:"bin_id"`
	Height       float64         `json:"height" db:"height"`
	Weight       float64         `json:"weight" db:"weight"`
	Type         SensorEventType `json:"type" db:"type"`
	StartingTime *int64          `json:"starting_time,omitempty" db:"starting_time"` // Unix timestamp
	FullBinTime  *int64          `json:"full_bin_time,omitempty" db:"full_bin_time"` // Unix timestamp
	FillLevel    int             `json:"fill_level" db:"fill_level"`
	CreatedAt    int64           `json:"created_at" db:"created_at"`
}

// SensorEventResponse is what we send to the client with ISO timestamps
type SensorEventResponse struct {
	ID              string          `json:"id"`
	BinID           string          `json:"bin_id"`
	Height          float64         `json:"height"`
	Weight          float64         `json:"weight"`
	Type            SensorEventType `json:"type"`
	StartingTimeIso *string         `json:"startingTimeIso,omitempty"`
	FullBinTimeIso  *string         `json:"fullBinTimeIso,omitempty"`
	FillLevel       int             `json:"fill_level"`
	CreatedAtIso    string          `json:"createdAtIso"`
}

// ToSensorEventResponse converts a SensorEvent to SensorEventResponse
func (e *SensorEvent) ToSensorEventResponse() SensorEventResponse {
	resp := SensorEventResponse{
		ID:           e.ID,
		BinID:        e.BinID,
		Height:       e.Height,
		Weight:       e.Weight,
		Type:         e.Type,
		FillLevel:    e.FillLevel,
		CreatedAtIso: time.Unix(e.CreatedAt, 0).Format(time.RFC3339),
	}

	if e.StartingTime != nil {
		iso := time.Unix(*e.StartingTime, 0).Format(time.RFC3339)
		resp.StartingTimeIso = &iso
	}

	if e.FullBinTime != nil {
		iso := time.Unix(*e.FullBinTime, 0).Format(time.RFC3339)
		resp.FullBinTimeIso = &iso
	}

	return resp
}
