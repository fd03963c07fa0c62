package models

import "time"

type Bin struct {
	ID            string  `json:"id" db:"id"`
	BinCode       string  `json:"bin_code" db:"bin_code"`
	Type          string  `json:"type" db:"type"` // "general", "recycling", "organic"
	Location      string  `json:"location" db:"location"`
	Floor         int     `json:"floor" db:"floor"`
	BinLevel      int     `json:"bin_level" db:"bin_level"`
	Capacity      int     `json:"capacity" db:"capacity"`                       // liters
	LastCollected *int64  `json:"last_collected,omitempty" db:"last_collected"` // Unix timestamp
	AssignedTo    *string `json:"assigned_to,omitempty" db:"assigned_to"`
	Status        string  `json:"status" db:"status"`
	CreatedAt     int64   `json:"created_at" db:"created_at"`
	UpdatedAt     int64   `json:"updated_at" db:"updated_at"`
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	ID               string  `json:"id"`
	BinCode          string  `json:"bin_code"`
	Type             string  `json:"type"`
	Location         string  `json:"location"`
	Floor            int     `json:"floor"`
	BinLevel         int     `json:"bin_level"`
	Capacity         int     `json:"capacity"`
	LastCollectedIso *string `json:"lastCollectedIso,omitempty"`
	AssignedTo       *string `json:"assigned_to,omitempty"`
	Status           string  `json:"status"`
}

// CreateBinRequest is the request body for POST /api/bins
type CreateBinRequest struct {
	BinCode  string `json:"bin_code"`
	Type     string `json:"type"`
	Location string `json:"location"`
	Floor    int    `json:"floor"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

// UpdateBinRequest is the request body for PATCH /api/bins/:id
type UpdateBinRequest struct {
	Type     *string `json:"type,omitempty"`
	Location *string `json:"location,omitempty"`
	Floor    *int    `json:"floor,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
	BinLevel *int    `json:"bin_level,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// ToBinResponse converts a Bin to BinResponse
func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		ID:         b.ID,
		BinCode:    b.BinCode,
		Type:       b.Type,
		Location:   b.Location,
		Floor:      b.Floor,
		BinLevel:   b.BinLevel,
		Capacity:   b.Capacity,
		AssignedTo: b.AssignedTo,
		Status:     b.Status,
	}

	if b.LastCollected != nil {
		t := time.Unix(*b.LastCollected, 0)
		iso := t.Format(time.RFC3339)
		resp.LastCollectedIso = &iso
	}

	return resp
}
