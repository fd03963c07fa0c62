package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"smartbin-backend/internal/fill"
)

// deviceTimeout bounds every call to the external sensor-device server. The
// dashboards poll every few seconds; a slow device must degrade to an offline
// payload, never hang the request.
const deviceTimeout = 3 * time.Second

// Typed failures so the handler can pick the right offline message.
var (
	ErrDeviceOffline = errors.New("sensor device unreachable")
	ErrBadPayload    = errors.New("unreadable sensor payload")
	ErrNoData        = errors.New("no sensor data yet")
)

// deviceReading is one raw channel in the device server's payload.
type deviceReading struct {
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
}

// BinData is one bin's computed percentages in the aggregated payload.
type BinData struct {
	Weight  int `json:"weight"`
	Height  int `json:"height"`
	Average int `json:"average"`
}

// LatestData is the aggregated payload the dashboards poll. Raw carries the
// unconverted {height, weight} pairs so callers can also feed the bin state
// tracker without a second device round trip.
type LatestData struct {
	Bins      map[string]BinData    `json:"-"`
	Raw       map[string][2]float64 `json:"-"`
	Timestamp string                `json:"timestamp"`
}

// MarshalJSON flattens the bins next to the timestamp, matching the payload
// shape the dashboard clients already consume: {bin1: {...}, ..., timestamp}.
func (d LatestData) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Bins)+1)
	for code, bin := range d.Bins {
		out[code] = bin
	}
	out["timestamp"] = d.Timestamp
	return json.Marshal(out)
}

// DeviceClient relays readings from the external IoT device server.
type DeviceClient struct {
	baseURL string
	client  *http.Client
	cal     fill.Calibration
}

// NewDeviceClient builds a client for the device server named by
// SENSOR_DEVICE_URL.
func NewDeviceClient(cal fill.Calibration) (*DeviceClient, error) {
	baseURL := os.Getenv("SENSOR_DEVICE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("SENSOR_DEVICE_URL environment variable is required")
	}
	return NewDeviceClientWithURL(baseURL, cal), nil
}

// NewDeviceClientWithURL builds a client against an explicit base URL.
func NewDeviceClientWithURL(baseURL string, cal fill.Calibration) *DeviceClient {
	return &DeviceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: deviceTimeout},
		cal:     cal,
	}
}

// FetchLatest pulls the current raw readings from the device server and runs
// them through the fill calculator. Errors are typed: ErrDeviceOffline for
// transport failures, ErrBadPayload for undecodable bodies, ErrNoData when
// the device answers with an empty reading set.
func (c *DeviceClient) FetchLatest() (*LatestData, error) {
	resp, err := c.client.Get(c.baseURL + "/latest")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: device returned status %d", ErrDeviceOffline, resp.StatusCode)
	}

	var raw map[string]deviceReading
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if len(raw) == 0 {
		return nil, ErrNoData
	}

	data := &LatestData{
		Bins:      make(map[string]BinData, len(raw)),
		Raw:       make(map[string][2]float64, len(raw)),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	for code, reading := range raw {
		height := -1.0 // invalid reading, calculator maps it to 0 with a warning
		if reading.Height != nil {
			height = *reading.Height
		}
		weight := 0.0
		if reading.Weight != nil {
			weight = *reading.Weight
		}

		levels := c.cal.Compute(height, weight)
		data.Bins[code] = BinData{
			Weight:  levels.WeightPercent,
			Height:  levels.HeightPercent,
			Average: levels.AveragePercent,
		}
		data.Raw[code] = [2]float64{height, weight}
	}

	return data, nil
}
