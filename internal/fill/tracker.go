package fill

import (
	"log"
	"sync"
	"time"

	"smartbin-backend/internal/models"
)

// Fill thresholds in average percent. A bin "starts filling" inside
// [startedLow, startedHigh] and is "full" at fullLow or above. Dropping below
// startedLow resets the flags so the next climb produces fresh events.
const (
	startedLow  = 85
	startedHigh = 94
	fullLow     = 95
)

// EventSink persists threshold crossings. Implemented by the database store.
type EventSink interface {
	SaveSensorEvent(event *models.SensorEvent) error
}

// binState are the per-bin dedupe flags. Process-memory only: losing them on
// restart costs at most one duplicate event row per bin.
type binState struct {
	startedFilling bool
	isFull         bool
}

// Tracker decides when a fill-level crossing should be persisted as a
// SensorEvent. Readings for the same bin arrive every few seconds while the
// bin sits in a threshold band; the flags suppress the duplicates.
type Tracker struct {
	sink EventSink

	mu   sync.Mutex
	bins map[string]*binState

	now func() time.Time
}

// NewTracker creates a tracker that writes threshold events to sink.
func NewTracker(sink EventSink) *Tracker {
	return &Tracker{
		sink: sink,
		bins: make(map[string]*binState),
		now:  time.Now,
	}
}

// Observe feeds one computed reading for a bin. It returns the persisted
// SensorEvent when the reading crossed a threshold, nil otherwise. A sink
// failure is logged and leaves the flags untouched so the next reading
// retries; it never affects other bins.
func (t *Tracker) Observe(binID string, heightCm, weightGrams float64, levels Levels) *models.SensorEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.bins[binID]
	if !ok {
		state = &binState{}
		t.bins[binID] = state
	}

	avg := levels.AveragePercent

	switch {
	case avg < startedLow:
		// Bin was emptied (or never filled); arm both transitions again.
		state.startedFilling = false
		state.isFull = false
		return nil

	case avg >= startedLow && avg <= startedHigh && !state.startedFilling:
		now := t.now().Unix()
		event := &models.SensorEvent{
			BinID:        binID,
			Height:       heightCm,
			Weight:       weightGrams,
			Type:         models.SensorEventStarted,
			StartingTime: &now,
			FillLevel:    avg,
		}
		if err := t.sink.SaveSensorEvent(event); err != nil {
			log.Printf("❌ Failed to save started event for bin %s: %v", binID, err)
			return nil
		}
		state.startedFilling = true
		return event

	case avg >= fullLow && !state.isFull:
		now := t.now().Unix()
		event := &models.SensorEvent{
			BinID:       binID,
			Height:      heightCm,
			Weight:      weightGrams,
			Type:        models.SensorEventFull,
			FullBinTime: &now,
			FillLevel:   avg,
		}
		if err := t.sink.SaveSensorEvent(event); err != nil {
			log.Printf("❌ Failed to save full event for bin %s: %v", binID, err)
			return nil
		}
		state.isFull = true
		return event
	}

	// In a band but already flagged, or in the dead zone between bands.
	return nil
}
