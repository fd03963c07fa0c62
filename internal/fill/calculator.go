package fill

import (
	"log"
	"math"
	"os"
	"strconv"
)

// Calibration holds the sensor-to-percentage mapping constants.
type Calibration struct {
	FullDistanceCm  float64 // fullest reading: distance at or below this is 100%
	EmptyDistanceCm float64 // emptiest reading: distance at or above this is 0%
	MaxWeightGrams  float64 // weight at or above this is 100%
}

// DefaultCalibration returns the calibration used by the deployed devices.
func DefaultCalibration() Calibration {
	return Calibration{
		FullDistanceCm:  11,
		EmptyDistanceCm: 35,
		MaxWeightGrams:  5000,
	}
}

// CalibrationFromEnv reads calibration overrides from the environment, falling
// back to the defaults for anything unset or unparseable.
func CalibrationFromEnv() Calibration {
	cal := DefaultCalibration()
	if v := os.Getenv("SENSOR_FULL_DISTANCE_CM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cal.FullDistanceCm = f
		}
	}
	if v := os.Getenv("SENSOR_EMPTY_DISTANCE_CM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > cal.FullDistanceCm {
			cal.EmptyDistanceCm = f
		}
	}
	if v := os.Getenv("SENSOR_MAX_WEIGHT_GRAMS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cal.MaxWeightGrams = f
		}
	}
	return cal
}

// Levels is the derived fill state of one bin. Not persisted on its own;
// computed on demand from the latest reading.
type Levels struct {
	HeightPercent  int `json:"height"`
	WeightPercent  int `json:"weight"`
	AveragePercent int `json:"average"`
}

// HeightPercent maps a measured distance (sensor to waste surface) to a fill
// percentage. The mapping is inverted: a shorter distance means a fuller bin.
// An invalid distance reads as empty and is logged as a warning.
func (c Calibration) HeightPercent(distanceCm float64) int {
	if math.IsNaN(distanceCm) || distanceCm < 0 {
		log.Printf("⚠️  Invalid height reading: %v cm, treating as empty", distanceCm)
		return 0
	}
	if distanceCm <= c.FullDistanceCm {
		return 100
	}
	if distanceCm >= c.EmptyDistanceCm {
		return 0
	}
	return roundHalfUp((c.EmptyDistanceCm - distanceCm) / (c.EmptyDistanceCm - c.FullDistanceCm) * 100)
}

// WeightPercent maps a weight in grams to a fill percentage, linearly.
func (c Calibration) WeightPercent(weightGrams float64) int {
	if math.IsNaN(weightGrams) || weightGrams <= 0 {
		return 0
	}
	if weightGrams >= c.MaxWeightGrams {
		return 100
	}
	return roundHalfUp(weightGrams / c.MaxWeightGrams * 100)
}

// Compute derives the full fill state from one raw reading. The two
// percentages are rounded independently before averaging; this order matches
// the values the dashboards have always displayed and must not change.
func (c Calibration) Compute(heightCm, weightGrams float64) Levels {
	hp := c.HeightPercent(heightCm)
	wp := c.WeightPercent(weightGrams)
	avg := roundHalfUp(float64(hp+wp) / 2)
	return Levels{
		HeightPercent:  hp,
		WeightPercent:  wp,
		AveragePercent: clamp(avg),
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
