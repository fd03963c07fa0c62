package fill

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightPercent(t *testing.T) {
	cal := DefaultCalibration()

	tests := []struct {
		name     string
		distance float64
		want     int
	}{
		{"at full distance", 11, 100},
		{"below full distance", 5, 100},
		{"zero distance", 0, 100},
		{"at empty distance", 35, 0},
		{"beyond empty distance", 50, 0},
		{"midpoint", 23, 50},
		{"quarter full", 29, 25},
		{"three quarters full", 17, 75},
		{"negative reads as empty", -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.HeightPercent(tt.distance))
		})
	}
}

func TestHeightPercentInvalidReading(t *testing.T) {
	cal := DefaultCalibration()
	assert.Equal(t, 0, cal.HeightPercent(math.NaN()))
}

func TestWeightPercent(t *testing.T) {
	cal := DefaultCalibration()

	tests := []struct {
		name   string
		weight float64
		want   int
	}{
		{"at max weight", 5000, 100},
		{"above max weight", 9000, 100},
		{"half max", 2500, 50},
		{"zero", 0, 0},
		{"negative", -100, 0},
		{"rounds half up", 25, 1}, // 0.5% -> 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.WeightPercent(tt.weight))
		})
	}
}

func TestComputeAveragesRoundedPercentages(t *testing.T) {
	cal := DefaultCalibration()

	// height 15.8cm -> (35-15.8)/24*100 = 80, weight 3000g -> 60; average 70.
	levels := cal.Compute(15.8, 3000)
	assert.Equal(t, 80, levels.HeightPercent)
	assert.Equal(t, 60, levels.WeightPercent)
	assert.Equal(t, 70, levels.AveragePercent)
}

func TestComputeAverageRoundsHalfUp(t *testing.T) {
	cal := DefaultCalibration()

	// height 23cm -> 50, weight 2550g -> 51; average 50.5 rounds up to 51.
	levels := cal.Compute(23, 2550)
	assert.Equal(t, 50, levels.HeightPercent)
	assert.Equal(t, 51, levels.WeightPercent)
	assert.Equal(t, 51, levels.AveragePercent)
}

func TestComputeAlwaysInRange(t *testing.T) {
	cal := DefaultCalibration()

	inputs := []struct{ height, weight float64 }{
		{-50, -50},
		{0, 0},
		{11, 5000},
		{35, 0},
		{1e9, 1e9},
		{math.NaN(), math.NaN()},
	}

	for _, in := range inputs {
		levels := cal.Compute(in.height, in.weight)
		assert.GreaterOrEqual(t, levels.AveragePercent, 0)
		assert.LessOrEqual(t, levels.AveragePercent, 100)
	}
}

func TestCalibrationFromEnvDefaults(t *testing.T) {
	t.Setenv("SENSOR_FULL_DISTANCE_CM", "")
	t.Setenv("SENSOR_EMPTY_DISTANCE_CM", "")
	t.Setenv("SENSOR_MAX_WEIGHT_GRAMS", "")

	cal := CalibrationFromEnv()
	assert.Equal(t, DefaultCalibration(), cal)
}

func TestCalibrationFromEnvOverrides(t *testing.T) {
	t.Setenv("SENSOR_FULL_DISTANCE_CM", "8")
	t.Setenv("SENSOR_EMPTY_DISTANCE_CM", "40")
	t.Setenv("SENSOR_MAX_WEIGHT_GRAMS", "150000")

	cal := CalibrationFromEnv()
	assert.Equal(t, 8.0, cal.FullDistanceCm)
	assert.Equal(t, 40.0, cal.EmptyDistanceCm)
	assert.Equal(t, 150000.0, cal.MaxWeightGrams)
}
