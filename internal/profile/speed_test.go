package profile

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gprofile/internal/errs"
	"github.com/planbiir/gprofile/internal/geo"
	"github.com/planbiir/gprofile/internal/gpx"
)

func TestDeriveSpeedsTwoPoints(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	points := []gpx.TrackPoint{
		{Lat: 46.0, Lon: 7.0, Time: ptr(base)},
		{Lat: 46.001, Lon: 7.001, Time: ptr(base.Add(10 * time.Second))},
	}

	speeds, err := DeriveSpeeds(points)
	require.NoError(t, err)
	require.Len(t, speeds, 2)

	dist := geo.Distance(points[0].Position(), points[1].Position())
	assert.Equal(t, 0.0, speeds[0])
	assert.InDelta(t, dist/10, speeds[1], 1e-12)
	assert.InDelta(t, 13.6, speeds[1], 0.2) // ~136 m in 10 s
}

func TestDeriveSpeedsSinglePoint(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	speeds, err := DeriveSpeeds([]gpx.TrackPoint{{Lat: 1, Lon: 1, Time: ptr(base)}})
	require.NoError(t, err)
	assert.Equal(t, Series{0}, speeds)
}

func TestDeriveSpeedsMissingTimestamp(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	points := []gpx.TrackPoint{
		{Lat: 46.0, Lon: 7.0, Time: ptr(base)},
		{Lat: 46.001, Lon: 7.0, Time: ptr(base.Add(time.Second))},
		{Lat: 46.002, Lon: 7.0},
	}

	speeds, err := DeriveSpeeds(points)
	assert.Nil(t, speeds)
	require.ErrorIs(t, err, errs.ErrMissingData)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "time", e.Field)
	assert.Equal(t, 2, e.Index)
}

func TestDeriveSpeedsNonPositiveInterval(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	points := []gpx.TrackPoint{
		{Lat: 46.0, Lon: 7.0, Time: ptr(base)},
		// duplicate time
		{Lat: 46.001, Lon: 7.0, Time: ptr(base)},
		// goes back
		{Lat: 46.002, Lon: 7.0, Time: ptr(base.Add(-time.Second))},
		{Lat: 46.003, Lon: 7.0, Time: ptr(base.Add(10 * time.Second))},
	}

	speeds, nonPositive, err := deriveSpeeds(points, geo.Earth)
	require.NoError(t, err)
	assert.Equal(t, 2, nonPositive)
	assert.Equal(t, 0.0, speeds[1])
	assert.Equal(t, 0.0, speeds[2])
	assert.Greater(t, speeds[3], 0.0)
	for _, s := range speeds {
		assert.False(t, math.IsInf(s, 0) || math.IsNaN(s))
	}
}

func TestDeriveSpeedsStationary(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	points := []gpx.TrackPoint{
		{Lat: 46.0, Lon: 7.0, Time: ptr(base)},
		{Lat: 46.0, Lon: 7.0, Time: ptr(base.Add(5 * time.Second))},
	}

	speeds, err := DeriveSpeeds(points)
	require.NoError(t, err)
	assert.Equal(t, Series{0, 0}, speeds)
}

func TestDetectActivityType(t *testing.T) {
	tests := []struct {
		name   string
		speeds Series
		want   string
	}{
		{"empty", Series{}, "unknown"},
		{"standing", Series{0, 0, 0}, "unknown"},
		{"running", Series{0, 2.8, 3.1, 3.0, 3.3}, "running/hiking"},
		{"cycling", Series{0, 9, 10, 11, 12}, "cycling"},
		{"driving", Series{0, 25, 28, 30, 31}, "high-speed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := detectActivityType(tt.speeds)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
