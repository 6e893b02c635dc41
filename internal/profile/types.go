package profile

import (
	"time"

	"github.com/planbiir/gprofile/internal/errs"
)

// Series is a dense sequence of values aligned with a segment's points:
// index i belongs to points[i].
type Series []float64

// TrackPolicy decides how documents with several tracks are handled.
type TrackPolicy string

const (
	// PolicyStrict requires exactly one track.
	PolicyStrict TrackPolicy = "strict"
	// PolicyFirst uses the first track and ignores the rest.
	PolicyFirst TrackPolicy = "first"
)

// SpeedSource says where the speed series came from.
type SpeedSource string

const (
	SpeedRecorded SpeedSource = "recorded"
	SpeedDerived  SpeedSource = "derived"
)

// DefaultWindow smooths GPS jitter while keeping terrain and pace trends.
const DefaultWindow = 75

// Config holds profile building parameters
type Config struct {
	Window      int         // moving average window in samples
	TrackPolicy TrackPolicy // strict or first
}

// DefaultConfig returns the default profile configuration
func DefaultConfig() Config {
	return Config{
		Window:      DefaultWindow,
		TrackPolicy: PolicyStrict,
	}
}

// Validate rejects configurations before any processing starts.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return errs.InvalidParameter("profile config", "window must be a positive integer, got %d", c.Window)
	}
	switch c.TrackPolicy {
	case PolicyStrict, PolicyFirst:
	default:
		return errs.InvalidParameter("profile config", "unknown track policy %q", c.TrackPolicy)
	}
	return nil
}

// Stats summarises the selected segment.
type Stats struct {
	Points     int `json:"points"`
	TrackCount int `json:"track_count"`

	DistanceMeters float64       `json:"distance_m"`
	Duration       time.Duration `json:"duration_ns"`

	MinElevation float64 `json:"min_elevation_m"`
	MaxElevation float64 `json:"max_elevation_m"`
	MaxSpeed     float64 `json:"max_speed_ms"`   // raw, before smoothing
	MeanSpeed    float64 `json:"mean_speed_ms"`  // raw, before smoothing
	P95Speed     float64 `json:"p95_speed_ms"`   // raw, before smoothing
	ActivityType string  `json:"activity_type"`

	// Samples whose time delta to the previous sample was zero or negative.
	// Their derived speed is 0.
	NonPositiveIntervals int `json:"non_positive_intervals"`

	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// Profile is the chart-ready output of Build.
type Profile struct {
	TrackName   string
	Window      int
	SpeedSource SpeedSource

	Elevation Series // smoothed
	Speed     Series // smoothed

	RawElevation Series
	RawSpeed     Series

	Stats Stats
}

// Len returns the number of samples.
func (p *Profile) Len() int {
	return len(p.Elevation)
}
