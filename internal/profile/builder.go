package profile

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/planbiir/gprofile/internal/errs"
	"github.com/planbiir/gprofile/internal/geo"
	"github.com/planbiir/gprofile/internal/gpx"
)

const opBuild = "build profile"

// Builder turns a decoded GPX document into smoothed elevation and speed
// series.
type Builder struct {
	config Config
	sphere geo.Sphere
	logger logrus.FieldLogger
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(config Config, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Builder{
		config: config,
		sphere: geo.Earth,
		logger: logger,
	}
}

// Build is a shorthand for NewBuilder(config, nil).Build(doc).
func Build(doc *gpx.Document, config Config) (*Profile, error) {
	return NewBuilder(config, nil).Build(doc)
}

// Build validates the document shape, extracts elevation and speed for the
// first segment of the selected track and smooths both. The document is not
// modified.
func (b *Builder) Build(doc *gpx.Document) (*Profile, error) {
	startTime := time.Now()

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	track, err := b.selectTrack(doc)
	if err != nil {
		return nil, err
	}
	if len(track.Segments) == 0 {
		return nil, errs.Structure(opBuild, "track %q has no segments", track.Name)
	}
	if len(track.Segments) > 1 {
		b.logger.WithField("segments", len(track.Segments)).
			Warn("Track has several segments, only the first one is profiled")
	}

	points := track.Segments[0].Points
	if len(points) == 0 {
		return nil, errs.Structure(opBuild, "first segment has no points")
	}

	elevation := make(Series, len(points))
	for i, p := range points {
		if p.Elevation == nil {
			return nil, errs.MissingData(opBuild, "elevation", i)
		}
		elevation[i] = *p.Elevation
	}

	speed, source, nonPositive, err := b.speeds(points)
	if err != nil {
		return nil, err
	}
	if nonPositive > 0 {
		b.logger.WithField("samples", nonPositive).
			Warn("Zero or negative time delta between samples, speed set to 0")
	}

	smoothedElevation, err := MovingAverage(elevation, b.config.Window)
	if err != nil {
		return nil, err
	}
	smoothedSpeed, err := MovingAverage(speed, b.config.Window)
	if err != nil {
		return nil, err
	}

	prof := &Profile{
		TrackName:    track.Name,
		Window:       b.config.Window,
		SpeedSource:  source,
		Elevation:    smoothedElevation,
		Speed:        smoothedSpeed,
		RawElevation: elevation,
		RawSpeed:     speed,
	}
	if prof.TrackName == "" {
		prof.TrackName = doc.Name
	}
	prof.Stats = b.stats(points, elevation, speed)
	prof.Stats.TrackCount = len(doc.Tracks)
	prof.Stats.NonPositiveIntervals = nonPositive
	prof.Stats.ProcessingTime = time.Since(startTime)

	b.logger.WithFields(logrus.Fields{
		"points":       len(points),
		"window":       b.config.Window,
		"speed_source": source,
		"distance_km":  prof.Stats.DistanceMeters / 1000,
	}).Debug("Profile built")

	return prof, nil
}

func (b *Builder) selectTrack(doc *gpx.Document) (*gpx.Track, error) {
	if doc == nil || len(doc.Tracks) == 0 {
		return nil, errs.Structure(opBuild, "expected exactly one track, got 0")
	}

	switch b.config.TrackPolicy {
	case PolicyFirst:
		if len(doc.Tracks) > 1 {
			b.logger.WithField("tracks", len(doc.Tracks)).
				Warn("Document has several tracks, using the first one")
		}
	default:
		if len(doc.Tracks) != 1 {
			return nil, errs.Structure(opBuild, "expected exactly one track, got %d", len(doc.Tracks))
		}
	}

	return &doc.Tracks[0], nil
}

// speeds returns recorded speeds when every point has one and derives the
// whole series otherwise.
func (b *Builder) speeds(points []gpx.TrackPoint) (Series, SpeedSource, int, error) {
	recorded := make(Series, len(points))
	for i, p := range points {
		if p.Speed == nil {
			b.logger.WithField("first_missing", i).Debug("Recorded speed incomplete, deriving from positions")
			derived, nonPositive, err := deriveSpeeds(points, b.sphere)
			if err != nil {
				return nil, "", 0, err
			}
			return derived, SpeedDerived, nonPositive, nil
		}
		recorded[i] = *p.Speed
	}
	return recorded, SpeedRecorded, 0, nil
}

func (b *Builder) stats(points []gpx.TrackPoint, elevation, speed Series) Stats {
	st := Stats{
		Points:       len(points),
		MinElevation: floats.Min(elevation),
		MaxElevation: floats.Max(elevation),
		MaxSpeed:     floats.Max(speed),
		MeanSpeed:    floats.Sum(speed) / float64(len(speed)),
	}

	for i := 1; i < len(points); i++ {
		st.DistanceMeters += b.sphere.Distance(points[i-1].Position(), points[i].Position())
	}

	first, last := points[0].Time, points[len(points)-1].Time
	if first != nil && last != nil {
		st.Duration = last.Sub(*first)
	}

	st.ActivityType, st.P95Speed = detectActivityType(speed)

	return st
}
