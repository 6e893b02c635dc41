package profile

import (
	"github.com/planbiir/gprofile/internal/errs"
	"github.com/planbiir/gprofile/internal/geo"
	"github.com/planbiir/gprofile/internal/gpx"
)

// DeriveSpeeds computes the instantaneous speed (m/s) of every point from the
// great-circle distance and time delta to its predecessor. The first sample
// has no predecessor and gets 0.
//
// Every point needs a timestamp. A zero or negative time delta (duplicate or
// out-of-order timestamps) yields 0 for that sample rather than Inf or NaN.
func DeriveSpeeds(points []gpx.TrackPoint) (Series, error) {
	speeds, _, err := deriveSpeeds(points, geo.Earth)
	return speeds, err
}

// deriveSpeeds also reports how many samples hit the non-positive interval
// policy.
func deriveSpeeds(points []gpx.TrackPoint, sphere geo.Sphere) (Series, int, error) {
	for i, p := range points {
		if p.Time == nil {
			return nil, 0, errs.MissingData("derive speeds", "time", i)
		}
	}

	speeds := make(Series, len(points))
	nonPositive := 0

	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]

		dt := curr.Time.Sub(*prev.Time).Seconds()
		if dt <= 0 {
			nonPositive++
			continue
		}

		speeds[i] = sphere.Distance(prev.Position(), curr.Position()) / dt
	}

	return speeds, nonPositive, nil
}
