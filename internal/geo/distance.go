package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in meters used by Earth.
const EarthRadius = 6371000.0

// Position is a WGS84 coordinate in degrees.
type Position struct {
	Lat float64
	Lon float64
}

// Validate checks that the coordinates are inside the valid ranges.
func (p Position) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || math.IsNaN(p.Lat) {
		return fmt.Errorf("invalid latitude: %f", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 || math.IsNaN(p.Lon) {
		return fmt.Errorf("invalid longitude: %f", p.Lon)
	}
	return nil
}

// Sphere is a spherical body used for great-circle distances.
type Sphere struct {
	Radius float64 // meters
}

// Earth is the spherical Earth model.
var Earth = Sphere{Radius: EarthRadius}

// Distance returns the great-circle distance in meters between a and b
// using the haversine formula.
func (s Sphere) Distance(a, b Position) float64 {
	if a == b {
		return 0
	}

	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLatRad := (b.Lat - a.Lat) * math.Pi / 180
	deltaLonRad := (b.Lon - a.Lon) * math.Pi / 180

	// sin² of the half longitude delta is periodic in 360°, so a
	// 179.9 -> -179.9 crossing comes out as 0.2° and not 359.8°.
	h := math.Sin(deltaLatRad/2)*math.Sin(deltaLatRad/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLonRad/2)*math.Sin(deltaLonRad/2)
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return s.Radius * c
}

// Distance returns the haversine distance in meters on Earth.
func Distance(a, b Position) float64 {
	return Earth.Distance(a, b)
}
