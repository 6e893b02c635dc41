package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKnownValues(t *testing.T) {
	// 0.1 degree north ≈ 11.1 km
	dist := Distance(Position{Lat: 46.0, Lon: 7.0}, Position{Lat: 46.1, Lon: 7.0})
	assert.InDelta(t, 11119.5, dist, 1.0)

	// one degree of longitude on the equator
	dist = Distance(Position{Lat: 0, Lon: 0}, Position{Lat: 0, Lon: 1})
	assert.InDelta(t, EarthRadius*math.Pi/180, dist, 1e-6)
}

func TestDistanceSamePointIsZero(t *testing.T) {
	points := []Position{
		{Lat: 0, Lon: 0},
		{Lat: 46.0, Lon: 7.0},
		{Lat: -33.9, Lon: 151.2},
		{Lat: 90, Lon: 0},
		{Lat: 0, Lon: 180},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p), "point %+v", p)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]Position{
		{{Lat: 46.0, Lon: 7.0}, {Lat: 46.001, Lon: 7.001}},
		{{Lat: 51.5, Lon: -0.12}, {Lat: 40.7, Lon: -74.0}},
		{{Lat: -45, Lon: 170}, {Lat: 45, Lon: -170}},
	}
	for _, pair := range pairs {
		assert.Equal(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]))
	}
}

func TestDistanceAcrossAntimeridian(t *testing.T) {
	dist := Distance(Position{Lat: 0, Lon: 179.9}, Position{Lat: 0, Lon: -179.9})

	// 0.2 degrees at the equator ≈ 22.2 km, nowhere near a full lap
	assert.InDelta(t, 22239.0, dist, 5.0)
	assert.Less(t, dist, 100000.0)
}

func TestDistanceCustomSphere(t *testing.T) {
	unit := Sphere{Radius: 1}
	dist := unit.Distance(Position{Lat: 0, Lon: 0}, Position{Lat: 0, Lon: 90})
	assert.InDelta(t, math.Pi/2, dist, 1e-12)

	dist = unit.Distance(Position{Lat: 0, Lon: 0}, Position{Lat: 0, Lon: 180})
	assert.InDelta(t, math.Pi, dist, 1e-12)
}

func TestDistanceMatchesOrb(t *testing.T) {
	a := Position{Lat: 46.0, Lon: 7.0}
	b := Position{Lat: 45.93, Lon: 7.87}

	ours := Distance(a, b)
	ref := orbgeo.DistanceHaversine(orb.Point{a.Lon, a.Lat}, orb.Point{b.Lon, b.Lat})

	// orb uses the WGS84 equatorial radius, so only the ratio is comparable
	const orbRadius = 6378137.0
	require.Greater(t, ref, 0.0)
	assert.InDelta(t, EarthRadius/orbRadius, ours/ref, 1e-9)
}

func TestPositionValidate(t *testing.T) {
	tests := []struct {
		name    string
		pos     Position
		wantErr string
	}{
		{name: "alps", pos: Position{Lat: 46, Lon: 8}},
		{name: "north pole", pos: Position{Lat: 90, Lon: 0}},
		{name: "date line", pos: Position{Lat: 0, Lon: -180}},
		{name: "latitude too high", pos: Position{Lat: 91, Lon: 0}, wantErr: "invalid latitude"},
		{name: "latitude too low", pos: Position{Lat: -90.5, Lon: 0}, wantErr: "invalid latitude"},
		{name: "longitude too high", pos: Position{Lat: 0, Lon: 181}, wantErr: "invalid longitude"},
		{name: "nan latitude", pos: Position{Lat: math.NaN(), Lon: 0}, wantErr: "invalid latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pos.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
