package profile

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// detectActivityType classifies the track by its 95th percentile speed
func detectActivityType(speeds Series) (string, float64) {
	moving := make([]float64, 0, len(speeds))
	for _, s := range speeds {
		if s > 0 && s < 100 { // reasonable bounds
			moving = append(moving, s)
		}
	}
	if len(moving) == 0 {
		return "unknown", 0
	}

	sort.Float64s(moving)
	p95 := stat.Quantile(0.95, stat.LinInterp, moving, nil)

	switch {
	case p95 <= 8.0: // 28.8 km/h
		return "running/hiking", p95
	case p95 <= 20.0: // 72 km/h
		return "cycling", p95
	default: // skiing, motorsports
		return "high-speed", p95
	}
}
