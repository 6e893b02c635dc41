package profile

import (
	"math"

	"github.com/planbiir/gprofile/internal/errs"
)

// MovingAverage applies a trailing simple moving average. Output i is the
// mean of data[max(0, i-window+1) .. i], so the window grows from one sample
// at the start until it holds window samples.
//
// The running sum is updated incrementally and kept with Neumaier
// compensation so long series do not accumulate rounding drift.
func MovingAverage(data Series, window int) (Series, error) {
	if window <= 0 {
		return nil, errs.InvalidParameter("moving average", "window must be a positive integer, got %d", window)
	}

	out := make(Series, len(data))
	var acc compensatedSum
	count := 0

	for i, v := range data {
		if i >= window {
			acc.add(-data[i-window])
			count--
		}

		acc.add(v)
		count++

		out[i] = acc.value() / float64(count)
	}

	return out, nil
}

// compensatedSum is a Neumaier (improved Kahan) accumulator.
type compensatedSum struct {
	sum float64
	c   float64
}

func (s *compensatedSum) add(x float64) {
	t := s.sum + x
	if math.Abs(s.sum) >= math.Abs(x) {
		s.c += (s.sum - t) + x
	} else {
		s.c += (x - t) + s.sum
	}
	s.sum = t
}

func (s *compensatedSum) value() float64 {
	return s.sum + s.c
}
