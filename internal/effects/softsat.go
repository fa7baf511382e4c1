package effects

import (
	"math"
	"sync/atomic"
)

// SoftSaturation is the musicdsp.org waveshaper by Bram de Jong. The
// threshold a splits the transfer curve into three regions: below a the
// signal is linear, between a and 1 it follows a smooth saturation
// curve, above 1 it clips at (a+1)/2. Output is scaled by 2/(a+1) so
// the perceived level stays consistent across threshold settings.
// The threshold is stored as float64 bits for lock-free updates.
type SoftSaturation struct {
	threshold atomic.Uint64
}

// NewSoftSaturation creates a soft saturator. threshold is in [0, 1];
// 1.0 is a bypass, 0.0 is maximum saturation.
func NewSoftSaturation(threshold float64) *SoftSaturation {
	s := &SoftSaturation{}
	s.threshold.Store(math.Float64bits(clamp(threshold, 0, 1)))
	return s
}

// SetThreshold updates the saturation threshold. Safe from any
// goroutine.
func (s *SoftSaturation) SetThreshold(threshold float64) {
	s.threshold.Store(math.Float64bits(clamp(threshold, 0, 1)))
}

// Threshold returns the current threshold setting.
func (s *SoftSaturation) Threshold() float64 {
	return math.Float64frombits(s.threshold.Load())
}

func (s *SoftSaturation) Process(x float64) float64 {
	a := s.Threshold()
	if a >= 1.0 {
		return x
	}

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	absX := math.Abs(x)

	var saturated float64
	switch {
	case absX < a:
		saturated = absX
	case absX <= 1.0:
		// a + (x-a)/(1+((x-a)/(1-a))^2)
		ratio := (absX - a) / (1.0 - a)
		saturated = a + (absX-a)/(1.0+ratio*ratio)
	default:
		saturated = (a + 1.0) / 2.0
	}

	return sign * saturated * (2.0 / (a + 1.0))
}

func (s *SoftSaturation) Reset() {}
