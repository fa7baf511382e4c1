// Package param implements smoothed control values and the helpers
// that map performance gestures (velocity, blend position) onto them.
//
// Every audible control in the synth goes through a Smoother so that
// abrupt control changes ramp over a few milliseconds instead of
// stepping, which would be heard as a click. Shared adds an atomically
// published target on top of a Smoother for values that are set from
// the control goroutine while the audio goroutine ticks them.
package param

import "math"

// DefaultSmoothingMS is the ramp time used by controls that have no
// stronger opinion.
const DefaultSmoothingMS = 15.0

const (
	settleEpsilon   = 1e-6
	retargetEpsilon = 1e-8
)

// Smoother ramps a bounded control value toward a target with a
// one-pole lowpass. It is not safe for concurrent use; see Shared for
// the cross-goroutine variant.
type Smoother struct {
	current float64
	target  float64
	coeff   float64
	min     float64
	max     float64
	settled bool
}

// NewSmoother returns a smoother holding value, bounded to [min, max],
// that approaches a new target with the given time constant in
// milliseconds. A non-positive smoothing time makes every change
// instantaneous.
func NewSmoother(value, min, max, smoothingMS, sampleRate float64) *Smoother {
	s := &Smoother{min: min, max: max}
	tau := smoothingMS / 1000.0 * sampleRate
	if tau <= 0 {
		s.coeff = 1
	} else {
		s.coeff = 1 - math.Exp(-1/tau)
	}
	v := clamp(value, min, max)
	s.current = v
	s.target = v
	s.settled = true
	return s
}

// Tick advances the value one sample toward the target and returns it.
// Once the value has converged it snaps exactly onto the target and
// further ticks are a single flag check.
func (s *Smoother) Tick() float64 {
	if s.settled {
		return s.current
	}
	s.current += (s.target - s.current) * s.coeff
	if math.Abs(s.target-s.current) < settleEpsilon {
		s.current = s.target
		s.settled = true
	}
	return s.current
}

// SetTarget sets the value the smoother ramps toward, clamped to the
// declared bounds.
func (s *Smoother) SetTarget(v float64) {
	v = clamp(v, s.min, s.max)
	if math.Abs(v-s.target) > retargetEpsilon {
		s.settled = false
	}
	s.target = v
}

// SetImmediate jumps straight to v without ramping.
func (s *Smoother) SetImmediate(v float64) {
	v = clamp(v, s.min, s.max)
	s.current = v
	s.target = v
	s.settled = true
}

// SetNormalized sets the target from a unit value in [0, 1] mapped
// across the declared bounds.
func (s *Smoother) SetNormalized(u float64) {
	u = clamp(u, 0, 1)
	s.SetTarget(s.min + u*(s.max-s.min))
}

// SetBipolar sets the target from a bipolar value in [-1, 1] mapped
// across the declared bounds. This is the per-tick entry point for
// modulation sources.
func (s *Smoother) SetBipolar(b float64) {
	b = clamp(b, -1, 1)
	s.SetTarget(s.min + (b+1)*0.5*(s.max-s.min))
}

// Current returns the present value without advancing it.
func (s *Smoother) Current() float64 { return s.current }

// Target returns the value the smoother is ramping toward.
func (s *Smoother) Target() float64 { return s.target }

// Settled reports whether the value has converged onto its target.
func (s *Smoother) Settled() bool { return s.settled }

// Bounds returns the declared [min, max] range.
func (s *Smoother) Bounds() (min, max float64) { return s.min, s.max }

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
