package param

import (
	"math"
	"sync/atomic"
)

// Shared pairs a Smoother owned by the audio goroutine with an
// atomically published target, so any goroutine can retarget the value
// without locking against the audio callback. The smoother side is
// exclusive to the audio goroutine; the target side is safe anywhere.
type Shared struct {
	bits atomic.Uint64
	sm   Smoother
}

// NewShared returns a cross-goroutine smoothed value with the given
// starting value, bounds and ramp time.
func NewShared(value, min, max, smoothingMS, sampleRate float64) *Shared {
	p := &Shared{sm: *NewSmoother(value, min, max, smoothingMS, sampleRate)}
	p.bits.Store(math.Float64bits(p.sm.Target()))
	return p
}

// Set publishes a new target, clamped to the declared bounds. Safe
// from any goroutine.
func (p *Shared) Set(v float64) {
	p.bits.Store(math.Float64bits(clamp(v, p.sm.min, p.sm.max)))
}

// SetNormalized publishes a target from a unit value in [0, 1] mapped
// across the declared bounds. Safe from any goroutine.
func (p *Shared) SetNormalized(u float64) {
	u = clamp(u, 0, 1)
	p.Set(p.sm.min + u*(p.sm.max-p.sm.min))
}

// Target returns the most recently published target. Safe from any
// goroutine.
func (p *Shared) Target() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Tick folds the latest published target into the smoother and
// advances it one sample. Audio goroutine only.
func (p *Shared) Tick() float64 {
	p.sm.SetTarget(math.Float64frombits(p.bits.Load()))
	return p.sm.Tick()
}

// Current returns the present smoothed value. Audio goroutine only.
func (p *Shared) Current() float64 { return p.sm.current }
