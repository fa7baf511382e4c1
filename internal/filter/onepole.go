// Package filter holds the per-voice filters: cheap one-pole resonant
// shapes for kick duties and two state-variable topologies for everything
// that needs selectable modes. These run inside voice tick loops, so they
// are plain mutable structs with no cross-thread story; smoothing of their
// parameters is the caller's job.
package filter

import "math"

// ResonantLowpass is a one-pole lowpass with a feedback-based resonance
// peak. It is not a textbook resonant filter, but for enveloped drum noise
// the soft peak it puts at the cutoff is exactly the coloration wanted.
type ResonantLowpass struct {
	sampleRate float64
	cutoff     float64
	resonance  float64
	state      float64
	prevOut    float64
}

func NewResonantLowpass(sampleRate, cutoff, resonance float64) *ResonantLowpass {
	return &ResonantLowpass{
		sampleRate: sampleRate,
		cutoff:     cutoff,
		resonance:  resonance,
	}
}

func (f *ResonantLowpass) Reset() {
	f.state = 0
	f.prevOut = 0
}

func (f *ResonantLowpass) SetCutoff(hz float64) {
	f.cutoff = clamp(hz, 20, 20000)
}

func (f *ResonantLowpass) SetResonance(q float64) {
	f.resonance = clamp(q, 0, 10)
}

func (f *ResonantLowpass) Process(input float64) float64 {
	alpha := 1 - math.Exp(-twoPi*f.cutoff/f.sampleRate)
	alpha = clamp(alpha, 0, 0.99)

	// Feedback from the previous output builds the peak at the cutoff.
	withFeedback := input + f.prevOut*f.resonance*0.1
	f.state += alpha * (withFeedback - f.state)

	out := f.state * (1 + f.resonance*0.3)
	f.prevOut = out
	return out
}

// ResonantHighpass subtracts the one-pole lowpass state from the input and
// boosts the remainder slightly with resonance.
type ResonantHighpass struct {
	sampleRate float64
	cutoff     float64
	resonance  float64
	state      float64
}

func NewResonantHighpass(sampleRate, cutoff, resonance float64) *ResonantHighpass {
	return &ResonantHighpass{
		sampleRate: sampleRate,
		cutoff:     cutoff,
		resonance:  resonance,
	}
}

func (f *ResonantHighpass) Reset() {
	f.state = 0
}

func (f *ResonantHighpass) SetCutoff(hz float64)   { f.cutoff = hz }
func (f *ResonantHighpass) SetResonance(q float64) { f.resonance = q }

func (f *ResonantHighpass) Process(input float64) float64 {
	alpha := 1 - math.Exp(-twoPi*f.cutoff/f.sampleRate)
	highpassed := input - f.state
	f.state += alpha * highpassed
	return highpassed * (1 + f.resonance*0.1)
}

const twoPi = math.Pi * 2

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
