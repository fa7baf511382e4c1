// Package gen provides the raw signal sources the drum voices are built
// from: time-based ADSR envelopes with shapeable segments, band-limited
// oscillators, pink noise, and short FM transient bursts. Everything here
// is evaluated against the engine clock in seconds so a voice never
// accumulates per-sample drift.
package gen

import "math"

// Curve shapes the attack or decay segment of an envelope. The zero value
// is a straight line. Exponential curves raise segment progress to a power:
// k below 1 moves fast early and settles slowly, k above 1 starts slow and
// accelerates toward the target.
type Curve struct {
	exponential bool
	k           float64
}

// Linear returns the identity curve.
func Linear() Curve { return Curve{} }

// Exponential returns a power curve with the given exponent. Non-positive
// exponents fall back to linear.
func Exponential(k float64) Curve {
	if k <= 0 {
		return Curve{}
	}
	return Curve{exponential: true, k: k}
}

func (c Curve) shape(progress float64) float64 {
	if !c.exponential || c.k == 1 {
		return progress
	}
	return math.Pow(progress, c.k)
}

// ADSR holds envelope segment times in seconds, the sustain level, and the
// curves applied to the attack and decay segments.
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64

	AttackCurve Curve
	DecayCurve  Curve
}

// NewADSR builds an envelope config with linear segments. Segment times are
// floored at one millisecond so a zero-length segment cannot click.
func NewADSR(attack, decay, sustain, release float64) ADSR {
	return ADSR{
		Attack:  math.Max(attack, 0.001),
		Decay:   math.Max(decay, 0.001),
		Sustain: clamp(sustain, 0, 1),
		Release: math.Max(release, 0.001),
	}
}

func (c ADSR) WithAttackCurve(curve Curve) ADSR {
	c.AttackCurve = curve
	return c
}

func (c ADSR) WithDecayCurve(curve Curve) ADSR {
	c.DecayCurve = curve
	return c
}

// Envelope is a retriggerable ADSR generator driven by absolute time.
type Envelope struct {
	cfg          ADSR
	active       bool
	released     bool
	triggerTime  float64
	releaseStart float64
}

func NewEnvelope(cfg ADSR) Envelope {
	return Envelope{cfg: cfg}
}

func (e *Envelope) SetConfig(cfg ADSR) { e.cfg = cfg }

func (e *Envelope) Config() ADSR { return e.cfg }

// Trigger restarts the envelope at the given time.
func (e *Envelope) Trigger(now float64) {
	e.active = true
	e.released = false
	e.triggerTime = now
	e.releaseStart = 0
}

// Release begins the release segment. Repeated calls before the segment
// finishes are ignored.
func (e *Envelope) Release(now float64) {
	if e.active && !e.released {
		e.released = true
		e.releaseStart = now
	}
}

func (e *Envelope) Active() bool { return e.active }

// Amplitude evaluates the envelope at the given time. The release segment
// is a linear fade multiplied onto the underlying attack/decay/sustain
// level; once it completes the envelope deactivates and reports zero. A
// sustain level of exactly zero releases itself as soon as the decay
// segment ends, which is the usual drum shape.
func (e *Envelope) Amplitude(now float64) float64 {
	if !e.active {
		return 0
	}
	elapsed := now - e.triggerTime

	if e.released {
		releaseElapsed := now - e.releaseStart
		if releaseElapsed >= e.cfg.Release {
			e.active = false
			return 0
		}
		return e.segmentLevel(elapsed) * (1 - releaseElapsed/e.cfg.Release)
	}

	level := e.segmentLevel(elapsed)
	if e.cfg.Sustain == 0 && elapsed >= e.cfg.Attack+e.cfg.Decay {
		e.released = true
		e.releaseStart = now
	}
	return level
}

// segmentLevel is the attack/decay/sustain trajectory without any release
// fade applied.
func (e *Envelope) segmentLevel(elapsed float64) float64 {
	switch {
	case elapsed < e.cfg.Attack:
		return e.cfg.AttackCurve.shape(elapsed / e.cfg.Attack)
	case elapsed < e.cfg.Attack+e.cfg.Decay:
		progress := (elapsed - e.cfg.Attack) / e.cfg.Decay
		return 1 - (1-e.cfg.Sustain)*e.cfg.DecayCurve.shape(progress)
	default:
		return e.cfg.Sustain
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
