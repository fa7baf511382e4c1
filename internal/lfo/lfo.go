// Package lfo provides the sine low-frequency oscillator the engine
// uses for parameter modulation. An LFO free-runs at a rate in Hz or
// locks to a musical division of the current tempo, and optionally
// carries a route naming the generator parameter it drives.
package lfo

import "math"

const twoPi = math.Pi * 2

// Division is a tempo-synced LFO rate expressed as a musical length.
type Division int

const (
	DivFourBars Division = iota
	DivTwoBars
	DivOneBar
	DivHalf
	DivQuarter
	DivEighth
	DivSixteenth
	DivThirtySecond
)

// BeatsPerCycle returns how many quarter-note beats one LFO cycle
// spans at this division, assuming 4/4.
func (d Division) BeatsPerCycle() float64 {
	switch d {
	case DivFourBars:
		return 16
	case DivTwoBars:
		return 8
	case DivOneBar:
		return 4
	case DivHalf:
		return 2
	case DivQuarter:
		return 1
	case DivEighth:
		return 0.5
	case DivSixteenth:
		return 0.25
	case DivThirtySecond:
		return 0.125
	}
	return 1
}

func (d Division) String() string {
	switch d {
	case DivFourBars:
		return "4bars"
	case DivTwoBars:
		return "2bars"
	case DivOneBar:
		return "1bar"
	case DivHalf:
		return "1/2"
	case DivQuarter:
		return "1/4"
	case DivEighth:
		return "1/8"
	case DivSixteenth:
		return "1/16"
	case DivThirtySecond:
		return "1/32"
	}
	return "1/4"
}

// ParseDivision maps a division name like "1bar" or "1/16" back to its
// constant. Spelled-out forms ("quarter", "1/4note") are accepted too.
func ParseDivision(s string) (Division, bool) {
	switch s {
	case "4bars", "4bar":
		return DivFourBars, true
	case "2bars", "2bar":
		return DivTwoBars, true
	case "1bar", "bar":
		return DivOneBar, true
	case "1/2", "half", "1/2note":
		return DivHalf, true
	case "1/4", "quarter", "1/4note":
		return DivQuarter, true
	case "1/8", "eighth", "1/8note":
		return DivEighth, true
	case "1/16", "sixteenth", "1/16note":
		return DivSixteenth, true
	case "1/32", "thirtysecond", "thirty_second", "1/32note":
		return DivThirtySecond, true
	}
	return 0, false
}

// Route names the generator parameter an LFO drives.
type Route struct {
	Generator string
	Parameter string
}

// LFO is a sine oscillator intended for sub-audio modulation rates.
// It always ticks, routed or not, so its phase stays musically
// meaningful when a route is added later.
type LFO struct {
	sampleRate float64
	freq       float64
	phase      float64 // [0, 1)

	synced   bool
	division Division
	bpm      float64 // cached, read only while synced

	route  *Route
	amount float64
	offset float64
}

// New creates a free-running LFO at the given frequency in Hz with
// amount 1 and offset 0.
func New(freq, sampleRate float64) *LFO {
	return &LFO{
		sampleRate: sampleRate,
		freq:       freq,
		bpm:        120,
		amount:     1.0,
	}
}

// NewSynced creates an LFO locked to a musical division at the given
// tempo.
func NewSynced(div Division, bpm, sampleRate float64) *LFO {
	l := New(0, sampleRate)
	l.bpm = bpm
	l.SetDivision(div)
	return l
}

// SetFrequency sets a free-running rate in Hz, leaving sync mode if
// the LFO was tempo-locked.
func (l *LFO) SetFrequency(hz float64) {
	l.freq = hz
	l.synced = false
}

// Frequency returns the effective rate in Hz.
func (l *LFO) Frequency() float64 { return l.freq }

// SetDivision locks the LFO to a musical division of the cached tempo.
func (l *LFO) SetDivision(d Division) {
	l.division = d
	l.synced = true
	l.freq = (l.bpm / 60.0) / d.BeatsPerCycle()
}

// Synced reports whether the LFO follows the tempo.
func (l *LFO) Synced() bool { return l.synced }

// Division returns the musical division used while synced.
func (l *LFO) Division() Division { return l.division }

// SetBPM updates the cached tempo. A synced LFO picks up the new rate
// on its next tick; the phase is never reset, so the waveform stays
// continuous through tempo changes.
func (l *LFO) SetBPM(bpm float64) {
	l.bpm = bpm
	if l.synced {
		l.freq = (bpm / 60.0) / l.division.BeatsPerCycle()
	}
}

// SetRoute points the LFO at a generator parameter.
func (l *LFO) SetRoute(generator, parameter string) {
	l.route = &Route{Generator: generator, Parameter: parameter}
}

// ClearRoute detaches the LFO from its target. It keeps ticking.
func (l *LFO) ClearRoute() { l.route = nil }

// Route returns the current route, if any.
func (l *LFO) Route() (Route, bool) {
	if l.route == nil {
		return Route{}, false
	}
	return *l.route, true
}

// SetAmount scales the sine before the offset is added.
func (l *LFO) SetAmount(a float64) { l.amount = a }

func (l *LFO) Amount() float64 { return l.amount }

// SetOffset recenters the output. Useful range is [-1, 1] to keep the
// result inside the bipolar modulation range.
func (l *LFO) SetOffset(o float64) { l.offset = o }

func (l *LFO) Offset() float64 { return l.offset }

// Tick produces the next modulation value and advances the phase.
func (l *LFO) Tick() float64 {
	value := math.Sin(l.phase * twoPi)

	l.phase += l.freq / l.sampleRate
	if l.phase >= 1.0 {
		l.phase -= 1.0
	}

	return l.offset + value*l.amount
}

// Reset rewinds the phase to 0.
func (l *LFO) Reset() { l.phase = 0 }

// Phase returns the current phase in [0, 1).
func (l *LFO) Phase() float64 { return l.phase }
