package filter

import "math"

// Mode selects which SVF output a mode-aware process call returns.
type Mode uint8

const (
	ModeLowpass Mode = iota
	ModeBandpass
	ModeHighpass
	ModeNotch
)

// SVF is a Chamberlin state-variable filter. It produces lowpass,
// bandpass, and highpass outputs simultaneously; the core runs twice per
// sample for stability toward Nyquist. Good for snare noise shaping and
// the bandpass banks in the tom body.
type SVF struct {
	sampleRate float64
	cutoff     float64
	resonance  float64

	low  float64
	band float64

	f float64
	q float64
}

func NewSVF(sampleRate, cutoff, resonance float64) *SVF {
	s := &SVF{
		sampleRate: sampleRate,
		cutoff:     clamp(cutoff, 20, 20000),
		resonance:  math.Max(resonance, 0.5),
	}
	s.update()
	return s
}

func (s *SVF) Reset() {
	s.low = 0
	s.band = 0
}

func (s *SVF) update() {
	normalized := math.Min(s.cutoff/s.sampleRate, 0.45)
	s.f = 2 * math.Sin(math.Pi*normalized)
	s.q = 1 / s.resonance
}

// Process returns the bandpass output, the common case for drum work.
func (s *SVF) Process(input float64) float64 {
	for i := 0; i < 2; i++ {
		s.low += s.f * s.band
		high := input - s.low - s.q*s.band
		s.band += s.f * high
	}
	return s.band
}

// ProcessAll returns the lowpass, bandpass, and highpass outputs.
func (s *SVF) ProcessAll(input float64) (low, band, high float64) {
	for i := 0; i < 2; i++ {
		s.low += s.f * s.band
		high = input - s.low - s.q*s.band
		s.band += s.f * high
	}
	return s.low, s.band, high
}

// ProcessMode returns the output selected by mode. Notch is the sum of the
// lowpass and highpass arms.
func (s *SVF) ProcessMode(input float64, mode Mode) float64 {
	low, band, high := s.ProcessAll(input)
	switch mode {
	case ModeLowpass:
		return low
	case ModeHighpass:
		return high
	case ModeNotch:
		return low + high
	default:
		return band
	}
}

func (s *SVF) SetCutoff(hz float64) {
	next := clamp(hz, 20, 20000)
	if math.Abs(next-s.cutoff) > 0.001 {
		s.cutoff = next
		s.update()
	}
}

func (s *SVF) SetResonance(q float64) {
	next := math.Max(q, 0.5)
	if math.Abs(next-s.resonance) > 0.001 {
		s.resonance = next
		s.update()
	}
}

// SetParams updates both parameters with one coefficient recompute.
func (s *SVF) SetParams(cutoff, resonance float64) {
	s.cutoff = clamp(cutoff, 20, 20000)
	s.resonance = math.Max(resonance, 0.5)
	s.update()
}

// TPTSVF is a topology-preserving-transform state variable filter after
// Simper. Unlike the Chamberlin form it stays well behaved with the cutoff
// parked near Nyquist, which the hi-hat needs.
type TPTSVF struct {
	sampleRate float64
	cutoff     float64
	resonance  float64

	g float64
	r float64
	h float64

	ic1 float64
	ic2 float64
}

func NewTPTSVF(sampleRate, cutoff, resonance float64) *TPTSVF {
	f := &TPTSVF{
		sampleRate: sampleRate,
		cutoff:     clamp(cutoff, 20, 20000),
		resonance:  math.Max(resonance, 0.5),
	}
	f.update()
	return f
}

func (f *TPTSVF) Reset() {
	f.ic1 = 0
	f.ic2 = 0
}

func (f *TPTSVF) update() {
	cutoff := clamp(f.cutoff, 20, f.sampleRate*0.45)
	q := math.Max(f.resonance, 0.5)

	f.g = math.Tan(math.Pi * cutoff / f.sampleRate)
	f.r = 1 / q
	f.h = 1 / (1 + f.r*f.g + f.g*f.g)
}

func (f *TPTSVF) ProcessAll(input float64) (low, band, high float64) {
	v1 := (f.g*(input-f.ic2) + f.ic1) * f.h
	v2 := f.ic2 + f.g*v1

	f.ic1 = 2*v1 - f.ic1
	f.ic2 = 2*v2 - f.ic2

	return v2, v1, input - (f.r*v1 + v2)
}

func (f *TPTSVF) ProcessMode(input float64, mode Mode) float64 {
	low, band, high := f.ProcessAll(input)
	switch mode {
	case ModeLowpass:
		return low
	case ModeHighpass:
		return high
	case ModeNotch:
		return low + high
	default:
		return band
	}
}

func (f *TPTSVF) SetParams(cutoff, resonance float64) {
	nextCutoff := clamp(cutoff, 20, f.sampleRate*0.45)
	nextRes := math.Max(resonance, 0.5)
	if math.Abs(nextCutoff-f.cutoff) > 0.001 || math.Abs(nextRes-f.resonance) > 0.001 {
		f.cutoff = nextCutoff
		f.resonance = nextRes
		f.update()
	}
}
