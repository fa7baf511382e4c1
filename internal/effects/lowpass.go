package effects

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Lowpass is a two-pole resonant lowpass for the effect chain, built
// from two cascaded one-pole stages with tanh-limited resonance
// feedback. Cutoff and resonance are smoothed over 30 ms so sweeps
// stay click-free.
type Lowpass struct {
	sampleRate float64

	cutoff    *param.Shared
	resonance *param.Shared

	stage1 float64
	stage2 float64
}

// NewLowpass creates a lowpass effect. cutoff is clamped to
// [20, 20000] Hz and resonance to [0, 0.95].
func NewLowpass(sampleRate, cutoff, resonance float64) *Lowpass {
	return &Lowpass{
		sampleRate: sampleRate,
		cutoff:     param.NewShared(clamp(cutoff, 20, 20000), 20, 20000, 30, sampleRate),
		resonance:  param.NewShared(clamp(resonance, 0, 0.95), 0, 0.95, 30, sampleRate),
	}
}

// SetCutoff sets the cutoff frequency in Hz. Safe from any goroutine.
func (f *Lowpass) SetCutoff(hz float64) { f.cutoff.Set(hz) }

// SetResonance sets the resonance in [0, 0.95]. Safe from any
// goroutine.
func (f *Lowpass) SetResonance(res float64) { f.resonance.Set(res) }

func (f *Lowpass) Cutoff() float64    { return f.cutoff.Target() }
func (f *Lowpass) Resonance() float64 { return f.resonance.Target() }

func (f *Lowpass) Process(x float64) float64 {
	cutoff := f.cutoff.Tick()
	resonance := f.resonance.Tick()

	// Keep the cutoff well under Nyquist for stability.
	safeCutoff := math.Min(cutoff, f.sampleRate*0.40)

	// One-pole coefficient g = 1 - e^(-2*pi*fc/fs), more stable at
	// high frequencies than the sin or tan formulations.
	g := 1.0 - math.Exp(-2.0*math.Pi*safeCutoff/f.sampleRate)
	g = clamp(g, 0, 0.90)

	// Resonance falls off above 5 kHz to keep the feedback loop tame.
	freqRatio := math.Min(safeCutoff/5000.0, 1.0)
	effective := resonance * (1.0 - freqRatio*freqRatio*0.7)

	// Max feedback 0.95*3.5*0.3 sits just at the edge of
	// self-oscillation.
	feedback := effective * 3.5
	withFeedback := x - math.Tanh(f.stage2*feedback)*math.Min(feedback, 1.0)

	f.stage1 += g * (withFeedback - f.stage1)
	f.stage2 += g * (f.stage1 - f.stage2)

	out := math.Tanh(f.stage2)

	if math.Abs(f.stage1) < denormalThreshold {
		f.stage1 = 0
	}
	if math.Abs(f.stage2) < denormalThreshold {
		f.stage2 = 0
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		f.stage1 = 0
		f.stage2 = 0
		return 0
	}
	return out
}

// Reset clears both filter stages.
func (f *Lowpass) Reset() {
	f.stage1 = 0
	f.stage2 = 0
}
