package effects

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Flush threshold for denormal state values.
const denormalThreshold = 1e-15

// DC blocker feedback coefficient, roughly a 20 Hz highpass at 44.1kHz.
const dcBlockerCoeff = 0.995

// TubeSaturation is an arctangent soft-clip stage with controllable
// even-harmonic generation. Asymmetric bias plus an explicit second
// harmonic give it a rounder character than plain tanh; the DC offset
// the asymmetry introduces is removed by a one-pole blocker. Drive,
// warmth and mix are smoothed over 30 ms.
type TubeSaturation struct {
	drive  *param.Shared
	warmth *param.Shared
	mix    *param.Shared

	dcX1 float64
	dcY1 float64
}

// NewTubeSaturation creates a tube saturation stage. drive, warmth and
// mix are all normalized to [0, 1].
func NewTubeSaturation(sampleRate, drive, warmth, mix float64) *TubeSaturation {
	return &TubeSaturation{
		drive:  param.NewShared(clamp(drive, 0, 1), 0, 1, 30, sampleRate),
		warmth: param.NewShared(clamp(warmth, 0, 1), 0, 1, 30, sampleRate),
		mix:    param.NewShared(clamp(mix, 0, 1), 0, 1, 30, sampleRate),
	}
}

// SetDrive sets the drive amount in [0, 1]. Safe from any goroutine.
func (t *TubeSaturation) SetDrive(v float64) { t.drive.Set(v) }

// SetWarmth sets the even-harmonic amount in [0, 1]. Safe from any
// goroutine.
func (t *TubeSaturation) SetWarmth(v float64) { t.warmth.Set(v) }

// SetMix sets the wet/dry mix in [0, 1]. Safe from any goroutine.
func (t *TubeSaturation) SetMix(v float64) { t.mix.Set(v) }

func (t *TubeSaturation) Drive() float64  { return t.drive.Target() }
func (t *TubeSaturation) Warmth() float64 { return t.warmth.Target() }
func (t *TubeSaturation) Mix() float64    { return t.mix.Target() }

func (t *TubeSaturation) Process(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	// User drive 0-1 maps to gain 1-8, warmth 0-1 to bias 0-0.4.
	drive := 1.0 + t.drive.Tick()*7.0
	bias := t.warmth.Tick() * 0.4
	mix := t.mix.Tick()

	if mix < 0.0001 {
		return x
	}

	driven := x * drive
	biased := driven + bias*math.Abs(driven)
	softSat := math.Atan(biased) * (2.0 / math.Pi)

	// x^2 * sign(x) puts a second harmonic under the bias control.
	second := softSat * softSat * 0.15
	if softSat < 0 {
		second = -second
	}
	saturated := softSat + second*bias

	// One-pole DC blocker: y[n] = x[n] - x[n-1] + R*y[n-1].
	blocked := saturated - t.dcX1 + dcBlockerCoeff*t.dcY1
	t.dcX1 = saturated
	if math.Abs(blocked) < denormalThreshold {
		t.dcY1 = 0
	} else {
		t.dcY1 = blocked
	}

	out := x*(1.0-mix) + blocked*mix
	if math.IsNaN(out) || math.IsInf(out, 0) {
		t.dcX1 = 0
		t.dcY1 = 0
		return 0
	}
	return out
}

// Reset clears the DC blocker state.
func (t *TubeSaturation) Reset() {
	t.dcX1 = 0
	t.dcY1 = 0
}
