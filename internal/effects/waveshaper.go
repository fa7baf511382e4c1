package effects

import "math"

// Waveshaper combines tanh soft clipping with a cubic polynomial for
// denser harmonics, plus an asymmetry bias that adds even harmonics.
// The drum voices use it for per-voice overdrive; it also works as a
// chain effect. It is stateless, so parameter changes are safe from
// the control goroutine only between samples; voices set it up at
// configuration time.
type Waveshaper struct {
	drive     float64 // 1-10
	mix       float64 // 0-1
	asymmetry float64 // 0-1
}

// NewWaveshaper creates a waveshaper. drive is clamped to [1, 10],
// mix and asymmetry to [0, 1].
func NewWaveshaper(drive, mix, asymmetry float64) *Waveshaper {
	return &Waveshaper{
		drive:     clamp(drive, 1, 10),
		mix:       clamp(mix, 0, 1),
		asymmetry: clamp(asymmetry, 0, 1),
	}
}

func (w *Waveshaper) SetDrive(drive float64) { w.drive = clamp(drive, 1, 10) }
func (w *Waveshaper) Drive() float64         { return w.drive }

func (w *Waveshaper) SetMix(mix float64) { w.mix = clamp(mix, 0, 1) }
func (w *Waveshaper) Mix() float64       { return w.mix }

func (w *Waveshaper) SetAsymmetry(a float64) { w.asymmetry = clamp(a, 0, 1) }
func (w *Waveshaper) Asymmetry() float64     { return w.asymmetry }

func (w *Waveshaper) Process(x float64) float64 {
	if w.mix <= 0.0001 {
		return x
	}

	driven := x * w.drive
	biased := driven + w.asymmetry*0.3*math.Abs(driven)
	clipped := math.Tanh(biased)

	// f(x) = x - x^3/3 keeps the S-curve smooth while thickening the
	// harmonic content.
	shaped := clipped - clipped*clipped*clipped/3.0

	// The asymmetry bias shifts the curve; pull the offset back out.
	shaped -= w.asymmetry * 0.1

	return x*(1.0-w.mix) + shaped*w.mix
}

func (w *Waveshaper) Reset() {}
