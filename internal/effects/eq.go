package effects

import (
	"math"
	"sync/atomic"
)

// BandEQ is a 5-band equalizer with runtime-adjustable gains. Bands
// are split at 200Hz, 800Hz, 2.5kHz, and 8kHz by cascaded one-pole
// crossovers. Gains are stored as float64 bit patterns for lock-free
// reads from the audio goroutine.
type BandEQ struct {
	gains  [5]atomic.Uint64 // float64 bit patterns; 1.0 = unity
	alphas [4]float64       // crossover filter coefficients
	lp     [4]float64       // lowpass state per crossover
}

var defaultCrossovers = [4]float64{200, 800, 2500, 8000}

// NewBandEQ creates a 5-band EQ with all gains at unity.
func NewBandEQ(sampleRate float64) *BandEQ {
	eq := &BandEQ{}
	dt := 1.0 / sampleRate
	for i, freq := range defaultCrossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = dt / (rc + dt)
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float64bits(1.0))
	}
	return eq
}

// SetGain sets the gain for band (0-4). 1.0 = unity, 0.0 = silence,
// 2.0 = +6dB. Safe from any goroutine.
func (eq *BandEQ) SetGain(band int, gain float64) {
	if band >= 0 && band < 5 {
		eq.gains[band].Store(math.Float64bits(gain))
	}
}

// Gain returns the current gain for band (0-4).
func (eq *BandEQ) Gain(band int) float64 {
	if band >= 0 && band < 5 {
		return math.Float64frombits(eq.gains[band].Load())
	}
	return 1.0
}

func (eq *BandEQ) Process(x float64) float64 {
	// Split into 5 bands using 4 cascaded crossover filters.
	// Band 0: below crossover[0]
	// Band 4: above crossover[3]
	var bands [5]float64
	rem := x
	for i := 0; i < 4; i++ {
		eq.lp[i] += eq.alphas[i] * (rem - eq.lp[i])
		bands[i] = eq.lp[i]
		rem -= bands[i]
	}
	bands[4] = rem

	var out float64
	for i := 0; i < 5; i++ {
		out += bands[i] * math.Float64frombits(eq.gains[i].Load())
	}
	return out
}

func (eq *BandEQ) Reset() {
	for i := range eq.lp {
		eq.lp[i] = 0
	}
}
