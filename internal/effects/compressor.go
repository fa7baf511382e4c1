package effects

import "math"

// Compressor implements basic dynamic range compression over the drum
// bus. The envelope follower tracks the rectified signal with
// separate attack and release coefficients; gain reduction is applied
// in the linear domain.
type Compressor struct {
	threshold float64
	ratio     float64
	attack    float64 // coefficient
	release   float64 // coefficient
	makeup    float64
	env       float64
}

// NewCompressor creates a compressor effect.
// thresholdDB: threshold in dB (e.g., -20)
// ratio: compression ratio (e.g., 4 for 4:1)
// attackMs: attack time in ms
// releaseMs: release time in ms
// makeupDB: makeup gain in dB
func NewCompressor(sampleRate, thresholdDB, ratio, attackMs, releaseMs, makeupDB float64) *Compressor {
	return &Compressor{
		threshold: math.Pow(10, thresholdDB/20),
		ratio:     ratio,
		attack:    1.0 - math.Exp(-1.0/(attackMs*sampleRate/1000.0)),
		release:   1.0 - math.Exp(-1.0/(releaseMs*sampleRate/1000.0)),
		makeup:    math.Pow(10, makeupDB/20),
	}
}

func (c *Compressor) Process(x float64) float64 {
	abs := math.Abs(x)
	// Envelope follower
	if abs > c.env {
		c.env += c.attack * (abs - c.env)
	} else {
		c.env += c.release * (abs - c.env)
	}
	return x * c.computeGain(c.env) * c.makeup
}

func (c *Compressor) computeGain(env float64) float64 {
	if env <= c.threshold || c.threshold <= 0 {
		return 1.0
	}
	// How far above threshold in linear scale
	over := env / c.threshold
	// Apply ratio: reduce the excess
	return math.Pow(over, 1.0/c.ratio-1)
}

func (c *Compressor) Reset() {
	c.env = 0
}
