// Package effects implements the post-mix effect chain: a brick-wall
// limiter, saturation and waveshaping stages, a resonant lowpass, a
// feedback delay, a five-band EQ, and chorus/reverb built on
// algo-dsp. Effects process mono float64 samples one at a time; every
// parameter that can change during playback goes through an atomic
// target so control code never locks against the audio goroutine.
package effects

// Effect processes one sample at a time.
type Effect interface {
	Process(x float64) float64
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effect
}

func NewChain(effects ...Effect) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(x float64) float64 {
	for _, e := range c.effects {
		x = e.Process(x)
	}
	return x
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effect) {
	c.effects = append(c.effects, e)
}

// Clear drops every effect from the chain.
func (c *Chain) Clear() {
	c.effects = c.effects[:0]
}

// Len reports how many effects the chain holds.
func (c *Chain) Len() int { return len(c.effects) }

// BrickWallLimiter clamps the signal to ±Threshold. It is the first
// effect seeded into every engine chain.
type BrickWallLimiter struct {
	Threshold float64
}

func NewBrickWallLimiter(threshold float64) *BrickWallLimiter {
	return &BrickWallLimiter{Threshold: threshold}
}

func (l *BrickWallLimiter) Process(x float64) float64 {
	if x > l.Threshold {
		return l.Threshold
	}
	if x < -l.Threshold {
		return -l.Threshold
	}
	return x
}

func (l *BrickWallLimiter) Reset() {}
