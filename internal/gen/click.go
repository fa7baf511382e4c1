package gen

// clickImpulse is a 64-sample strike transient: a steep unipolar decay
// with a tiny tail bump, originally sampled from a drum patch impulse
// table. Played once per trigger it excites resonant filter banks the
// way a mallet excites a membrane.
var clickImpulse = [64]float64{
	0.884058, 0.942029, 0.913043, 0.869565, 0.833333, 0.797101, 0.772947, 0.748792,
	0.724638, 0.695652, 0.666667, 0.637681, 0.619565, 0.601449, 0.583333, 0.565217,
	0.536232, 0.507246, 0.478261, 0.449275, 0.42029, 0.391304, 0.371981, 0.352657,
	0.333333, 0.304348, 0.275362, 0.23913, 0.202899, 0.181159, 0.15942, 0.137681,
	0.115942, 0.101449, 0.086957, 0.072464, 0.057971, 0.043478, 0.028986, 0.014493,
	0.009662, 0.004831, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0.014493, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Click plays the strike impulse once per trigger, then goes silent.
type Click struct {
	position int
	playing  bool
}

func NewClick() Click {
	return Click{}
}

func (c *Click) Reset() {
	*c = Click{}
}

// Trigger restarts playback from the first sample.
func (c *Click) Trigger() {
	c.position = 0
	c.playing = true
}

func (c *Click) Active() bool { return c.playing }

// Tick returns the next impulse sample, or zero once playback has run
// out. The oscillator stops itself after the final sample.
func (c *Click) Tick() float64 {
	if !c.playing {
		return 0
	}
	sample := clickImpulse[c.position]
	c.position++
	if c.position >= len(clickImpulse) {
		c.playing = false
	}
	return sample
}
