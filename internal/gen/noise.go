package gen

// pinkBands is the number of octave bands summed by the Voss-McCartney
// generator. Band i refreshes every 2^i samples.
const pinkBands = 5

// PinkNoise approximates 1/f noise by summing white noise sources held for
// progressively longer spans. Five bands give roughly -3 dB per octave
// across the audible range, which is plenty for drum bodies.
type PinkNoise struct {
	counter    uint64
	octaveSums [pinkBands]float64
	updates    [pinkBands]uint32
}

func NewPinkNoise() PinkNoise {
	return PinkNoise{}
}

func (p *PinkNoise) Reset() {
	*p = PinkNoise{}
}

// Tick produces the next sample, roughly within [-1, 1].
func (p *PinkNoise) Tick() float64 {
	p.counter++
	for i := 0; i < pinkBands; i++ {
		rate := uint32(1) << i
		p.updates[i]++
		if p.updates[i] >= rate {
			p.updates[i] = 0
			p.octaveSums[i] = hashNoise(p.counter + uint64(i)*1000000)
		}
	}
	out := 0.0
	for _, s := range p.octaveSums {
		out += s
	}
	return out * 0.2
}

// WhiteNoise is an xorshift64* generator for flat-spectrum noise.
type WhiteNoise struct {
	state uint64
}

func NewWhiteNoise() WhiteNoise {
	return WhiteNoise{state: 0x123456789abcdef0}
}

func (w *WhiteNoise) Tick() float64 {
	x := w.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	w.state = x
	hashed := x * 0x2545f4914f6cdd1d
	return float64(hashed)/float64(^uint64(0))*2 - 1
}
