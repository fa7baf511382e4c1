package gen

import "math"

const twoPi = math.Pi * 2

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Saw
	Triangle
	RingMod
	Noise
)

// maxHarmonics caps the additive series for band-limited shapes. Twenty
// partials is inaudibly short of ideal for drum fundamentals and keeps the
// per-sample cost flat.
const maxHarmonics = 20

// Oscillator is an enveloped, band-limited tone source. Phase is derived
// from time since trigger rather than accumulated per sample, so two
// oscillators triggered together stay phase-locked regardless of buffer
// boundaries.
type Oscillator struct {
	sampleRate  float64
	waveform    Waveform
	freq        float64
	modFreq     float64
	volume      float64
	enabled     bool
	sampleIndex float64
	env         Envelope
}

func NewOscillator(sampleRate, freq float64) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		waveform:   Square,
		freq:       freq,
		modFreq:    freq * 0.5,
		volume:     1.0,
		enabled:    true,
		env:        NewEnvelope(NewADSR(0.01, 0.3, 0.7, 0.5)),
	}
}

func (o *Oscillator) SetWaveform(w Waveform) { o.waveform = w }

func (o *Oscillator) SetFrequency(hz float64) {
	o.freq = math.Max(hz, 0)
}

func (o *Oscillator) Frequency() float64 { return o.freq }

// SetModulatorFrequency sets the second tone used by the RingMod shape.
func (o *Oscillator) SetModulatorFrequency(hz float64) {
	o.modFreq = math.Max(hz, 0)
}

func (o *Oscillator) SetVolume(v float64) {
	o.volume = clamp(v, 0, 1)
}

func (o *Oscillator) Volume() float64 { return o.volume }

func (o *Oscillator) SetADSR(cfg ADSR) { o.env.SetConfig(cfg) }

// Env exposes the amplitude envelope for direct reconfiguration.
func (o *Oscillator) Env() *Envelope { return &o.env }

func (o *Oscillator) SetEnabled(enabled bool) { o.enabled = enabled }

func (o *Oscillator) Enabled() bool { return o.enabled }

// Trigger restarts the envelope and resets phase so every hit starts from
// the same point in the cycle.
func (o *Oscillator) Trigger(now float64) {
	o.env.Trigger(now)
	o.sampleIndex = 0
}

func (o *Oscillator) Release(now float64) {
	o.env.Release(now)
}

// Tick renders one sample at the given time.
func (o *Oscillator) Tick(now float64) float64 {
	if !o.enabled {
		return 0
	}
	elapsed := 0.0
	if o.env.Active() {
		elapsed = now - o.env.triggerTime
	}
	o.sampleIndex = elapsed * o.sampleRate

	var raw float64
	switch o.waveform {
	case Sine:
		raw = o.sineAt(o.freq)
	case Square:
		raw = o.harmonicSum(2, 1)
	case Saw:
		raw = o.harmonicSum(1, 1)
	case Triangle:
		raw = o.harmonicSum(2, 2)
	case RingMod:
		raw = o.sineAt(o.freq) * o.sineAt(o.modFreq)
	case Noise:
		raw = hashNoise(uint64(o.sampleIndex))
	}

	// Crude anti-aliasing: back off level once the fundamental climbs into
	// the top decade of the spectrum.
	antiAlias := 1.0
	if o.freq > o.sampleRate*0.1 {
		antiAlias = 0.7
	}
	return raw * antiAlias * o.env.Amplitude(now) * o.volume
}

func (o *Oscillator) sineAt(freq float64) float64 {
	return math.Sin(o.sampleIndex * freq * twoPi / o.sampleRate)
}

// harmonicSum builds square, saw, and triangle shapes additively. The
// series stops at maxHarmonics or Nyquist, whichever comes first.
func (o *Oscillator) harmonicSum(indexStep int, gainExponent float64) float64 {
	if o.freq <= 0 {
		return 0
	}
	limit := int(o.sampleRate / (2 * o.freq))
	if limit > maxHarmonics {
		limit = maxHarmonics
	}
	out := 0.0
	for i := 1; i <= limit; i += indexStep {
		if o.freq*float64(i) > o.sampleRate/2 {
			break
		}
		gain := 1.0 / math.Pow(float64(i), gainExponent)
		out += gain * o.sineAt(o.freq*float64(i))
	}
	return out
}

// hashNoise maps a sample index to a deterministic value in [-1, 1] using
// a 64-bit finalizer mix.
func hashNoise(n uint64) float64 {
	n ^= n >> 33
	n *= 0xff51afd7ed558ccd
	n ^= n >> 33
	n *= 0xc4ceb9fe1a85ec53
	n ^= n >> 33
	return float64(n)/float64(math.MaxUint64)*2 - 1
}
