package effects

import (
	dspfx "github.com/cwbudde/algo-dsp/dsp/effects"
)

// Chorus adapts the algo-dsp chorus to the mono effect chain. The
// underlying setters validate their ranges, so configuration happens
// through the error-returning methods rather than atomics; adjust it
// between renders, not mid-callback.
type Chorus struct {
	inner *dspfx.Chorus
}

// NewChorus creates a chorus at the given sample rate with a subtle
// default voicing (mix 0.18, depth 3 ms, speed 0.35 Hz, 3 stages).
func NewChorus(sampleRate float64) (*Chorus, error) {
	inner, err := dspfx.NewChorus()
	if err != nil {
		return nil, err
	}
	if err := inner.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if err := inner.SetMix(0.18); err != nil {
		return nil, err
	}
	if err := inner.SetDepth(0.003); err != nil {
		return nil, err
	}
	if err := inner.SetSpeedHz(0.35); err != nil {
		return nil, err
	}
	if err := inner.SetStages(3); err != nil {
		return nil, err
	}
	return &Chorus{inner: inner}, nil
}

// SetMix sets the wet mix in [0, 1].
func (c *Chorus) SetMix(mix float64) error { return c.inner.SetMix(mix) }

// SetDepth sets the modulation depth in seconds, up to 10 ms.
func (c *Chorus) SetDepth(depth float64) error { return c.inner.SetDepth(depth) }

// SetSpeedHz sets the modulation rate in Hz.
func (c *Chorus) SetSpeedHz(hz float64) error { return c.inner.SetSpeedHz(hz) }

// SetStages sets the number of chorus voices (1-6).
func (c *Chorus) SetStages(n int) error { return c.inner.SetStages(n) }

func (c *Chorus) Process(x float64) float64 { return c.inner.ProcessSample(x) }

func (c *Chorus) Reset() { c.inner.Reset() }

// Reverb adapts the algo-dsp reverb to the mono effect chain.
type Reverb struct {
	inner *dspfx.Reverb
}

// NewReverb creates a reverb with a medium room default (wet 0.22,
// dry 1.0, room 0.72, damp 0.45, gain 0.015).
func NewReverb() *Reverb {
	inner := dspfx.NewReverb()
	inner.SetWet(0.22)
	inner.SetDry(1.0)
	inner.SetRoomSize(0.72)
	inner.SetDamp(0.45)
	inner.SetGain(0.015)
	return &Reverb{inner: inner}
}

// SetWet sets the wet level.
func (r *Reverb) SetWet(wet float64) { r.inner.SetWet(wet) }

// SetDry sets the dry level.
func (r *Reverb) SetDry(dry float64) { r.inner.SetDry(dry) }

// SetRoomSize sets the room size in [0, 0.98].
func (r *Reverb) SetRoomSize(size float64) { r.inner.SetRoomSize(size) }

// SetDamp sets the high-frequency damping in [0, 0.99].
func (r *Reverb) SetDamp(damp float64) { r.inner.SetDamp(damp) }

func (r *Reverb) Process(x float64) float64 { return r.inner.ProcessSample(x) }

func (r *Reverb) Reset() { r.inner.Reset() }
