package voice

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/drumkit-audio/drumkit-go/internal/filter"
	"github.com/drumkit-audio/drumkit-go/internal/gen"
	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Hi-hat parameter ranges. Pitch is squared before mapping so the low
// half of the control sweeps the metallic register slowly.
const (
	hihatPitchMin, hihatPitchMax       = 3500.0, 10000.0
	hihatAttackMinMS, hihatAttackMaxMS = 0.5, 200.0
	hihatDecayMinMS, hihatDecayMaxMS   = 0.5, 4000.0
	hihatToneMin, hihatToneMax         = 500.0, 10000.0
)

// NoiseColor selects the hi-hat's noise source.
type NoiseColor uint8

const (
	NoiseWhite NoiseColor = iota
	NoisePink
)

// FilterSlope selects one or two highpass stages under the carrier.
type FilterSlope uint8

const (
	Slope12dB FilterSlope = iota
	Slope24dB
)

// HiHatConfig is a full hi-hat voicing. Pitch, decay, attack, and tone
// are normalized unit values; color and slope are discrete.
type HiHatConfig struct {
	Pitch       float64 // 0-1 squared over 3500-10000 Hz
	Decay       float64 // 0-1 over 0.5-4000 ms
	Attack      float64 // 0-1 over 0.5-200 ms
	NoiseColor  NoiseColor
	FilterSlope FilterSlope
	Tone        float64 // 0-1 over 500-10000 Hz
	Volume      float64
}

// ShortHiHat is a closed, immediate tick.
func ShortHiHat() HiHatConfig {
	return HiHatConfig{Pitch: 0.76, Decay: 0.05, FilterSlope: Slope24dB, Tone: 1, Volume: 1}
}

// LooseHiHat rings longer, toward an open hat.
func LooseHiHat() HiHatConfig {
	return HiHatConfig{Pitch: 0.76, Decay: 0.30, FilterSlope: Slope24dB, Tone: 1, Volume: 1}
}

// DarkHiHat sits lower with the tone filter nearly closed.
func DarkHiHat() HiHatConfig {
	return HiHatConfig{Pitch: 0.41, Decay: 0.05, FilterSlope: Slope24dB, Tone: 0.15, Volume: 1}
}

// SoftHiHat eases in with a slower attack.
func SoftHiHat() HiHatConfig {
	return HiHatConfig{Pitch: 0.41, Decay: 0.05, Attack: 0.15, FilterSlope: Slope24dB, Tone: 0.60, Volume: 1}
}

// DefaultHiHat returns the standard hi-hat voicing.
func DefaultHiHat() HiHatConfig { return ShortHiHat() }

// Lerp interpolates the continuous fields toward other by t. The
// discrete color and slope switch at the midpoint.
func (c HiHatConfig) Lerp(other HiHatConfig, t float64) HiHatConfig {
	t = clampUnit(t)
	color := c.NoiseColor
	slope := c.FilterSlope
	if t >= 0.5 {
		color = other.NoiseColor
		slope = other.FilterSlope
	}
	return HiHatConfig{
		Pitch:       param.Lerp(c.Pitch, other.Pitch, t),
		Decay:       param.Lerp(c.Decay, other.Decay, t),
		Attack:      param.Lerp(c.Attack, other.Attack, t),
		NoiseColor:  color,
		FilterSlope: slope,
		Tone:        param.Lerp(c.Tone, other.Tone, t),
		Volume:      param.Lerp(c.Volume, other.Volume, t),
	}
}

func hihatPitchHz(pitch float64) float64 {
	p := clampUnit(pitch)
	return denorm(p*p, hihatPitchMin, hihatPitchMax)
}

func hihatToneHz(tone float64) float64 {
	return denorm(tone, hihatToneMin, hihatToneMax)
}

// phaseModOsc is a bare sine oscillator whose phase takes an external
// offset each tick, so one can feed another for phase modulation.
type phaseModOsc struct {
	sampleRate float64
	frequency  float64
	phase      float64
}

func newPhaseModOsc(sampleRate, frequency float64) phaseModOsc {
	return phaseModOsc{sampleRate: sampleRate, frequency: frequency}
}

func (o *phaseModOsc) setFrequency(hz float64) {
	o.frequency = math.Max(hz, 0)
}

func (o *phaseModOsc) resetPhase() { o.phase = 0 }

func (o *phaseModOsc) tick(phaseMod float64) float64 {
	o.phase = math.Mod(o.phase+o.frequency/o.sampleRate, 1)
	p := o.phase + phaseMod
	p -= math.Floor(p)
	return math.Sin(2 * math.Pi * p)
}

// asymSmoother rises instantly and falls on a one-pole. Smoothing only
// the falling edge keeps the attack transient intact while the decay
// tail loses its stair-steps.
type asymSmoother struct {
	current   float64
	downCoeff float64
}

func newAsymSmoother(downSamples float64) asymSmoother {
	coeff := 1.0
	if downSamples > 0 {
		coeff = 1 - math.Exp(-1/downSamples)
	}
	return asymSmoother{downCoeff: coeff}
}

func (a *asymSmoother) reset(v float64) { a.current = v }

func (a *asymSmoother) process(target float64) float64 {
	if target >= a.current {
		a.current = target
	} else {
		a.current += a.downCoeff * (target - a.current)
	}
	return a.current
}

// hatStage is one 12 dB/oct highpass leg built on an algo-dsp biquad
// section. Sections carry their coefficients immutably, so a retune
// rebuilds the section; the change test keeps that off the per-tick
// path once the pitch smoother settles.
type hatStage struct {
	sampleRate float64
	cutoff     float64
	section    *biquad.Section
}

func newHatStage(sampleRate, cutoff float64) *hatStage {
	h := &hatStage{sampleRate: sampleRate}
	h.retune(cutoff)
	return h
}

func (h *hatStage) retune(cutoff float64) {
	h.cutoff = cutoff
	h.section = biquad.NewSection(design.Highpass(cutoff, 1.0, h.sampleRate))
}

func (h *hatStage) setCutoff(cutoff float64) {
	if math.Abs(cutoff-h.cutoff) > 1 {
		h.retune(cutoff)
	}
}

func (h *hatStage) process(x float64) float64 { return h.section.ProcessSample(x) }

func (h *hatStage) reset() { h.section.Reset() }

type hihatParams struct {
	attack *param.Smoother
	decay  *param.Smoother
	pitch  *param.Smoother
	tone   *param.Smoother
	volume *param.Smoother
}

// HiHat runs a phase-modulated oscillator pair over a noise source: the
// modulator sits at a tenth of the pitch and is pushed around by the
// noise, and the carrier at pitch is pushed around by the modulator.
// One or two biquad highpass stages clear everything under the carrier,
// a curved attack/decay segment envelope shapes the hit, and a TPT
// highpass trims the tone last.
type HiHat struct {
	modTable
	sampleRate  float64
	pars        hihatParams
	noiseColor  NoiseColor
	filterSlope FilterSlope

	modOsc  phaseModOsc
	mainOsc phaseModOsc

	env         gen.SegmentEnvelope
	envSmoother asymSmoother

	hpf1 *hatStage
	hpf2 *hatStage
	tone *filter.TPTSVF

	whiteNoise gen.WhiteNoise
	pinkNoise  gen.PinkNoise

	blender  *param.Blender[HiHatConfig]
	active   bool
	velocity float64
}

// NewHiHat builds a hi-hat at the given sample rate voiced by cfg. The
// blend pad corners are short, loose, dark, and soft.
func NewHiHat(sampleRate float64, cfg HiHatConfig) *HiHat {
	h := &HiHat{
		modTable:    newModTable(),
		sampleRate:  sampleRate,
		noiseColor:  cfg.NoiseColor,
		filterSlope: cfg.FilterSlope,
		envSmoother: newAsymSmoother(100),
		whiteNoise:  gen.NewWhiteNoise(),
		pinkNoise:   gen.NewPinkNoise(),
		blender:     param.NewBlender(ShortHiHat(), LooseHiHat(), DarkHiHat(), SoftHiHat()),
		velocity:    1,
	}

	h.pars.attack = h.register("attack", cfg.Attack, sampleRate)
	h.pars.decay = h.register("decay", cfg.Decay, sampleRate)
	h.pars.pitch = h.register("pitch", cfg.Pitch, sampleRate)
	h.pars.tone = h.register("tone", cfg.Tone, sampleRate)
	h.pars.volume = h.register("volume", cfg.Volume, sampleRate)

	pitchHz := hihatPitchHz(cfg.Pitch)
	h.modOsc = newPhaseModOsc(sampleRate, pitchHz*0.1)
	h.mainOsc = newPhaseModOsc(sampleRate, pitchHz)
	h.hpf1 = newHatStage(sampleRate, pitchHz)
	h.hpf2 = newHatStage(sampleRate, pitchHz)
	h.tone = filter.NewTPTSVF(sampleRate, hihatToneHz(cfg.Tone), 0.5)
	return h
}

// SetConfig ramps every parameter toward the new voicing and switches
// the discrete color and slope immediately.
func (h *HiHat) SetConfig(cfg HiHatConfig) {
	h.pars.pitch.SetTarget(cfg.Pitch)
	h.pars.decay.SetTarget(cfg.Decay)
	h.pars.attack.SetTarget(cfg.Attack)
	h.pars.tone.SetTarget(cfg.Tone)
	h.pars.volume.SetTarget(cfg.Volume)
	h.noiseColor = cfg.NoiseColor
	h.filterSlope = cfg.FilterSlope
}

// Config snapshots the current smoothed values.
func (h *HiHat) Config() HiHatConfig {
	return HiHatConfig{
		Pitch:       h.pars.pitch.Current(),
		Decay:       h.pars.decay.Current(),
		Attack:      h.pars.attack.Current(),
		NoiseColor:  h.noiseColor,
		FilterSlope: h.filterSlope,
		Tone:        h.pars.tone.Current(),
		Volume:      h.pars.volume.Current(),
	}
}

// SetBlendPosition morphs the voicing across the preset pad.
func (h *HiHat) SetBlendPosition(x, y float64) {
	h.SetConfig(h.blender.Blend(x, y))
}

// SetNoiseColor switches the noise source.
func (h *HiHat) SetNoiseColor(color NoiseColor) { h.noiseColor = color }

// SetFilterSlope switches between one and two highpass stages.
func (h *HiHat) SetFilterSlope(slope FilterSlope) { h.filterSlope = slope }

// Trigger fires the hi-hat at full velocity.
func (h *HiHat) Trigger(now float64) { h.TriggerWithVelocity(now, 1) }

// TriggerWithVelocity fires the hi-hat. The envelope rebuilds from the
// smoothed attack and decay, both oscillator phases restart, and the
// filters reset for a clean transient.
func (h *HiHat) TriggerWithVelocity(now, velocity float64) {
	h.active = true
	h.velocity = clampUnit(velocity)

	attackMS := denorm(h.pars.attack.Current(), hihatAttackMinMS, hihatAttackMaxMS)
	decayMS := denorm(h.pars.decay.Current(), hihatDecayMinMS, hihatDecayMaxMS)

	h.env.SetSegments(gen.Seg(1, attackMS, -0.3), gen.Seg(0, decayMS, -0.8))
	h.env.SetInitial(0)
	h.env.Trigger(now)
	h.envSmoother.reset(0)

	h.modOsc.resetPhase()
	h.mainOsc.resetPhase()
	h.hpf1.reset()
	h.hpf2.reset()
	h.tone.Reset()
}

// Tick renders one sample at the given time.
func (h *HiHat) Tick(now float64) float64 {
	h.modTable.tick()
	if !h.active {
		return 0
	}

	pitchHz := hihatPitchHz(h.pars.pitch.Current())
	h.modOsc.setFrequency(pitchHz * 0.1)
	h.mainOsc.setFrequency(pitchHz)

	var noise float64
	if h.noiseColor == NoisePink {
		noise = h.pinkNoise.Tick()
	} else {
		noise = h.whiteNoise.Tick()
	}

	modOut := h.modOsc.tick(noise * 0.25)
	mainOut := h.mainOsc.tick(modOut * 0.75)

	h.hpf1.setCutoff(pitchHz)
	filtered := h.hpf1.process(mainOut)
	if h.filterSlope == Slope24dB {
		h.hpf2.setCutoff(pitchHz)
		filtered = h.hpf2.process(filtered) * 0.8
	}

	env := h.envSmoother.process(h.env.Value(now))
	out := filtered * env * h.velocity * h.pars.volume.Current() * 0.35

	h.tone.SetParams(hihatToneHz(h.pars.tone.Current()), 0.5)
	_, _, high := h.tone.ProcessAll(out)

	if h.env.Complete() && h.envSmoother.current < 1e-4 {
		h.active = false
	}
	return high
}

// Active reports whether the hi-hat is still sounding.
func (h *HiHat) Active() bool { return h.active }
