package voice

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/filter"
	"github.com/drumkit-audio/drumkit-go/internal/gen"
	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Tom parameter ranges. Pitch is a MIDI note so the bank transposes in
// equal-temperament steps; decay stays short because toms are punchy.
const (
	tomPitchMin, tomPitchMax = 36.0, 84.0
	tomToneMin, tomToneMax   = 200.0, 8000.0
	tomDecayMin, tomDecayMax = 0.03, 0.8
	tomCurveMin, tomCurveMax = 0.2, 1.5
)

// Modal data measured from a reference drum at MIDI 57. The stored
// bandwidths are in hertz; Q is derived as frequency over bandwidth.
var (
	tomBankFrequencies = [13]float64{165, 228, 294, 320, 326, 356, 358, 419, 481, 549, 606, 724, 888}
	tomBankBandwidths  = [13]float64{275, 220, 79, 65, 57, 86, 100, 58, 72, 86, 88, 87, 81}
	tomBankGains       = [13]float64{1, 0.545, 0.380, 0.343, 0.375, 0.263, 0.316, 0.213, 0.160, 0.176, 0.226, 0.176, 0.093}
)

// tomBank is thirteen parallel bandpass filters tuned to the modal
// frequencies of a struck membrane.
type tomBank struct {
	filters [13]*filter.SVF
	gains   [13]float64
}

func newTomBank(sampleRate float64) *tomBank {
	b := &tomBank{gains: tomBankGains}
	for i := range b.filters {
		q := tomBankFrequencies[i] / tomBankBandwidths[i]
		b.filters[i] = filter.NewSVF(sampleRate, tomBankFrequencies[i], q)
	}
	return b
}

// process sums the weighted bandpass outputs. The scale keeps the
// resonant peaks under unity and tanh soft-clips what remains.
func (b *tomBank) process(input float64) float64 {
	out := 0.0
	for i, f := range b.filters {
		out += f.ProcessMode(input, filter.ModeBandpass) * b.gains[i]
	}
	return math.Tanh(out * 0.05)
}

func (b *tomBank) reset() {
	for _, f := range b.filters {
		f.Reset()
	}
}

// setPitchRatio transposes every mode by the same ratio.
func (b *tomBank) setPitchRatio(ratio float64) {
	for i, f := range b.filters {
		f.SetCutoff(tomBankFrequencies[i] * ratio)
	}
}

// applyColor tilts the modal gains around the midpoint: above it the
// upper partials come forward, below it the lower ones.
func (b *tomBank) applyColor(color float64) {
	n := (color - 0.5) * 2
	for i := range b.gains {
		position := float64(i) / 12
		curve := 1 + n*(1-position)
		if n > 0 {
			curve = 1 + n*position
		}
		b.gains[i] = tomBankGains[i] * curve
	}
}

// TomConfig is a full tom voicing in normalized unit values.
type TomConfig struct {
	Pitch      float64 // 0-1 over MIDI 36-84
	Color      float64 // modal tilt, 0.5 neutral
	Tone       float64 // 0-1 over 200-8000 Hz lowpass
	Bend       float64 // strike pitch-drop depth
	Decay      float64 // 0-1 over 0.03-0.8 s
	DecayCurve float64 // 0-1 over 0.2-1.5
	Volume     float64
}

// HighTom sits around MIDI 72 with a bright, punchy strike.
func HighTom() TomConfig {
	return TomConfig{Pitch: 0.75, Color: 0.6, Tone: 0.7, Bend: 0.4, Decay: 0.25, DecayCurve: 0.35, Volume: 0.85}
}

// MidTom is the neutral rack tom around MIDI 60.
func MidTom() TomConfig {
	return TomConfig{Pitch: 0.5, Color: 0.5, Tone: 0.5, Bend: 0.3, Decay: 0.4, DecayCurve: 0.3, Volume: 0.85}
}

// LowTom darkens toward MIDI 53.
func LowTom() TomConfig {
	return TomConfig{Pitch: 0.35, Color: 0.4, Tone: 0.4, Bend: 0.25, Decay: 0.55, DecayCurve: 0.25, Volume: 0.85}
}

// FloorTom rings longest and lowest, around MIDI 48.
func FloorTom() TomConfig {
	return TomConfig{Pitch: 0.25, Color: 0.35, Tone: 0.3, Bend: 0.2, Decay: 0.7, DecayCurve: 0.2, Volume: 0.9}
}

// DSTom is the reference tuning the membrane bank was voiced against:
// MIDI 57 with the tone filter wide open and a punchy bend. It sits
// outside the blend pad corners.
func DSTom() TomConfig {
	return TomConfig{Pitch: 0.4375, Color: 0.43, Tone: 1, Bend: 0.35, Decay: 0.35, DecayCurve: 0.3, Volume: 0.85}
}

// DefaultTom returns the standard tom voicing.
func DefaultTom() TomConfig { return MidTom() }

// Lerp interpolates every field toward other by t.
func (c TomConfig) Lerp(other TomConfig, t float64) TomConfig {
	t = clampUnit(t)
	return TomConfig{
		Pitch:      param.Lerp(c.Pitch, other.Pitch, t),
		Color:      param.Lerp(c.Color, other.Color, t),
		Tone:       param.Lerp(c.Tone, other.Tone, t),
		Bend:       param.Lerp(c.Bend, other.Bend, t),
		Decay:      param.Lerp(c.Decay, other.Decay, t),
		DecayCurve: param.Lerp(c.DecayCurve, other.DecayCurve, t),
		Volume:     param.Lerp(c.Volume, other.Volume, t),
	}
}

type tomParams struct {
	pitch      *param.Smoother
	color      *param.Smoother
	tone       *param.Smoother
	bend       *param.Smoother
	decay      *param.Smoother
	decayCurve *param.Smoother
	volume     *param.Smoother
}

// Tom strikes a thirteen-mode membrane model: the click impulse rides
// on a pink noise bed into the bandpass bank, a bend envelope drops
// the strike pitch onto the base, color tilts the modal balance, and a
// lowpass trims the tone.
type Tom struct {
	modTable
	sampleRate float64
	pars       tomParams

	click      gen.Click
	pinkNoise  gen.PinkNoise
	bank       *tomBank
	toneFilter *filter.SVF

	ampEnv   gen.Envelope
	pitchEnv gen.Envelope

	triggeredPitchRatio float64

	blender  *param.Blender[TomConfig]
	active   bool
	velocity float64
}

// NewTom builds a tom at the given sample rate voiced by cfg. The
// blend pad runs floor and low across the bottom, mid and high across
// the top, so the register climbs with the pad diagonal.
func NewTom(sampleRate float64, cfg TomConfig) *Tom {
	t := &Tom{
		modTable:            newModTable(),
		sampleRate:          sampleRate,
		click:               gen.NewClick(),
		pinkNoise:           gen.NewPinkNoise(),
		bank:                newTomBank(sampleRate),
		blender:             param.NewBlender(FloorTom(), LowTom(), MidTom(), HighTom()),
		triggeredPitchRatio: 1,
		velocity:            1,
	}

	t.pars.pitch = t.register("pitch", cfg.Pitch, sampleRate)
	t.pars.color = t.register("color", cfg.Color, sampleRate)
	t.pars.tone = t.register("tone", cfg.Tone, sampleRate)
	t.pars.bend = t.register("bend", cfg.Bend, sampleRate)
	t.pars.decay = t.register("decay", cfg.Decay, sampleRate)
	t.pars.decayCurve = t.register("decay_curve", cfg.DecayCurve, sampleRate)
	t.pars.volume = t.register("volume", cfg.Volume, sampleRate)

	t.toneFilter = filter.NewSVF(sampleRate, denorm(cfg.Tone, tomToneMin, tomToneMax), 0.7)
	return t
}

// SetConfig ramps every parameter toward the new voicing.
func (t *Tom) SetConfig(cfg TomConfig) {
	t.pars.pitch.SetTarget(cfg.Pitch)
	t.pars.color.SetTarget(cfg.Color)
	t.pars.tone.SetTarget(cfg.Tone)
	t.pars.bend.SetTarget(cfg.Bend)
	t.pars.decay.SetTarget(cfg.Decay)
	t.pars.decayCurve.SetTarget(cfg.DecayCurve)
	t.pars.volume.SetTarget(cfg.Volume)
}

// Config snapshots the current smoothed values.
func (t *Tom) Config() TomConfig {
	return TomConfig{
		Pitch:      t.pars.pitch.Current(),
		Color:      t.pars.color.Current(),
		Tone:       t.pars.tone.Current(),
		Bend:       t.pars.bend.Current(),
		Decay:      t.pars.decay.Current(),
		DecayCurve: t.pars.decayCurve.Current(),
		Volume:     t.pars.volume.Current(),
	}
}

// SetBlendPosition morphs the voicing across the preset pad.
func (t *Tom) SetBlendPosition(x, y float64) {
	t.SetConfig(t.blender.Blend(x, y))
}

// Trigger fires the tom at full velocity.
func (t *Tom) Trigger(now float64) { t.TriggerWithVelocity(now, 1) }

// TriggerWithVelocity fires the tom. The transposition ratio is frozen
// at trigger time against the MIDI 57 reference the modal data was
// measured at; velocity scales only the output level.
func (t *Tom) TriggerWithVelocity(now, velocity float64) {
	t.velocity = clampUnit(velocity)
	t.active = true

	pitchMIDI := denorm(t.pars.pitch.Current(), tomPitchMin, tomPitchMax)
	t.triggeredPitchRatio = math.Pow(2, (pitchMIDI-57)/12)

	decay := denorm(t.pars.decay.Current(), tomDecayMin, tomDecayMax)
	curve := denorm(t.pars.decayCurve.Current(), tomCurveMin, tomCurveMax)
	t.ampEnv.SetConfig(gen.NewADSR(0.001, decay, 0, decay*0.2).
		WithDecayCurve(gen.Exponential(curve)))
	t.ampEnv.Trigger(now)

	// The pitch settles at half the amplitude decay so the bend reads
	// as a strike rather than a slide.
	pitchDecay := decay * 0.5
	t.pitchEnv.SetConfig(gen.NewADSR(0.001, pitchDecay, 0, pitchDecay*0.1))
	t.pitchEnv.Trigger(now)

	t.click.Trigger()
	t.bank.reset()
	t.toneFilter.Reset()
	t.pinkNoise.Reset()
}

// Release starts the release segments of both envelopes.
func (t *Tom) Release(now float64) {
	if !t.active {
		return
	}
	t.ampEnv.Release(now)
	t.pitchEnv.Release(now)
}

// Tick renders one sample at the given time.
func (t *Tom) Tick(now float64) float64 {
	t.modTable.tick()
	if !t.active {
		return 0
	}

	pitchEnv := t.pitchEnv.Amplitude(now)
	pitchMod := t.triggeredPitchRatio * (1 + t.pars.bend.Current()*pitchEnv)

	t.bank.setPitchRatio(pitchMod)
	t.bank.applyColor(t.pars.color.Current())

	strike := t.click.Tick() + t.pinkNoise.Tick()
	filtered := t.bank.process(strike)

	t.toneFilter.SetCutoff(denorm(t.pars.tone.Current(), tomToneMin, tomToneMax))
	toned := t.toneFilter.ProcessMode(filtered, filter.ModeLowpass)

	out := toned * t.ampEnv.Amplitude(now) * math.Sqrt(t.velocity) * t.pars.volume.Current()

	if !t.ampEnv.Active() {
		t.active = false
	}
	return out
}

// Active reports whether the tom is still sounding.
func (t *Tom) Active() bool { return t.active }
