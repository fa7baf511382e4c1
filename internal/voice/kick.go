package voice

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/effects"
	"github.com/drumkit-audio/drumkit-go/internal/filter"
	"github.com/drumkit-audio/drumkit-go/internal/gen"
	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Kick parameter ranges. Config fields are unit values; these map them
// onto engineering units.
const (
	kickFreqMin, kickFreqMax               = 30.0, 120.0
	kickOscDecayMin, kickOscDecayMax       = 0.01, 4.0
	kickPitchCurveMin, kickPitchCurveMax   = 0.1, 4.0
	kickPitchRatioMin, kickPitchRatioMax   = 1.0, 10.0
	kickNoiseCutoffMin, kickNoiseCutoffMax = 20.0, 10000.0
	kickNoiseResMin, kickNoiseResMax       = 0.0, 5.0
	kickAmpDecayMin, kickAmpDecayMax       = 0.0, 4.0
	kickAmpCurveMin, kickAmpCurveMax       = 0.1, 10.0
)

// Velocity response. Decay shortens by up to half at full velocity,
// with a quadratic taper so soft hits barely tighten.
const (
	kickVelocityToDecay = 0.5
	kickVelocityToPitch = 0.7
)

// KickConfig is a full kick voicing in normalized unit values.
type KickConfig struct {
	Frequency           float64 // 0-1 over 30-120 Hz
	PunchAmount         float64 // mid-range presence
	SubAmount           float64 // sub-bass presence
	ClickAmount         float64 // high-frequency click
	OscillatorDecay     float64 // 0-1 over 0.01-4 s
	PitchEnvelopeAmount float64 // frequency sweep depth
	PitchEnvelopeCurve  float64 // 0-1 over 0.1-4
	Volume              float64
	PitchStartRatio     float64 // 0-1 over 1-10x start multiplier
	PhaseModAmount      float64 // transient snap, 0 disables
	NoiseAmount         float64 // pink noise layer level
	NoiseCutoff         float64 // 0-1 over 20-10000 Hz
	NoiseResonance      float64 // 0-1 over 0-5
	OverdriveAmount     float64 // 0 bypasses the waveshaper
	AmpDecay            float64 // 0-1 over 0-4 s
	AmpDecayCurve       float64 // 0-1 over 0.1-10
}

// TightKick is a short, punchy kick with a strong pitch envelope.
func TightKick() KickConfig {
	return KickConfig{
		Frequency:           0.22,
		PunchAmount:         0,
		SubAmount:           1,
		ClickAmount:         0,
		OscillatorDecay:     0.12,
		PitchEnvelopeAmount: 0.70,
		PitchEnvelopeCurve:  0.01,
		Volume:              0.85,
		PitchStartRatio:     0.64,
		PhaseModAmount:      1,
		NoiseAmount:         0.07,
		NoiseCutoff:         0.01,
		NoiseResonance:      0.02,
		OverdriveAmount:     0.20,
		AmpDecay:            0.12,
		AmpDecayCurve:       0.02,
	}
}

// PunchKick is mid-focused with click and resonant noise.
func PunchKick() KickConfig {
	return KickConfig{
		Frequency:           0.50,
		PunchAmount:         0.20,
		SubAmount:           1,
		ClickAmount:         0.20,
		OscillatorDecay:     0.12,
		PitchEnvelopeAmount: 0.60,
		PitchEnvelopeCurve:  0.10,
		Volume:              0.85,
		PitchStartRatio:     0.24,
		PhaseModAmount:      1,
		NoiseAmount:         0.07,
		NoiseCutoff:         0.11,
		NoiseResonance:      0.42,
		OverdriveAmount:     0.20,
		AmpDecay:            0.12,
		AmpDecayCurve:       0.02,
	}
}

// LooseKick has a longer decay, more punch, and a subtle pitch sweep.
func LooseKick() KickConfig {
	return KickConfig{
		Frequency:           0.32,
		PunchAmount:         0.40,
		SubAmount:           1,
		ClickAmount:         0,
		OscillatorDecay:     0.62,
		PitchEnvelopeAmount: 0.20,
		PitchEnvelopeCurve:  0.12,
		Volume:              0.85,
		PitchStartRatio:     0.84,
		PhaseModAmount:      1,
		NoiseAmount:         0.07,
		NoiseCutoff:         0.01,
		NoiseResonance:      0.02,
		OverdriveAmount:     0.30,
		AmpDecay:            0.12,
		AmpDecayCurve:       0.12,
	}
}

// DirtKick sits higher with heavy resonant noise.
func DirtKick() KickConfig {
	return KickConfig{
		Frequency:           0.62,
		PunchAmount:         0.10,
		SubAmount:           1,
		ClickAmount:         0.10,
		OscillatorDecay:     0.10,
		PitchEnvelopeAmount: 0.60,
		PitchEnvelopeCurve:  0.10,
		Volume:              0.85,
		PitchStartRatio:     0.44,
		PhaseModAmount:      1,
		NoiseAmount:         0.20,
		NoiseCutoff:         0.10,
		NoiseResonance:      0.82,
		OverdriveAmount:     0.20,
		AmpDecay:            0.10,
		AmpDecayCurve:       0.10,
	}
}

// DefaultKick returns the standard kick voicing.
func DefaultKick() KickConfig { return TightKick() }

// Lerp interpolates every field toward other by t.
func (c KickConfig) Lerp(other KickConfig, t float64) KickConfig {
	t = clampUnit(t)
	return KickConfig{
		Frequency:           param.Lerp(c.Frequency, other.Frequency, t),
		PunchAmount:         param.Lerp(c.PunchAmount, other.PunchAmount, t),
		SubAmount:           param.Lerp(c.SubAmount, other.SubAmount, t),
		ClickAmount:         param.Lerp(c.ClickAmount, other.ClickAmount, t),
		OscillatorDecay:     param.Lerp(c.OscillatorDecay, other.OscillatorDecay, t),
		PitchEnvelopeAmount: param.Lerp(c.PitchEnvelopeAmount, other.PitchEnvelopeAmount, t),
		PitchEnvelopeCurve:  param.Lerp(c.PitchEnvelopeCurve, other.PitchEnvelopeCurve, t),
		Volume:              param.Lerp(c.Volume, other.Volume, t),
		PitchStartRatio:     param.Lerp(c.PitchStartRatio, other.PitchStartRatio, t),
		PhaseModAmount:      param.Lerp(c.PhaseModAmount, other.PhaseModAmount, t),
		NoiseAmount:         param.Lerp(c.NoiseAmount, other.NoiseAmount, t),
		NoiseCutoff:         param.Lerp(c.NoiseCutoff, other.NoiseCutoff, t),
		NoiseResonance:      param.Lerp(c.NoiseResonance, other.NoiseResonance, t),
		OverdriveAmount:     param.Lerp(c.OverdriveAmount, other.OverdriveAmount, t),
		AmpDecay:            param.Lerp(c.AmpDecay, other.AmpDecay, t),
		AmpDecayCurve:       param.Lerp(c.AmpDecayCurve, other.AmpDecayCurve, t),
	}
}

type kickParams struct {
	frequency           *param.Smoother
	punch               *param.Smoother
	sub                 *param.Smoother
	click               *param.Smoother
	oscillatorDecay     *param.Smoother
	pitchEnvelopeAmount *param.Smoother
	pitchEnvelopeCurve  *param.Smoother
	volume              *param.Smoother
	pitchStartRatio     *param.Smoother
	phaseModAmount      *param.Smoother
	noiseAmount         *param.Smoother
	noiseCutoff         *param.Smoother
	noiseResonance      *param.Smoother
	overdrive           *param.Smoother
	ampDecay            *param.Smoother
	ampDecayCurve       *param.Smoother
}

// Kick layers three oscillators (sub sine, punch triangle at 2.5x, and
// a filtered noise click at 40x), a pink noise bed, and a phase-mod
// transient. Pitch-affecting values are frozen at trigger time so a
// sweep in flight never snaps when a control moves.
type Kick struct {
	modTable
	sampleRate float64
	pars       kickParams

	subOsc   *gen.Oscillator
	punchOsc *gen.Oscillator
	clickOsc *gen.Oscillator

	pitchEnv          gen.Envelope
	triggeredFreq     float64
	triggeredPitchMul float64

	clickFilter *filter.ResonantHighpass
	phaseMod    gen.PhaseModulator
	pinkNoise   gen.PinkNoise
	noiseFilter *filter.ResonantLowpass
	noiseEnv    gen.Envelope

	shaper *effects.Waveshaper
	ampEnv gen.Envelope

	blender  *param.Blender[KickConfig]
	active   bool
	velocity float64
}

// NewKick builds a kick at the given sample rate voiced by cfg. The
// blend pad corners are tight, punch, loose, and dirt.
func NewKick(sampleRate float64, cfg KickConfig) *Kick {
	k := &Kick{
		modTable:   newModTable(),
		sampleRate: sampleRate,
		phaseMod:   gen.NewPhaseModulator(),
		pinkNoise:  gen.NewPinkNoise(),
		shaper:     effects.NewWaveshaper(1, 1, 0),
		blender:    param.NewBlender(TightKick(), PunchKick(), LooseKick(), DirtKick()),
		velocity:   1,
	}

	k.pars.frequency = k.register("frequency", cfg.Frequency, sampleRate)
	k.pars.punch = k.register("punch", cfg.PunchAmount, sampleRate)
	k.pars.sub = k.register("sub", cfg.SubAmount, sampleRate)
	k.pars.click = k.register("click", cfg.ClickAmount, sampleRate)
	k.pars.oscillatorDecay = k.register("oscillator_decay", cfg.OscillatorDecay, sampleRate)
	k.pars.pitchEnvelopeAmount = k.register("pitch_envelope_amount", cfg.PitchEnvelopeAmount, sampleRate)
	k.pars.pitchEnvelopeCurve = k.register("pitch_envelope_curve", cfg.PitchEnvelopeCurve, sampleRate)
	k.pars.volume = k.register("volume", cfg.Volume, sampleRate)
	k.pars.pitchStartRatio = k.register("pitch_start_ratio", cfg.PitchStartRatio, sampleRate)
	k.pars.phaseModAmount = k.register("phase_mod_amount", cfg.PhaseModAmount, sampleRate)
	k.pars.noiseAmount = k.register("noise_amount", cfg.NoiseAmount, sampleRate)
	k.pars.noiseCutoff = k.register("noise_cutoff", cfg.NoiseCutoff, sampleRate)
	k.pars.noiseResonance = k.register("noise_resonance", cfg.NoiseResonance, sampleRate)
	k.pars.overdrive = k.register("overdrive", cfg.OverdriveAmount, sampleRate)
	k.pars.ampDecay = k.register("amp_decay", cfg.AmpDecay, sampleRate)
	k.pars.ampDecayCurve = k.register("amp_decay_curve", cfg.AmpDecayCurve, sampleRate)

	baseFreq := denorm(cfg.Frequency, kickFreqMin, kickFreqMax)
	k.subOsc = gen.NewOscillator(sampleRate, baseFreq)
	k.subOsc.SetWaveform(gen.Sine)
	k.punchOsc = gen.NewOscillator(sampleRate, baseFreq*2.5)
	k.punchOsc.SetWaveform(gen.Triangle)
	k.clickOsc = gen.NewOscillator(sampleRate, baseFreq*40)
	k.clickOsc.SetWaveform(gen.Noise)

	k.clickFilter = filter.NewResonantHighpass(sampleRate, 8000, 4)
	k.noiseFilter = filter.NewResonantLowpass(sampleRate,
		denorm(cfg.NoiseCutoff, kickNoiseCutoffMin, kickNoiseCutoffMax),
		denorm(cfg.NoiseResonance, kickNoiseResMin, kickNoiseResMax))

	k.triggeredFreq = baseFreq
	ratio := denorm(cfg.PitchStartRatio, kickPitchRatioMin, kickPitchRatioMax)
	k.triggeredPitchMul = 1 + (ratio-1)*cfg.PitchEnvelopeAmount
	return k
}

// SetConfig ramps every parameter toward the new voicing. Envelope
// timings take effect on the next trigger so a decaying hit is never
// reshaped mid-flight.
func (k *Kick) SetConfig(cfg KickConfig) {
	k.pars.frequency.SetTarget(cfg.Frequency)
	k.pars.punch.SetTarget(cfg.PunchAmount)
	k.pars.sub.SetTarget(cfg.SubAmount)
	k.pars.click.SetTarget(cfg.ClickAmount)
	k.pars.oscillatorDecay.SetTarget(cfg.OscillatorDecay)
	k.pars.pitchEnvelopeAmount.SetTarget(cfg.PitchEnvelopeAmount)
	k.pars.pitchEnvelopeCurve.SetTarget(cfg.PitchEnvelopeCurve)
	k.pars.volume.SetTarget(cfg.Volume)
	k.pars.pitchStartRatio.SetTarget(cfg.PitchStartRatio)
	k.pars.phaseModAmount.SetTarget(cfg.PhaseModAmount)
	k.pars.noiseAmount.SetTarget(cfg.NoiseAmount)
	k.pars.noiseCutoff.SetTarget(cfg.NoiseCutoff)
	k.pars.noiseResonance.SetTarget(cfg.NoiseResonance)
	k.pars.overdrive.SetTarget(cfg.OverdriveAmount)
	k.pars.ampDecay.SetTarget(cfg.AmpDecay)
	k.pars.ampDecayCurve.SetTarget(cfg.AmpDecayCurve)
}

// Config snapshots the current smoothed values.
func (k *Kick) Config() KickConfig {
	return KickConfig{
		Frequency:           k.pars.frequency.Current(),
		PunchAmount:         k.pars.punch.Current(),
		SubAmount:           k.pars.sub.Current(),
		ClickAmount:         k.pars.click.Current(),
		OscillatorDecay:     k.pars.oscillatorDecay.Current(),
		PitchEnvelopeAmount: k.pars.pitchEnvelopeAmount.Current(),
		PitchEnvelopeCurve:  k.pars.pitchEnvelopeCurve.Current(),
		Volume:              k.pars.volume.Current(),
		PitchStartRatio:     k.pars.pitchStartRatio.Current(),
		PhaseModAmount:      k.pars.phaseModAmount.Current(),
		NoiseAmount:         k.pars.noiseAmount.Current(),
		NoiseCutoff:         k.pars.noiseCutoff.Current(),
		NoiseResonance:      k.pars.noiseResonance.Current(),
		OverdriveAmount:     k.pars.overdrive.Current(),
		AmpDecay:            k.pars.ampDecay.Current(),
		AmpDecayCurve:       k.pars.ampDecayCurve.Current(),
	}
}

// SetBlendPosition morphs the voicing across the preset pad.
func (k *Kick) SetBlendPosition(x, y float64) {
	k.SetConfig(k.blender.Blend(x, y))
}

// Trigger fires the kick at its standard velocity.
func (k *Kick) Trigger(now float64) { k.TriggerWithVelocity(now, 0.5) }

// TriggerWithVelocity fires the kick. Velocity tightens the decay
// quadratically, scales the click level, and sets the output level on
// a square-root curve. Pitch parameters are snapshotted here and held
// for the whole hit.
func (k *Kick) TriggerWithVelocity(now, velocity float64) {
	k.velocity = clampUnit(velocity)
	k.active = true

	vel2 := k.velocity * k.velocity
	decayScale := 1 - kickVelocityToDecay*vel2

	baseDecay := denorm(k.pars.oscillatorDecay.Current(), kickOscDecayMin, kickOscDecayMax) * decayScale
	baseFreq := denorm(k.pars.frequency.Current(), kickFreqMin, kickFreqMax)

	k.triggeredFreq = baseFreq
	ratio := denorm(k.pars.pitchStartRatio.Current(), kickPitchRatioMin, kickPitchRatioMax)
	k.triggeredPitchMul = 1 + (ratio-1)*k.pars.pitchEnvelopeAmount.Current()

	// The pitch envelope runs the full amplitude duration; its curve
	// finishes the sweep early while the envelope stays active so the
	// frequency cannot jump at the tail.
	pitchCurve := denorm(k.pars.pitchEnvelopeCurve.Current(), kickPitchCurveMin, kickPitchCurveMax)
	k.pitchEnv.SetConfig(gen.NewADSR(0.001, baseDecay, 0, baseDecay*0.2).
		WithDecayCurve(curveFor(pitchCurve)))

	k.subOsc.SetADSR(gen.NewADSR(0.001, baseDecay, 0, baseDecay*0.2))
	k.punchOsc.SetADSR(gen.NewADSR(0.001, baseDecay, 0, baseDecay*0.2))
	k.clickOsc.SetADSR(gen.NewADSR(0.001, baseDecay*0.2, 0, baseDecay*0.02))

	k.subOsc.SetFrequency(baseFreq)
	k.punchOsc.SetFrequency(baseFreq * 2.5)
	k.clickOsc.SetFrequency(baseFreq * 40)

	k.subOsc.Trigger(now)
	k.punchOsc.Trigger(now)
	k.clickOsc.Trigger(now)
	k.pitchEnv.Trigger(now)

	if k.pars.phaseModAmount.Current() > 0.001 {
		k.phaseMod.Trigger(now)
	}

	k.noiseEnv.SetConfig(gen.NewADSR(0.001, baseDecay, 0, baseDecay*0.2))
	k.noiseEnv.Trigger(now)

	ampDecay := denorm(k.pars.ampDecay.Current(), kickAmpDecayMin, kickAmpDecayMax) * decayScale
	ampCurve := denorm(k.pars.ampDecayCurve.Current(), kickAmpCurveMin, kickAmpCurveMax)
	k.ampEnv.SetConfig(gen.NewADSR(0.001, ampDecay, 0, ampDecay*0.2).
		WithAttackCurve(gen.Exponential(0.5)).
		WithDecayCurve(curveFor(ampCurve)))
	k.ampEnv.Trigger(now)

	k.clickFilter.Reset()
	k.noiseFilter.Reset()
	k.pinkNoise.Reset()
}

// Release starts the release segments of the tonal layers.
func (k *Kick) Release(now float64) {
	if !k.active {
		return
	}
	k.subOsc.Release(now)
	k.punchOsc.Release(now)
	k.clickOsc.Release(now)
	k.pitchEnv.Release(now)
}

// applyLevels pushes the smoothed mix controls onto the oscillators.
func (k *Kick) applyLevels() {
	punch := k.pars.punch.Current()
	sub := k.pars.sub.Current()
	click := k.pars.click.Current()
	volume := k.pars.volume.Current()

	clickVel := 0.6 + 0.4*k.velocity
	k.subOsc.SetVolume(sub * volume)
	k.punchOsc.SetVolume(punch * volume * 0.7)
	k.clickOsc.SetVolume(click * volume * 0.15 * clickVel)
}

// Tick renders one sample at the given time.
func (k *Kick) Tick(now float64) float64 {
	k.modTable.tick()
	if !k.active {
		return 0
	}
	k.applyLevels()

	freqMul := 1 + (k.triggeredPitchMul-1)*k.pitchEnv.Amplitude(now)
	if amount := k.pars.phaseModAmount.Current(); amount > 0.001 {
		freqMul *= 1 + k.phaseMod.Tick(now)*amount*2
	}

	base := k.triggeredFreq
	k.subOsc.SetFrequency(base * freqMul)
	k.punchOsc.SetFrequency(base * 2.5 * freqMul)
	// The click keeps most of its transient character by taking only a
	// third of the sweep.
	k.clickOsc.SetFrequency(base * 40 * (1 + (freqMul-1)*0.3))

	out := k.subOsc.Tick(now) + k.punchOsc.Tick(now)
	out += k.clickFilter.Process(k.clickOsc.Tick(now))

	if noiseAmount := k.pars.noiseAmount.Current(); noiseAmount > 0.001 {
		k.noiseFilter.SetCutoff(denorm(k.pars.noiseCutoff.Current(), kickNoiseCutoffMin, kickNoiseCutoffMax))
		k.noiseFilter.SetResonance(denorm(k.pars.noiseResonance.Current(), kickNoiseResMin, kickNoiseResMax))
		filtered := k.noiseFilter.Process(k.pinkNoise.Tick())
		out += filtered * k.noiseEnv.Amplitude(now) * noiseAmount * 0.5 * k.pars.volume.Current()
	}

	k.shaper.SetDrive(1 + k.pars.overdrive.Current()*9)
	out = k.shaper.Process(out)

	out *= k.ampEnv.Amplitude(now) * math.Sqrt(k.velocity)

	if !k.ampEnv.Active() {
		k.active = false
	}
	return out
}

// Active reports whether the kick is still sounding.
func (k *Kick) Active() bool { return k.active }
