package voice

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/effects"
	"github.com/drumkit-audio/drumkit-go/internal/filter"
	"github.com/drumkit-audio/drumkit-go/internal/gen"
	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Snare parameter ranges.
const (
	snareFreqMin, snareFreqMax             = 100.0, 600.0
	snareDecayMin, snareDecayMax           = 0.05, 3.5
	snareTonalDecayMin, snareTonalDecayMax = 0.0, 3.5
	snareNoiseDecayMin, snareNoiseDecayMax = 0.0, 3.5
	snareTailDecayMin, snareTailDecayMax   = 0.0, 3.5
	snareCurveMin, snareCurveMax           = 0.1, 10.0
	snareCutoffMin, snareCutoffMax         = 100.0, 10000.0
	snareResMin, snareResMax               = 0.5, 10.0
	snareAmpDecayMin, snareAmpDecayMax     = 0.0, 4.0
)

// Velocity response. Softer than the kick: the snare keeps more of its
// body at high velocity.
const (
	snareVelocityToDecay = 0.45
	snareVelocityToPitch = 0.5
)

// SnareConfig is a full snare voicing in normalized unit values. The
// tonal, noise, and tail buses carry their own decay times on top of
// the master decay, which scales all of them through velocity.
type SnareConfig struct {
	Frequency       float64 // 0-1 over 100-600 Hz
	TonalAmount     float64 // triangle body level
	NoiseAmount     float64 // filtered noise level
	CrackAmount     float64 // high-frequency snap level
	Decay           float64 // 0-1 over 0.05-3.5 s
	PitchDrop       float64 // start multiplier up to 2.5x
	Volume          float64
	TonalDecay      float64 // 0-1 over 0-3.5 s
	TonalDecayCurve float64 // 0-1 over 0.1-10
	NoiseDecay      float64 // 0-1 over 0-3.5 s
	NoiseTailDecay  float64 // 0-1 over 0-3.5 s
	FilterCutoff    float64 // 0-1 over 100-10000 Hz
	FilterResonance float64 // 0-1 over 0.5-10
	FilterMode      filter.Mode
	Xfade           float64 // 0 all tonal, 1 all noise
	PhaseModAmount  float64 // transient snap, 0 disables
	OverdriveAmount float64 // 0 bypasses the waveshaper
	AmpDecay        float64 // 0-1 over 0-4 s
	AmpDecayCurve   float64 // 0-1 over 0.1-10
}

// TightSnare is short and punchy, around 200 Hz.
func TightSnare() SnareConfig {
	return SnareConfig{
		Frequency:       0.2,
		TonalAmount:     0.4,
		NoiseAmount:     0.7,
		CrackAmount:     0.5,
		Decay:           0.029,
		PitchDrop:       0.3,
		Volume:          0.8,
		TonalDecay:      0.0232,
		TonalDecayCurve: 0.091,
		NoiseDecay:      0.0174,
		NoiseTailDecay:  0.029,
		FilterCutoff:    0.495,
		FilterResonance: 0.053,
		FilterMode:      filter.ModeBandpass,
		Xfade:           0.5,
		PhaseModAmount:  0,
		OverdriveAmount: 0,
		AmpDecay:        0.125,
		AmpDecayCurve:   0.091,
	}
}

// LooseSnare has a longer decay and more tonal body.
func LooseSnare() SnareConfig {
	return SnareConfig{
		Frequency:       0.16,
		TonalAmount:     0.80,
		NoiseAmount:     0.60,
		CrackAmount:     0.30,
		Decay:           0.79,
		PitchDrop:       0.10,
		Volume:          0.90,
		TonalDecay:      0.33,
		TonalDecayCurve: 0.20,
		NoiseDecay:      0.23,
		NoiseTailDecay:  0.34,
		FilterCutoff:    0.55,
		FilterResonance: 0.05,
		FilterMode:      filter.ModeBandpass,
		Xfade:           0.50,
		PhaseModAmount:  0,
		OverdriveAmount: 0.10,
		AmpDecay:        0.12,
		AmpDecayCurve:   0.09,
	}
}

// HissSnare is noise-focused with the phase-mod transient fully up.
func HissSnare() SnareConfig {
	return SnareConfig{
		Frequency:       0.16,
		TonalAmount:     0,
		NoiseAmount:     0.60,
		CrackAmount:     0.30,
		Decay:           0.04,
		PitchDrop:       0.40,
		Volume:          0.90,
		TonalDecay:      0.53,
		TonalDecayCurve: 0.09,
		NoiseDecay:      0.38,
		NoiseTailDecay:  0.29,
		FilterCutoff:    0.29,
		FilterResonance: 0.45,
		FilterMode:      filter.ModeBandpass,
		Xfade:           0.50,
		PhaseModAmount:  1,
		OverdriveAmount: 0.20,
		AmpDecay:        0.18,
		AmpDecayCurve:   0.09,
	}
}

// SmackSnare leans on the phase-mod transient and filtered noise
// instead of the crack layer.
func SmackSnare() SnareConfig {
	return SnareConfig{
		Frequency:       0.2,
		TonalAmount:     0.3,
		NoiseAmount:     0.8,
		CrackAmount:     0,
		Decay:           0.029,
		PitchDrop:       0.3,
		Volume:          0.85,
		TonalDecay:      0.014,
		TonalDecayCurve: 0.091,
		NoiseDecay:      0.034,
		NoiseTailDecay:  0.086,
		FilterCutoff:    0.293,
		FilterResonance: 0.158,
		FilterMode:      filter.ModeBandpass,
		Xfade:           0.4,
		PhaseModAmount:  0.5,
		OverdriveAmount: 0,
		AmpDecay:        0.125,
		AmpDecayCurve:   0.091,
	}
}

// DefaultSnare returns the standard snare voicing.
func DefaultSnare() SnareConfig { return TightSnare() }

// Lerp interpolates every continuous field toward other by t. The
// discrete filter mode switches at the midpoint.
func (c SnareConfig) Lerp(other SnareConfig, t float64) SnareConfig {
	t = clampUnit(t)
	mode := c.FilterMode
	if t >= 0.5 {
		mode = other.FilterMode
	}
	return SnareConfig{
		Frequency:       param.Lerp(c.Frequency, other.Frequency, t),
		TonalAmount:     param.Lerp(c.TonalAmount, other.TonalAmount, t),
		NoiseAmount:     param.Lerp(c.NoiseAmount, other.NoiseAmount, t),
		CrackAmount:     param.Lerp(c.CrackAmount, other.CrackAmount, t),
		Decay:           param.Lerp(c.Decay, other.Decay, t),
		PitchDrop:       param.Lerp(c.PitchDrop, other.PitchDrop, t),
		Volume:          param.Lerp(c.Volume, other.Volume, t),
		TonalDecay:      param.Lerp(c.TonalDecay, other.TonalDecay, t),
		TonalDecayCurve: param.Lerp(c.TonalDecayCurve, other.TonalDecayCurve, t),
		NoiseDecay:      param.Lerp(c.NoiseDecay, other.NoiseDecay, t),
		NoiseTailDecay:  param.Lerp(c.NoiseTailDecay, other.NoiseTailDecay, t),
		FilterCutoff:    param.Lerp(c.FilterCutoff, other.FilterCutoff, t),
		FilterResonance: param.Lerp(c.FilterResonance, other.FilterResonance, t),
		FilterMode:      mode,
		Xfade:           param.Lerp(c.Xfade, other.Xfade, t),
		PhaseModAmount:  param.Lerp(c.PhaseModAmount, other.PhaseModAmount, t),
		OverdriveAmount: param.Lerp(c.OverdriveAmount, other.OverdriveAmount, t),
		AmpDecay:        param.Lerp(c.AmpDecay, other.AmpDecay, t),
		AmpDecayCurve:   param.Lerp(c.AmpDecayCurve, other.AmpDecayCurve, t),
	}
}

type snareParams struct {
	frequency       *param.Smoother
	decay           *param.Smoother
	brightness      *param.Smoother
	volume          *param.Smoother
	tonal           *param.Smoother
	noise           *param.Smoother
	pitchDrop       *param.Smoother
	tonalDecay      *param.Smoother
	tonalDecayCurve *param.Smoother
	noiseDecay      *param.Smoother
	noiseTailDecay  *param.Smoother
	filterCutoff    *param.Smoother
	filterResonance *param.Smoother
	xfade           *param.Smoother
	phaseModAmount  *param.Smoother
	overdrive       *param.Smoother
	ampDecay        *param.Smoother
	ampDecayCurve   *param.Smoother
}

// Snare crossfades a triangle body against state-variable-filtered
// noise, with a raw crack layer at 25x the base frequency on top. The
// body and noise buses run separate envelopes so their decays shape
// independently, and the noise bus itself blends a main and a tail
// envelope for the ring. Unlike the kick, the base frequency tracks
// the smoothed parameter live during a hit.
type Snare struct {
	modTable
	sampleRate float64
	pars       snareParams
	filterMode filter.Mode

	tonalOsc *gen.Oscillator
	noiseOsc *gen.Oscillator
	crackOsc *gen.Oscillator

	pitchEnv      gen.Envelope
	pitchStartMul float64

	noiseFilter  *filter.SVF
	phaseMod     gen.PhaseModulator
	tonalEnv     gen.Envelope
	mainNoiseEnv gen.Envelope
	tailEnv      gen.Envelope

	shaper *effects.Waveshaper
	ampEnv gen.Envelope

	blender  *param.Blender[SnareConfig]
	active   bool
	velocity float64
}

// NewSnare builds a snare at the given sample rate voiced by cfg. The
// blend pad corners are tight, loose, hiss, and smack. The "crack"
// parameter name is an alias for "brightness".
func NewSnare(sampleRate float64, cfg SnareConfig) *Snare {
	s := &Snare{
		modTable:   newModTable(),
		sampleRate: sampleRate,
		filterMode: cfg.FilterMode,
		phaseMod:   gen.NewPhaseModulator(),
		shaper:     effects.NewWaveshaper(1, 1, 0),
		blender:    param.NewBlender(TightSnare(), LooseSnare(), HissSnare(), SmackSnare()),
		velocity:   0.5,
	}

	s.pars.frequency = s.register("frequency", cfg.Frequency, sampleRate)
	s.pars.decay = s.register("decay", cfg.Decay, sampleRate)
	s.pars.brightness = s.register("brightness", cfg.CrackAmount, sampleRate)
	s.registerAlias("crack", s.pars.brightness)
	s.pars.volume = s.register("volume", cfg.Volume, sampleRate)
	s.pars.tonal = s.register("tonal", cfg.TonalAmount, sampleRate)
	s.pars.noise = s.register("noise", cfg.NoiseAmount, sampleRate)
	s.pars.pitchDrop = s.register("pitch_drop", cfg.PitchDrop, sampleRate)
	s.pars.tonalDecay = s.register("tonal_decay", cfg.TonalDecay, sampleRate)
	s.pars.tonalDecayCurve = s.register("tonal_decay_curve", cfg.TonalDecayCurve, sampleRate)
	s.pars.noiseDecay = s.register("noise_decay", cfg.NoiseDecay, sampleRate)
	s.pars.noiseTailDecay = s.register("noise_tail_decay", cfg.NoiseTailDecay, sampleRate)
	s.pars.filterCutoff = s.register("filter_cutoff", cfg.FilterCutoff, sampleRate)
	s.pars.filterResonance = s.register("filter_resonance", cfg.FilterResonance, sampleRate)
	s.pars.xfade = s.register("xfade", cfg.Xfade, sampleRate)
	s.pars.phaseModAmount = s.register("phase_mod_amount", cfg.PhaseModAmount, sampleRate)
	s.pars.overdrive = s.register("overdrive", cfg.OverdriveAmount, sampleRate)
	s.pars.ampDecay = s.register("amp_decay", cfg.AmpDecay, sampleRate)
	s.pars.ampDecayCurve = s.register("amp_decay_curve", cfg.AmpDecayCurve, sampleRate)

	baseFreq := denorm(cfg.Frequency, snareFreqMin, snareFreqMax)
	s.tonalOsc = gen.NewOscillator(sampleRate, baseFreq)
	s.tonalOsc.SetWaveform(gen.Triangle)
	s.noiseOsc = gen.NewOscillator(sampleRate, baseFreq*8)
	s.noiseOsc.SetWaveform(gen.Noise)
	s.crackOsc = gen.NewOscillator(sampleRate, baseFreq*25)
	s.crackOsc.SetWaveform(gen.Noise)

	s.noiseFilter = filter.NewSVF(sampleRate,
		denorm(cfg.FilterCutoff, snareCutoffMin, snareCutoffMax),
		denorm(cfg.FilterResonance, snareResMin, snareResMax))

	s.pitchStartMul = 1 + cfg.PitchDrop*1.5
	return s
}

// SetConfig ramps every parameter toward the new voicing and switches
// the noise filter mode immediately.
func (s *Snare) SetConfig(cfg SnareConfig) {
	s.pars.frequency.SetTarget(cfg.Frequency)
	s.pars.decay.SetTarget(cfg.Decay)
	s.pars.brightness.SetTarget(cfg.CrackAmount)
	s.pars.volume.SetTarget(cfg.Volume)
	s.pars.tonal.SetTarget(cfg.TonalAmount)
	s.pars.noise.SetTarget(cfg.NoiseAmount)
	s.pars.pitchDrop.SetTarget(cfg.PitchDrop)
	s.pars.tonalDecay.SetTarget(cfg.TonalDecay)
	s.pars.tonalDecayCurve.SetTarget(cfg.TonalDecayCurve)
	s.pars.noiseDecay.SetTarget(cfg.NoiseDecay)
	s.pars.noiseTailDecay.SetTarget(cfg.NoiseTailDecay)
	s.pars.filterCutoff.SetTarget(cfg.FilterCutoff)
	s.pars.filterResonance.SetTarget(cfg.FilterResonance)
	s.pars.xfade.SetTarget(cfg.Xfade)
	s.pars.phaseModAmount.SetTarget(cfg.PhaseModAmount)
	s.pars.overdrive.SetTarget(cfg.OverdriveAmount)
	s.pars.ampDecay.SetTarget(cfg.AmpDecay)
	s.pars.ampDecayCurve.SetTarget(cfg.AmpDecayCurve)
	s.filterMode = cfg.FilterMode
	s.pitchStartMul = 1 + cfg.PitchDrop*1.5
}

// Config snapshots the current smoothed values.
func (s *Snare) Config() SnareConfig {
	return SnareConfig{
		Frequency:       s.pars.frequency.Current(),
		TonalAmount:     s.pars.tonal.Current(),
		NoiseAmount:     s.pars.noise.Current(),
		CrackAmount:     s.pars.brightness.Current(),
		Decay:           s.pars.decay.Current(),
		PitchDrop:       s.pars.pitchDrop.Current(),
		Volume:          s.pars.volume.Current(),
		TonalDecay:      s.pars.tonalDecay.Current(),
		TonalDecayCurve: s.pars.tonalDecayCurve.Current(),
		NoiseDecay:      s.pars.noiseDecay.Current(),
		NoiseTailDecay:  s.pars.noiseTailDecay.Current(),
		FilterCutoff:    s.pars.filterCutoff.Current(),
		FilterResonance: s.pars.filterResonance.Current(),
		FilterMode:      s.filterMode,
		Xfade:           s.pars.xfade.Current(),
		PhaseModAmount:  s.pars.phaseModAmount.Current(),
		OverdriveAmount: s.pars.overdrive.Current(),
		AmpDecay:        s.pars.ampDecay.Current(),
		AmpDecayCurve:   s.pars.ampDecayCurve.Current(),
	}
}

// SetBlendPosition morphs the voicing across the preset pad.
func (s *Snare) SetBlendPosition(x, y float64) {
	s.SetConfig(s.blender.Blend(x, y))
}

// SetFilterMode switches the noise filter response.
func (s *Snare) SetFilterMode(mode filter.Mode) {
	if mode > filter.ModeNotch {
		mode = filter.ModeNotch
	}
	s.filterMode = mode
}

// Trigger fires the snare at its standard velocity.
func (s *Snare) Trigger(now float64) { s.TriggerWithVelocity(now, 0.5) }

// TriggerWithVelocity fires the snare. Velocity tightens every decay
// quadratically, speeds up the pitch drop, lifts the crack layer, and
// sets the output level on a square-root curve.
func (s *Snare) TriggerWithVelocity(now, velocity float64) {
	s.velocity = clampUnit(velocity)
	s.active = true

	vel2 := s.velocity * s.velocity
	decayScale := 1 - snareVelocityToDecay*vel2
	pitchDecayScale := 1 - snareVelocityToPitch*vel2

	baseFreq := denorm(s.pars.frequency.Current(), snareFreqMin, snareFreqMax)
	baseDecay := denorm(s.pars.decay.Current(), snareDecayMin, snareDecayMax)
	volume := s.pars.volume.Current()
	brightness := s.pars.brightness.Current()
	scaledDecay := baseDecay * decayScale

	s.pitchStartMul = 1 + s.pars.pitchDrop.Current()*1.5

	// The pitch sweep is capped at a quarter of the decay so the
	// frequency settles well before the tonal bus fades out.
	pitchDecay := math.Min(scaledDecay*0.3*pitchDecayScale, scaledDecay*0.25)
	s.pitchEnv.SetConfig(gen.NewADSR(0.001, pitchDecay, 0, pitchDecay*0.1))

	// The tonal and noise oscillators hold at full sustain; the
	// dedicated bus envelopes below do the actual shaping.
	s.tonalOsc.SetFrequency(baseFreq)
	s.tonalOsc.SetVolume(s.pars.tonal.Current() * volume)
	s.tonalOsc.SetADSR(gen.NewADSR(0.001, 0.001, 1, scaledDecay*0.4))

	s.noiseOsc.SetFrequency(baseFreq * 8)
	s.noiseOsc.SetVolume(s.pars.noise.Current() * volume * 0.8)
	s.noiseOsc.SetADSR(gen.NewADSR(0.001, 0.001, 1, scaledDecay*0.3))

	crackVel := 0.7 + 0.3*s.velocity
	s.crackOsc.SetFrequency(baseFreq * 25)
	s.crackOsc.SetVolume(brightness * volume * 0.4 * crackVel)
	s.crackOsc.SetADSR(gen.NewADSR(0.001, scaledDecay*0.2, 0, scaledDecay*0.1))

	tonalDecay := denorm(s.pars.tonalDecay.Current(), snareTonalDecayMin, snareTonalDecayMax) * decayScale
	tonalCurve := denorm(s.pars.tonalDecayCurve.Current(), snareCurveMin, snareCurveMax)
	s.tonalEnv.SetConfig(gen.NewADSR(0.001, tonalDecay, 0, tonalDecay*0.2).
		WithDecayCurve(gen.Exponential(tonalCurve)))

	noiseDecay := denorm(s.pars.noiseDecay.Current(), snareNoiseDecayMin, snareNoiseDecayMax) * decayScale
	s.mainNoiseEnv.SetConfig(gen.NewADSR(0.001, noiseDecay, 0, noiseDecay*0.2))

	tailDecay := denorm(s.pars.noiseTailDecay.Current(), snareTailDecayMin, snareTailDecayMax) * decayScale
	s.tailEnv.SetConfig(gen.NewADSR(0.001, tailDecay, 0, tailDecay*0.3))

	ampDecay := denorm(s.pars.ampDecay.Current(), snareAmpDecayMin, snareAmpDecayMax) * decayScale
	ampCurve := denorm(s.pars.ampDecayCurve.Current(), snareCurveMin, snareCurveMax)
	s.ampEnv.SetConfig(gen.NewADSR(0.001, ampDecay, 0, ampDecay*0.2).
		WithDecayCurve(gen.Exponential(ampCurve)))

	s.tonalOsc.Trigger(now)
	s.noiseOsc.Trigger(now)
	s.crackOsc.Trigger(now)
	s.pitchEnv.Trigger(now)
	s.tonalEnv.Trigger(now)
	s.mainNoiseEnv.Trigger(now)
	s.tailEnv.Trigger(now)
	s.ampEnv.Trigger(now)

	if s.pars.phaseModAmount.Current() > 0.001 {
		s.phaseMod.Trigger(now)
	}

	s.noiseFilter.Reset()
}

// Release starts the release segments of every envelope.
func (s *Snare) Release(now float64) {
	if !s.active {
		return
	}
	s.tonalOsc.Release(now)
	s.noiseOsc.Release(now)
	s.crackOsc.Release(now)
	s.pitchEnv.Release(now)
	s.tonalEnv.Release(now)
	s.mainNoiseEnv.Release(now)
	s.tailEnv.Release(now)
	s.ampEnv.Release(now)
}

// applyLevels pushes the smoothed mix controls onto the oscillators.
func (s *Snare) applyLevels() {
	volume := s.pars.volume.Current()
	crackVel := 0.7 + 0.3*s.velocity
	s.tonalOsc.SetVolume(s.pars.tonal.Current() * volume)
	s.noiseOsc.SetVolume(s.pars.noise.Current() * volume * 0.8)
	s.crackOsc.SetVolume(s.pars.brightness.Current() * volume * 0.4 * crackVel)
}

// Tick renders one sample at the given time.
func (s *Snare) Tick(now float64) float64 {
	changing := s.modTable.tick()
	if !s.active {
		return 0
	}
	if changing {
		s.applyLevels()
	}

	baseFreq := denorm(s.pars.frequency.Current(), snareFreqMin, snareFreqMax)

	freqMul := 1 + (s.pitchStartMul-1)*s.pitchEnv.Amplitude(now)
	if amount := s.pars.phaseModAmount.Current(); amount > 0.001 {
		freqMul *= 1 + s.phaseMod.Tick(now)*amount
	}
	s.tonalOsc.SetFrequency(baseFreq * freqMul)

	s.noiseFilter.SetParams(
		denorm(s.pars.filterCutoff.Current(), snareCutoffMin, snareCutoffMax),
		denorm(s.pars.filterResonance.Current(), snareResMin, snareResMax))

	xfade := s.pars.xfade.Current()

	tonal := s.tonalOsc.Tick(now) * s.tonalEnv.Amplitude(now) * (1 - xfade)

	noise := s.noiseFilter.ProcessMode(s.noiseOsc.Tick(now), s.filterMode)
	noiseEnv := s.mainNoiseEnv.Amplitude(now)*0.7 + s.tailEnv.Amplitude(now)*0.3
	noise *= noiseEnv * xfade

	out := tonal + noise + s.crackOsc.Tick(now)

	s.shaper.SetDrive(1 + s.pars.overdrive.Current()*9)
	out = s.shaper.Process(out)

	out *= s.ampEnv.Amplitude(now) * math.Sqrt(s.velocity)

	oscActive := s.tonalOsc.Env().Active() || s.noiseOsc.Env().Active() || s.crackOsc.Env().Active()
	envActive := s.tonalEnv.Active() || s.mainNoiseEnv.Active() || s.tailEnv.Active() ||
		s.ampEnv.Active() || s.phaseMod.Active()
	if !oscActive && !envActive {
		s.active = false
	}
	return out
}

// Active reports whether the snare is still sounding. The sustain-held
// oscillators keep it active until Release even though the amplitude
// envelope has silenced the output.
func (s *Snare) Active() bool { return s.active }
