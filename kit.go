package drumkit

import (
	"github.com/drumkit-audio/drumkit-go/internal/effects"
	"github.com/drumkit-audio/drumkit-go/internal/engine"
	"github.com/drumkit-audio/drumkit-go/internal/voice"
)

// Slot identifies one of the four kit voices.
type Slot int

const (
	SlotKick Slot = iota
	SlotSnare
	SlotHiHat
	SlotTom
	numSlots
)

// Name returns the generator name the slot is registered under.
func (s Slot) Name() string {
	switch s {
	case SlotKick:
		return "kick"
	case SlotSnare:
		return "snare"
	case SlotHiHat:
		return "hihat"
	case SlotTom:
		return "tom"
	}
	return "unknown"
}

// KitSteps is the pattern length of every kit sequencer: one bar of
// sixteenth notes.
const KitSteps = 16

const (
	kitMinBPM = 60
	kitMaxBPM = 180
)

// Kit is a ready-made four-voice drum machine: kick, snare, hi-hat and
// tom on their own 16-step sequencers, plus master saturation into a
// brick-wall limiter. It is the setup the interactive tools build on;
// for full control over voices and routing, assemble an Engine
// directly or write a beat script.
type Kit struct {
	eng   *engine.Engine
	seqs  [numSlots]*engine.Sequencer
	kick  *voice.Kick
	snare *voice.Snare
	hihat *voice.HiHat
	tom   *voice.Tom

	saturation *effects.Waveshaper
	satAmount  float64
}

// StandardKit wires the four drum voices with their default presets
// and loads a basic rock pattern. Sequencers start stopped; call Play
// to run them and PlayKit or RenderSamples to hear the result.
func StandardKit(sampleRate float64) *Kit {
	eng := engine.New(sampleRate)

	k := &Kit{
		eng:   eng,
		kick:  voice.NewKick(sampleRate, voice.DefaultKick()),
		snare: voice.NewSnare(sampleRate, voice.DefaultSnare()),
		hihat: voice.NewHiHat(sampleRate, voice.DefaultHiHat()),
		tom:   voice.NewTom(sampleRate, voice.DefaultTom()),
	}
	eng.AddGenerator(SlotKick.Name(), k.kick)
	eng.AddGenerator(SlotSnare.Name(), k.snare)
	eng.AddGenerator(SlotHiHat.Name(), k.hihat)
	eng.AddGenerator(SlotTom.Name(), k.tom)

	for slot := SlotKick; slot < numSlots; slot++ {
		seq := engine.NewSequencerPattern(engine.DefaultBPM, sampleRate, make([]engine.Step, KitSteps), slot.Name())
		eng.AddSequencer(seq)
		k.seqs[slot] = seq
	}
	k.SetDefaultPatterns()

	// The engine ships with a bare limiter; rebuild the chain so
	// saturation runs before limiting.
	k.saturation = effects.NewWaveshaper(1, 0, 0)
	eng.ClearEffects()
	eng.AddEffect(k.saturation)
	eng.AddEffect(effects.NewBrickWallLimiter(1))
	return k
}

// SetDefaultPatterns loads the pattern the kit ships with: four on the
// floor kick, backbeat snare, off-beat eighth hats and two tom accents.
func (k *Kit) SetDefaultPatterns() {
	k.ClearAll()
	for _, step := range []int{0, 4, 8, 12} {
		k.SetStep(SlotKick, step, true)
	}
	for _, step := range []int{4, 12} {
		k.SetStep(SlotSnare, step, true)
	}
	for step := 1; step < KitSteps; step += 2 {
		k.SetStep(SlotHiHat, step, true)
	}
	for _, step := range []int{6, 14} {
		k.SetStep(SlotTom, step, true)
	}
}

// ClearAll disables every step of every pattern.
func (k *Kit) ClearAll() {
	for _, seq := range k.seqs {
		seq.SetPattern(make([]engine.Step, KitSteps))
	}
}

// Play starts all four sequencers on the next tick.
func (k *Kit) Play() {
	for _, seq := range k.seqs {
		seq.Start()
	}
}

// Stop halts all four sequencers without rewinding them.
func (k *Kit) Stop() {
	for _, seq := range k.seqs {
		seq.Stop()
	}
}

// Reset rewinds every sequencer to step zero.
func (k *Kit) Reset() {
	for _, seq := range k.seqs {
		seq.Reset()
	}
}

// Playing reports whether the kit sequencers are running.
func (k *Kit) Playing() bool { return k.seqs[SlotKick].Running() }

// SetBPM sets the tempo, clamped to [60, 180], on the engine and all
// four sequencers.
func (k *Kit) SetBPM(bpm float64) {
	if bpm < kitMinBPM {
		bpm = kitMinBPM
	}
	if bpm > kitMaxBPM {
		bpm = kitMaxBPM
	}
	k.eng.SetBPM(bpm)
	for _, seq := range k.seqs {
		seq.SetBPM(bpm)
	}
}

func (k *Kit) BPM() float64 { return k.eng.BPM() }

// SetSwing delays odd steps toward the following even step. 0.5 is
// straight time; the change ramps in over a few milliseconds.
func (k *Kit) SetSwing(v float64) {
	for _, seq := range k.seqs {
		seq.SetSwing(v)
	}
}

func (k *Kit) Swing() float64 { return k.seqs[SlotKick].Swing() }

func validSlot(s Slot) bool { return s >= 0 && s < numSlots }

// SetStep enables or disables one step at full velocity. Out-of-range
// slots and steps are ignored.
func (k *Kit) SetStep(slot Slot, step int, enabled bool) {
	if !validSlot(slot) || step < 0 || step >= KitSteps {
		return
	}
	k.seqs[slot].SetStep(step, engine.Step{Enabled: enabled, Velocity: 1})
}

// ToggleStep flips one step, keeping its velocity when turning it back
// on.
func (k *Kit) ToggleStep(slot Slot, step int) {
	if !validSlot(slot) || step < 0 || step >= KitSteps {
		return
	}
	st := k.seqs[slot].Steps()[step]
	st.Enabled = !st.Enabled
	if st.Enabled && st.Velocity == 0 {
		st.Velocity = 1
	}
	k.seqs[slot].SetStep(step, st)
}

// Step returns one step of a pattern, or a zero Step when out of range.
func (k *Kit) Step(slot Slot, step int) engine.Step {
	if !validSlot(slot) || step < 0 || step >= KitSteps {
		return engine.Step{}
	}
	return k.seqs[slot].Steps()[step]
}

// CurrentStep returns the step active at the engine's render position.
func (k *Kit) CurrentStep(slot Slot) int {
	if !validSlot(slot) {
		return 0
	}
	return k.seqs[slot].StepAt(0)
}

// Trigger fires one voice at full velocity, bypassing the sequencers.
func (k *Kit) Trigger(slot Slot) {
	k.TriggerWithVelocity(slot, 1)
}

// TriggerWithVelocity fires one voice at the given velocity.
func (k *Kit) TriggerWithVelocity(slot Slot, velocity float64) {
	if !validSlot(slot) {
		return
	}
	k.eng.TriggerWithVelocity(slot.Name(), velocity)
}

// SetSaturation sets master harmonic distortion in [0, 1]. Zero
// bypasses the shaper entirely. Configure before playback starts.
func (k *Kit) SetSaturation(amount float64) {
	if amount < 0 {
		amount = 0
	}
	if amount > 1 {
		amount = 1
	}
	k.satAmount = amount
	k.saturation.SetDrive(1 + amount*9)
	if amount > 0 {
		k.saturation.SetMix(1)
	} else {
		k.saturation.SetMix(0)
	}
}

func (k *Kit) Saturation() float64 { return k.satAmount }

// Engine returns the underlying engine for playback, rendering and
// advanced routing.
func (k *Kit) Engine() *engine.Engine { return k.eng }

// Sequencer returns the pattern sequencer for one slot, or nil when
// the slot is out of range.
func (k *Kit) Sequencer(slot Slot) *engine.Sequencer {
	if !validSlot(slot) {
		return nil
	}
	return k.seqs[slot]
}

// Kick returns the kick voice for preset changes and blending.
func (k *Kit) Kick() *voice.Kick { return k.kick }

func (k *Kit) Snare() *voice.Snare { return k.snare }

func (k *Kit) HiHat() *voice.HiHat { return k.hihat }

func (k *Kit) Tom() *voice.Tom { return k.tom }
