package engine

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Blend is an absolute position on a generator's two-axis preset
// square, in [0, 1] per axis.
type Blend struct {
	X, Y float64
}

// Step is one slot in a sequencer pattern. A disabled step keeps its
// place in the timing grid but emits nothing. Blend, when non-nil,
// repositions a BlendTarget generator before the trigger fires.
type Step struct {
	Enabled  bool
	Velocity float64
	Blend    *Blend
}

// Trigger describes a step firing: which generator to hit, how hard,
// and an optional blend override taken from the step.
type Trigger struct {
	Generator string
	Velocity  float64
	Blend     *Blend
}

// Sequencer walks a step pattern on a fixed sixteenth-note grid and
// reports, once per sample, whether this sample is a trigger instant
// for its bound generator.
//
// Timing accumulates in float64 and is rounded only when a fire sample
// is compared against the counter, so fractional step lengths never
// drift over long runs. Swing shifts odd-indexed (off-beat) steps only
// and is read through its own smoother every tick, so live swing
// changes ramp instead of stepping.
type Sequencer struct {
	sampleRate     float64
	bpm            float64
	generator      string
	steps          []Step
	samplesPerStep float64

	counter  uint64
	next     float64 // unswung grid target of the pending step
	nextStep int     // index of the next step to fire
	lastStep int     // index of the step that most recently fired
	running  bool

	swing *param.Smoother
}

// NewSequencer returns a stopped sequencer with stepCount steps, all
// enabled at full velocity, bound to the named generator.
func NewSequencer(bpm, sampleRate float64, stepCount int, generator string) *Sequencer {
	steps := make([]Step, stepCount)
	for i := range steps {
		steps[i] = Step{Enabled: true, Velocity: 1}
	}
	return NewSequencerPattern(bpm, sampleRate, steps, generator)
}

// NewSequencerPattern returns a stopped sequencer over an explicit
// step pattern.
func NewSequencerPattern(bpm, sampleRate float64, steps []Step, generator string) *Sequencer {
	return &Sequencer{
		sampleRate:     sampleRate,
		bpm:            bpm,
		generator:      generator,
		steps:          steps,
		samplesPerStep: samplesPerStep(bpm, sampleRate),
		swing:          param.NewSmoother(0.5, 0, 1, param.DefaultSmoothingMS, sampleRate),
	}
}

// One step is a sixteenth note regardless of pattern length.
func samplesPerStep(bpm, sampleRate float64) float64 {
	return (60.0 / bpm) / 4.0 * sampleRate
}

// Start begins triggering. The next trigger is rescheduled to the
// current sample so a freshly started sequencer fires on its next
// qualifying tick instead of waiting out a stale target.
func (s *Sequencer) Start() {
	s.running = true
	s.next = float64(s.counter)
}

// Stop halts triggering without resetting position.
func (s *Sequencer) Stop() { s.running = false }

// Reset rewinds the sample counter and both step indices to zero.
func (s *Sequencer) Reset() {
	s.counter = 0
	s.next = 0
	s.nextStep = 0
	s.lastStep = 0
}

// Running reports whether the sequencer is triggering.
func (s *Sequencer) Running() bool { return s.running }

// SetBPM changes the tempo and recomputes the step duration. The
// pending trigger target is kept; the new duration applies from the
// next step onward.
func (s *Sequencer) SetBPM(bpm float64) {
	s.bpm = bpm
	s.samplesPerStep = samplesPerStep(bpm, s.sampleRate)
}

// BPM returns the sequencer's tempo.
func (s *Sequencer) BPM() float64 { return s.bpm }

// Generator returns the name of the generator this sequencer triggers.
func (s *Sequencer) Generator() string { return s.generator }

// SetStep replaces one step in place. Out-of-range indices are
// ignored.
func (s *Sequencer) SetStep(i int, st Step) {
	if i >= 0 && i < len(s.steps) {
		s.steps[i] = st
	}
}

// SetPattern replaces the whole pattern. If the next-step index falls
// off the end of the new pattern it wraps to zero.
func (s *Sequencer) SetPattern(steps []Step) {
	s.steps = steps
	if s.nextStep >= len(s.steps) {
		s.nextStep = 0
	}
	if s.lastStep >= len(s.steps) {
		s.lastStep = 0
	}
}

// Steps returns a copy of the pattern.
func (s *Sequencer) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// StepCount returns the pattern length.
func (s *Sequencer) StepCount() int { return len(s.steps) }

// NextStep returns the index of the next step to fire.
func (s *Sequencer) NextStep() int { return s.nextStep }

// LastStep returns the index of the step that most recently fired, for
// "what just played" display.
func (s *Sequencer) LastStep() int { return s.lastStep }

// SetSwing sets the swing target in [0, 1]; 0.5 is neutral. The value
// ramps through a smoother so live changes never click.
func (s *Sequencer) SetSwing(v float64) { s.swing.SetTarget(v) }

// Swing returns the swing target.
func (s *Sequencer) Swing() float64 { return s.swing.Target() }

// swingOffset shifts odd-indexed steps by up to a full step in either
// direction; even-indexed steps stay on the grid.
func (s *Sequencer) swingOffset(step int, swing float64) float64 {
	if step%2 == 0 {
		return 0
	}
	return (swing - 0.5) * 2 * s.samplesPerStep
}

// Tick advances the sequencer by one sample. The counter advances
// unconditionally; the trigger is reported only when running and the
// counter has reached the pending step's fire sample.
func (s *Sequencer) Tick() (Trigger, bool) {
	swing := s.swing.Tick()
	if !s.running || len(s.steps) == 0 {
		s.counter++
		return Trigger{}, false
	}

	var trig Trigger
	fired := false
	fire := math.Round(s.next + s.swingOffset(s.nextStep, swing))
	if float64(s.counter) >= fire {
		s.lastStep = s.nextStep
		st := s.steps[s.nextStep]
		if st.Enabled {
			trig = Trigger{Generator: s.generator, Velocity: st.Velocity, Blend: st.Blend}
			fired = true
		}
		s.nextStep = (s.nextStep + 1) % len(s.steps)
		s.next += s.samplesPerStep
	}

	s.counter++
	return trig, fired
}

// StepAt answers which step will be active lookahead samples from now,
// without mutating state. Latency-compensated UIs use this to light
// the step the listener is about to hear rather than the one the
// engine is about to schedule.
func (s *Sequencer) StepAt(lookahead uint64) int {
	if len(s.steps) == 0 || s.samplesPerStep <= 0 {
		return 0
	}
	if !s.running {
		return s.lastStep
	}
	target := float64(s.counter + lookahead)
	swing := s.swing.Current()
	next := s.next
	step := s.nextStep
	last := s.lastStep
	for {
		fire := math.Round(next + s.swingOffset(step, swing))
		if target < fire {
			return last
		}
		last = step
		step = (step + 1) % len(s.steps)
		next += s.samplesPerStep
	}
}
