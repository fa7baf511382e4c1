package engine

import (
	"math"
	"testing"
)

// collectTriggers ticks the sequencer n times and returns the sample
// numbers (tick indices) at which triggers fired.
func collectTriggers(s *Sequencer, n int) []int {
	var fired []int
	for i := 0; i < n; i++ {
		if _, ok := s.Tick(); ok {
			fired = append(fired, i)
		}
	}
	return fired
}

func TestSixteenthGridAt120BPM(t *testing.T) {
	// 120 BPM at 44100 Hz: one sixteenth = 5512.5 samples.
	s := NewSequencer(120, 44100, 4, "kick")
	s.Start()
	got := collectTriggers(s, 22051)
	want := []int{0, 5513, 11025, 16538, 22050}
	if len(got) != len(want) {
		t.Fatalf("got %d triggers %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trigger %d at sample %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDisabledStepsSkipSilently(t *testing.T) {
	// Pattern x.x. with neutral swing: steps 1 and 3 hold their grid
	// slot but emit nothing, so the pattern repeats every 22050
	// samples with hits on the downbeats.
	steps := []Step{
		{Enabled: true, Velocity: 1},
		{},
		{Enabled: true, Velocity: 1},
		{},
	}
	s := NewSequencerPattern(120, 44100, steps, "kick")
	s.Start()
	got := collectTriggers(s, 22051)
	want := []int{0, 11025, 22050}
	if len(got) != len(want) {
		t.Fatalf("got triggers %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trigger %d at sample %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTriggerCarriesVelocityAndBlend(t *testing.T) {
	blend := &Blend{X: 0.25, Y: 0.75}
	steps := []Step{{Enabled: true, Velocity: 0.6, Blend: blend}}
	s := NewSequencerPattern(120, 44100, steps, "snare")
	s.Start()
	trig, ok := s.Tick()
	if !ok {
		t.Fatal("expected a trigger on the first running tick")
	}
	if trig.Generator != "snare" || trig.Velocity != 0.6 {
		t.Errorf("got trigger %+v, want snare at 0.6", trig)
	}
	if trig.Blend == nil || trig.Blend.X != 0.25 || trig.Blend.Y != 0.75 {
		t.Errorf("got blend %+v, want {0.25 0.75}", trig.Blend)
	}
}

func swungTriggerTimes(t *testing.T, swing float64, n int) []int {
	t.Helper()
	s := NewSequencer(120, 44100, 4, "hat")
	// Jump the smoother so the very first ticks already see the swing
	// value under test.
	s.swing.SetImmediate(swing)
	s.Start()
	return collectTriggers(s, n)
}

func TestSwingShiftsOddStepsOnly(t *testing.T) {
	const samples = 22050
	neutral := swungTriggerTimes(t, 0.5, samples)
	late := swungTriggerTimes(t, 0.75, samples)
	early := swungTriggerTimes(t, 0.25, samples)

	if len(neutral) != 4 || len(late) != 4 || len(early) != 4 {
		t.Fatalf("expected 4 triggers each, got %d/%d/%d", len(neutral), len(late), len(early))
	}
	for i := 0; i < 4; i += 2 {
		if late[i] != neutral[i] || early[i] != neutral[i] {
			t.Errorf("even step %d moved: neutral %d, late %d, early %d",
				i, neutral[i], late[i], early[i])
		}
	}
	for i := 1; i < 4; i += 2 {
		if late[i] <= neutral[i] {
			t.Errorf("odd step %d not delayed: neutral %d, swung %d", i, neutral[i], late[i])
		}
		if early[i] >= neutral[i] {
			t.Errorf("odd step %d not advanced: neutral %d, swung %d", i, neutral[i], early[i])
		}
	}
	// 0.75 swing shifts odd steps by (0.75-0.5)*2 = half a step.
	offset := float64(late[1] - neutral[1])
	want := 0.5 * 5512.5
	if math.Abs(offset-want) > 1 {
		t.Errorf("odd step shifted by %g samples, want about %g", offset, want)
	}
}

func TestNeutralSwingMatchesUnswungTimingExactly(t *testing.T) {
	a := swungTriggerTimes(t, 0.5, 44100)
	s := NewSequencer(120, 44100, 4, "hat")
	s.Start()
	b := collectTriggers(s, 44100)
	if len(a) != len(b) {
		t.Fatalf("trigger counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("trigger %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestStartFiresImmediately(t *testing.T) {
	s := NewSequencer(120, 44100, 4, "kick")
	// Let the counter run while stopped, then start mid-stream: the
	// next tick must fire rather than waiting out a stale target.
	for i := 0; i < 1000; i++ {
		s.Tick()
	}
	s.Start()
	if _, ok := s.Tick(); !ok {
		t.Fatal("expected trigger on first tick after Start")
	}
}

func TestStopHaltsWithoutResettingPosition(t *testing.T) {
	s := NewSequencer(120, 44100, 4, "kick")
	s.Start()
	for i := 0; i < 6000; i++ {
		s.Tick()
	}
	step := s.NextStep()
	s.Stop()
	for i := 0; i < 6000; i++ {
		if _, ok := s.Tick(); ok {
			t.Fatal("stopped sequencer fired")
		}
	}
	if s.NextStep() != step {
		t.Errorf("position moved while stopped: got %d, want %d", s.NextStep(), step)
	}
}

func TestResetRewindsCountersAndIndices(t *testing.T) {
	s := NewSequencer(120, 44100, 4, "kick")
	s.Start()
	for i := 0; i < 12000; i++ {
		s.Tick()
	}
	s.Reset()
	if s.NextStep() != 0 || s.LastStep() != 0 {
		t.Errorf("indices not rewound: next %d last %d", s.NextStep(), s.LastStep())
	}
	// Reset does not stop the sequencer, so the rewound target at
	// sample 0 fires on the very next tick.
	if _, ok := s.Tick(); !ok {
		t.Error("expected trigger on first tick after Reset")
	}
}

func TestEmptyPatternNeverTriggers(t *testing.T) {
	s := NewSequencerPattern(120, 44100, nil, "kick")
	s.Start()
	for i := 0; i < 10000; i++ {
		if _, ok := s.Tick(); ok {
			t.Fatal("empty pattern fired")
		}
	}
}

func TestOddPatternLengthWraps(t *testing.T) {
	s := NewSequencer(120, 44100, 5, "kick")
	s.Start()
	got := collectTriggers(s, 30000)
	if len(got) != 6 {
		t.Fatalf("expected 6 triggers over 6 step-durations, got %d: %v", len(got), got)
	}
	if s.NextStep() != 1 {
		t.Errorf("expected wrap to step 1 after 6 fires on a 5-step pattern, got %d", s.NextStep())
	}
}

func TestLastStepTracksJustFired(t *testing.T) {
	s := NewSequencer(120, 44100, 4, "kick")
	s.Start()
	s.Tick()
	if s.LastStep() != 0 || s.NextStep() != 1 {
		t.Errorf("after first fire: last %d next %d, want 0 and 1", s.LastStep(), s.NextStep())
	}
	for i := 0; i < 5513; i++ {
		s.Tick()
	}
	if s.LastStep() != 1 || s.NextStep() != 2 {
		t.Errorf("after second fire: last %d next %d, want 1 and 2", s.LastStep(), s.NextStep())
	}
}

func TestStepAtLooksAheadWithoutMutating(t *testing.T) {
	s := NewSequencer(120, 44100, 4, "kick")
	s.Start()
	s.Tick() // fire step 0
	counterBefore := s.counter
	nextBefore := s.next

	if got := s.StepAt(0); got != 0 {
		t.Errorf("StepAt(0) = %d, want 0", got)
	}
	// One step ahead lands inside step 1's slot.
	if got := s.StepAt(5600); got != 1 {
		t.Errorf("StepAt(5600) = %d, want 1", got)
	}
	// A full bar ahead wraps around the 4-step pattern.
	if got := s.StepAt(22050 + 5600); got != 1 {
		t.Errorf("StepAt(one bar + step) = %d, want 1", got)
	}
	if s.counter != counterBefore || s.next != nextBefore {
		t.Error("StepAt mutated sequencer state")
	}
}

func TestSetBPMChangesStepDuration(t *testing.T) {
	s := NewSequencer(120, 44100, 16, "kick")
	s.Start()
	s.Tick() // fire step 0 at sample 0
	s.SetBPM(240)
	got := collectTriggers(s, 10000)
	// The pending target scheduled at 120 BPM still stands (sample
	// 5513); the halved step duration (2756.25 samples) applies from
	// the step after it. Indices here are relative to the tick after
	// the manual Tick above, so expectations are one lower.
	want := []int{5512, 8268}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got triggers %v, want %v", got, want)
	}
}

func TestSwingClampAndSmoothing(t *testing.T) {
	s := NewSequencer(120, 44100, 4, "kick")
	s.SetSwing(2.0)
	if s.Swing() != 1.0 {
		t.Errorf("swing not clamped: got %g, want 1", s.Swing())
	}
	s.SetSwing(-1)
	if s.Swing() != 0 {
		t.Errorf("swing not clamped: got %g, want 0", s.Swing())
	}
}
