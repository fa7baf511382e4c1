package drumkit

import (
	"math"
	"testing"

	"github.com/drumkit-audio/drumkit-go/internal/engine"
)

func TestStandardKitDefaults(t *testing.T) {
	k := StandardKit(44100)
	if k.Playing() {
		t.Fatal("kit should start stopped")
	}
	if got := k.BPM(); got != 120 {
		t.Fatalf("default bpm = %g, want 120", got)
	}
	if got := k.Swing(); got != 0.5 {
		t.Fatalf("default swing = %g, want 0.5", got)
	}
	if got := k.Saturation(); got != 0 {
		t.Fatalf("default saturation = %g, want 0", got)
	}

	wantEnabled := map[Slot][]int{
		SlotKick:  {0, 4, 8, 12},
		SlotSnare: {4, 12},
		SlotHiHat: {1, 3, 5, 7, 9, 11, 13, 15},
		SlotTom:   {6, 14},
	}
	for slot, steps := range wantEnabled {
		enabled := make(map[int]bool, len(steps))
		for _, s := range steps {
			enabled[s] = true
		}
		for i := 0; i < KitSteps; i++ {
			st := k.Step(slot, i)
			if st.Enabled != enabled[i] {
				t.Fatalf("%s step %d enabled = %v, want %v", slot.Name(), i, st.Enabled, enabled[i])
			}
			if st.Enabled && st.Velocity != 1 {
				t.Fatalf("%s step %d velocity = %g, want 1", slot.Name(), i, st.Velocity)
			}
		}
	}
}

func TestKitTransportAndTempo(t *testing.T) {
	k := StandardKit(44100)
	k.Play()
	if !k.Playing() {
		t.Fatal("Play should start the sequencers")
	}
	k.Stop()
	if k.Playing() {
		t.Fatal("Stop should halt the sequencers")
	}

	k.SetBPM(300)
	if got := k.BPM(); got != 180 {
		t.Fatalf("bpm should clamp to 180, got %g", got)
	}
	k.SetBPM(10)
	if got := k.BPM(); got != 60 {
		t.Fatalf("bpm should clamp to 60, got %g", got)
	}
	k.SetBPM(128)
	if got := k.BPM(); got != 128 {
		t.Fatalf("bpm = %g, want 128", got)
	}
	if got := k.Sequencer(SlotTom).BPM(); got != 128 {
		t.Fatalf("tom sequencer bpm = %g, want 128", got)
	}
}

func TestKitToggleStepKeepsVelocity(t *testing.T) {
	k := StandardKit(44100)
	k.Sequencer(SlotSnare).SetStep(3, engine.Step{Enabled: true, Velocity: 0.6})

	k.ToggleStep(SlotSnare, 3)
	if st := k.Step(SlotSnare, 3); st.Enabled {
		t.Fatal("toggle should disable the step")
	}
	k.ToggleStep(SlotSnare, 3)
	if st := k.Step(SlotSnare, 3); !st.Enabled || st.Velocity != 0.6 {
		t.Fatalf("toggle should re-enable at the stored velocity, got %+v", st)
	}

	// Snare step 0 starts disabled with zero velocity.
	k.ToggleStep(SlotSnare, 0)
	if st := k.Step(SlotSnare, 0); !st.Enabled || st.Velocity != 1 {
		t.Fatalf("enabling a silent step should default to full velocity, got %+v", st)
	}
}

func TestKitIgnoresOutOfRangeStepsAndSlots(t *testing.T) {
	k := StandardKit(44100)
	k.SetStep(SlotKick, -1, true)
	k.SetStep(SlotKick, KitSteps, true)
	k.ToggleStep(Slot(99), 0)
	if st := k.Step(Slot(99), 0); st.Enabled {
		t.Fatalf("out-of-range slot returned %+v, want zero step", st)
	}
	if k.Sequencer(Slot(-1)) != nil {
		t.Fatal("out-of-range slot should have no sequencer")
	}
	if got := Slot(42).Name(); got != "unknown" {
		t.Fatalf("out-of-range slot name = %q, want unknown", got)
	}
}

func TestKitRendersDefaultPattern(t *testing.T) {
	k := StandardKit(44100)
	k.Play()
	out := RenderSamples(k.Engine(), 1)
	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak < 0.01 {
		t.Fatalf("render peak %g, expected audible drums", peak)
	}
	if peak > 1 {
		t.Fatalf("render peak %g exceeds the limiter ceiling", peak)
	}
}

func TestKitManualTriggerMakesSound(t *testing.T) {
	k := StandardKit(44100)
	k.Trigger(SlotKick)
	out := RenderSamples(k.Engine(), 0.25)
	var energy float64
	for _, s := range out {
		energy += float64(s) * float64(s)
	}
	if energy == 0 {
		t.Fatal("manual trigger rendered silence")
	}
}

func TestKitClearAllSilencesPattern(t *testing.T) {
	k := StandardKit(44100)
	k.ClearAll()
	for slot := SlotKick; slot < Slot(4); slot++ {
		for i := 0; i < KitSteps; i++ {
			if k.Step(slot, i).Enabled {
				t.Fatalf("%s step %d still enabled after ClearAll", slot.Name(), i)
			}
		}
	}
	k.Play()
	out := RenderSamples(k.Engine(), 0.5)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %g, want silence after ClearAll", i, s)
		}
	}
}

func TestKitSaturationClamps(t *testing.T) {
	k := StandardKit(44100)
	k.SetSaturation(2)
	if got := k.Saturation(); got != 1 {
		t.Fatalf("saturation should clamp to 1, got %g", got)
	}
	k.SetSaturation(-0.5)
	if got := k.Saturation(); got != 0 {
		t.Fatalf("saturation should clamp to 0, got %g", got)
	}
}

func TestKitVoiceAccessors(t *testing.T) {
	k := StandardKit(44100)
	if k.Kick() == nil || k.Snare() == nil || k.HiHat() == nil || k.Tom() == nil {
		t.Fatal("kit voices should all be non-nil")
	}
	if k.Engine() == nil {
		t.Fatal("kit engine should be non-nil")
	}
	for slot := SlotKick; slot < Slot(4); slot++ {
		seq := k.Sequencer(slot)
		if seq == nil {
			t.Fatalf("no sequencer for %s", slot.Name())
		}
		if got := seq.Generator(); got != slot.Name() {
			t.Fatalf("sequencer generator = %q, want %q", got, slot.Name())
		}
	}
}
