package engine

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/drumkit-audio/drumkit-go/internal/lfo"
)

// fakeGen is a scripted generator that records how the engine drives
// it. Its output is a constant so mixing sums stay exact.
type fakeGen struct {
	name       string
	out        float64
	events     *[]string
	velocities []float64
}

func (g *fakeGen) TriggerWithVelocity(now, velocity float64) {
	g.velocities = append(g.velocities, velocity)
	if g.events != nil {
		*g.events = append(*g.events, fmt.Sprintf("trigger %s %.2f", g.name, velocity))
	}
}

func (g *fakeGen) Tick(now float64) float64 { return g.out }

func (g *fakeGen) Active() bool { return g.out != 0 }

// modGen adds the modulation capability on top of fakeGen.
type modGen struct {
	fakeGen
	params []string
	modErr error
	values []float64
}

func (g *modGen) Parameters() []string { return g.params }

func (g *modGen) ApplyModulation(parameter string, value float64) error {
	if g.modErr != nil {
		return g.modErr
	}
	g.values = append(g.values, value)
	if g.events != nil {
		*g.events = append(*g.events, fmt.Sprintf("mod %s %s", g.name, parameter))
	}
	return nil
}

func (g *modGen) ParameterRange(parameter string) (min, max float64, ok bool) {
	for _, p := range g.params {
		if p == parameter {
			return 0, 1, true
		}
	}
	return 0, 0, false
}

// blendGen records blend repositioning.
type blendGen struct {
	fakeGen
	blends []Blend
}

func (g *blendGen) SetBlendPosition(x, y float64) {
	g.blends = append(g.blends, Blend{X: x, Y: y})
	if g.events != nil {
		*g.events = append(*g.events, fmt.Sprintf("blend %s", g.name))
	}
}

func TestModulationAppliesBeforeSequencerTrigger(t *testing.T) {
	// An LFO routed to a parameter must land before the trigger fired
	// in the same tick, so the trigger reads the modulated value.
	var events []string
	g := &modGen{params: []string{"level"}}
	g.name = "kick"
	g.events = &events

	e := New(44100)
	e.AddGenerator("kick", g)

	l := lfo.New(1, 44100)
	l.SetOffset(1)
	idx := e.AddLFO(l)
	if err := e.RouteLFO(idx, "kick", "level", 0.5); err != nil {
		t.Fatalf("RouteLFO: %v", err)
	}

	seq := NewSequencer(120, 44100, 4, "kick")
	seq.Start()
	e.AddSequencer(seq)

	e.Tick(0)
	if len(events) < 2 {
		t.Fatalf("expected modulation and trigger events, got %v", events)
	}
	if !strings.HasPrefix(events[0], "mod") || !strings.HasPrefix(events[1], "trigger") {
		t.Errorf("wrong order within a tick: %v", events)
	}
}

func TestManualTriggersDrainOldestFirst(t *testing.T) {
	g := &fakeGen{name: "snare"}
	e := New(44100)
	e.AddGenerator("snare", g)

	e.TriggerWithVelocity("snare", 0.3)
	e.TriggerWithVelocity("snare", 0.9)
	e.Tick(0)

	if len(g.velocities) != 2 || g.velocities[0] != 0.3 || g.velocities[1] != 0.9 {
		t.Errorf("got velocities %v, want [0.3 0.9]", g.velocities)
	}
}

func TestTriggerUsesDefaultVelocity(t *testing.T) {
	g := &fakeGen{name: "kick"}
	e := New(44100)
	e.AddGenerator("kick", g)
	e.Trigger("kick")
	e.Tick(0)
	if len(g.velocities) != 1 || g.velocities[0] != DefaultTriggerVelocity {
		t.Errorf("got %v, want one trigger at %g", g.velocities, DefaultTriggerVelocity)
	}
}

func TestUnknownManualTriggerIsLoggedAndDropped(t *testing.T) {
	var buf bytes.Buffer
	g := &fakeGen{name: "kick", out: 0.5}
	e := New(44100)
	e.SetLogger(log.New(&buf, "", 0))
	e.AddGenerator("kick", g)

	e.Trigger("ghost")
	out := e.Tick(0)

	if !strings.Contains(buf.String(), `"ghost" not found`) {
		t.Errorf("expected warning about ghost, got %q", buf.String())
	}
	if out != 0.5*0.25 {
		t.Errorf("audio interrupted by bad trigger: got %g, want %g", out, 0.5*0.25)
	}
}

func TestSummationIsCommutative(t *testing.T) {
	// Dyadic outputs keep float addition exact in either order.
	build := func(first, second string) *Engine {
		e := New(44100)
		a := &fakeGen{name: "a", out: 0.25}
		b := &fakeGen{name: "b", out: 0.5}
		gens := map[string]Generator{"a": a, "b": b}
		e.AddGenerator(first, gens[first])
		e.AddGenerator(second, gens[second])
		return e
	}
	e1 := build("a", "b")
	e2 := build("b", "a")
	for i := 0; i < 100; i++ {
		now := float64(i) / 44100
		if o1, o2 := e1.Tick(now), e2.Tick(now); o1 != o2 {
			t.Fatalf("tick %d: insertion order changed output: %g vs %g", i, o1, o2)
		}
	}
}

func TestAddGeneratorOverwritesSameName(t *testing.T) {
	e := New(44100)
	e.AddGenerator("kick", &fakeGen{name: "old", out: 0.25})
	e.AddGenerator("kick", &fakeGen{name: "new", out: 0.5})
	if got := e.Tick(0); got != 0.5*0.25 {
		t.Errorf("got %g, want output of the replacement generator only", got)
	}
}

func TestRouteLFOErrors(t *testing.T) {
	e := New(44100)
	plain := &fakeGen{name: "plain"}
	mod := &modGen{params: []string{"level", "depth"}}
	mod.name = "mod"
	e.AddGenerator("plain", plain)
	e.AddGenerator("mod", mod)
	e.AddLFO(lfo.New(1, 44100))

	cases := []struct {
		name      string
		lfoIndex  int
		generator string
		parameter string
		want      string
	}{
		{"unknown generator", 0, "ghost", "level", `generator "ghost" not found`},
		{"no capability", 0, "plain", "level", `does not support modulation`},
		{"unknown parameter", 0, "mod", "cutoff", `available: level, depth`},
		{"bad lfo index", 5, "mod", "level", `lfo index 5 not found`},
	}
	for _, c := range cases {
		err := e.RouteLFO(c.lfoIndex, c.generator, c.parameter, 1)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: got %q, want substring %q", c.name, err.Error(), c.want)
		}
	}

	// A failed route must not leave a partial mapping behind.
	if r, ok := e.LFO(0).Route(); ok {
		t.Errorf("failed RouteLFO left route %+v", r)
	}

	if err := e.RouteLFO(0, "mod", "depth", 0.7); err != nil {
		t.Fatalf("valid route rejected: %v", err)
	}
	r, ok := e.LFO(0).Route()
	if !ok || r.Generator != "mod" || r.Parameter != "depth" {
		t.Errorf("route not stored: %+v ok=%v", r, ok)
	}
	if e.LFO(0).Amount() != 0.7 {
		t.Errorf("amount not stored: %g", e.LFO(0).Amount())
	}
}

func TestModulationFailureNeverInterruptsAudio(t *testing.T) {
	g := &modGen{params: []string{"level"}, modErr: errors.New("boom")}
	g.name = "kick"
	g.out = 0.5

	e := New(44100)
	e.AddGenerator("kick", g)
	idx := e.AddLFO(lfo.New(1, 44100))
	if err := e.RouteLFO(idx, "kick", "level", 1); err != nil {
		t.Fatalf("RouteLFO: %v", err)
	}

	for i := 0; i < 10; i++ {
		if out := e.Tick(float64(i) / 44100); out != 0.5*0.25 {
			t.Fatalf("tick %d: got %g, want %g", i, out, 0.5*0.25)
		}
	}
}

func TestSetBPMCascadesToLFOsNotSequencers(t *testing.T) {
	e := New(44100)
	l := lfo.NewSynced(lfo.DivQuarter, 120, 44100)
	e.AddLFO(l)
	seq := NewSequencer(120, 44100, 16, "kick")
	e.AddSequencer(seq)

	e.SetBPM(240)

	if got := l.Frequency(); got != 4 {
		t.Errorf("synced LFO rate after SetBPM: got %g Hz, want 4", got)
	}
	if got := seq.BPM(); got != 120 {
		t.Errorf("sequencer tempo changed by engine SetBPM: got %g, want 120", got)
	}
}

func TestSequencerBlendOverrideRepositionsGenerator(t *testing.T) {
	var events []string
	g := &blendGen{}
	g.name = "kick"
	g.events = &events

	e := New(44100)
	e.AddGenerator("kick", g)
	steps := []Step{{Enabled: true, Velocity: 1, Blend: &Blend{X: 0.2, Y: 0.8}}}
	seq := NewSequencerPattern(120, 44100, steps, "kick")
	seq.Start()
	e.AddSequencer(seq)

	e.Tick(0)
	if len(g.blends) != 1 || g.blends[0] != (Blend{X: 0.2, Y: 0.8}) {
		t.Fatalf("got blends %v, want one at {0.2 0.8}", g.blends)
	}
	if len(events) != 2 || events[0] != "blend kick" || !strings.HasPrefix(events[1], "trigger") {
		t.Errorf("blend should land before the trigger: %v", events)
	}
}

func TestMasterGainRampsSmoothly(t *testing.T) {
	g := &fakeGen{name: "dc", out: 1}
	e := New(44100)
	e.AddGenerator("dc", g)

	first := e.Tick(0)
	if first != 0.25 {
		t.Fatalf("initial output %g, want 0.25", first)
	}
	e.SetMasterGain(1)
	prev := first
	for i := 1; i <= 200; i++ {
		out := e.Tick(float64(i) / 44100)
		if out < prev {
			t.Fatalf("gain ramp not monotonic at tick %d: %g < %g", i, out, prev)
		}
		if out > 1 {
			t.Fatalf("gain overshot at tick %d: %g", i, out)
		}
		prev = out
	}
	if prev <= 0.25 {
		t.Errorf("gain never moved from %g", prev)
	}
}

func TestDefaultChainLimitsOutput(t *testing.T) {
	g := &fakeGen{name: "loud", out: 40}
	e := New(44100)
	e.AddGenerator("loud", g)
	if e.EffectCount() != 1 {
		t.Fatalf("expected the default limiter in the chain, got %d effects", e.EffectCount())
	}
	if out := e.Tick(0); out != 1 {
		t.Errorf("limiter let %g through, want 1", out)
	}
	e.ClearEffects()
	if e.EffectCount() != 0 {
		t.Errorf("ClearEffects left %d effects", e.EffectCount())
	}
	if out := e.Tick(1.0 / 44100); out <= 1 {
		t.Errorf("expected unlimited output after ClearEffects, got %g", out)
	}
}

func TestTriggerQueueOverflowDropsNewest(t *testing.T) {
	var buf bytes.Buffer
	g := &fakeGen{name: "kick"}
	e := New(44100)
	e.SetLogger(log.New(&buf, "", 0))
	e.AddGenerator("kick", g)

	for i := 0; i < triggerQueueSize+5; i++ {
		e.Trigger("kick")
	}
	e.Tick(0)
	if len(g.velocities) != triggerQueueSize {
		t.Errorf("got %d triggers, want %d", len(g.velocities), triggerQueueSize)
	}
	if !strings.Contains(buf.String(), "queue full") {
		t.Errorf("expected overflow warning, got %q", buf.String())
	}
}

func TestGeneratorNamesSorted(t *testing.T) {
	e := New(44100)
	e.AddGenerator("snare", &fakeGen{})
	e.AddGenerator("hat", &fakeGen{})
	e.AddGenerator("kick", &fakeGen{})
	got := e.GeneratorNames()
	want := []string{"hat", "kick", "snare"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
