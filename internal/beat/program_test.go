package beat

import (
	"math"
	"strings"
	"testing"

	"github.com/drumkit-audio/drumkit-go/internal/lfo"
)

func TestParseAndBuildFullScript(t *testing.T) {
	const script = `
# four on the floor with modulated hats
bpm 128
master 0.3

inst kick kick punch
inst hats hihat preset=dark
i ghost snare hiss

seq kick x...x...x...x...
s hats o.x.|o.x.|o.x.|o.x.
seq ghost ....5... stop

lfo 1bar -> hats.decay amt=0.6 offset=0.25
l 0.5hz kick.pitch_drop *0.4

fx lowpass cutoff=2000 res=0.3
fx delay 0.25 0.35 0.2
`
	p, err := Parse(script)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bpm, ok := p.BPM(); !ok || bpm != 128 {
		t.Errorf("program bpm: got %f ok=%v, want 128", bpm, ok)
	}

	eng, err := p.Build(44100)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if got := eng.BPM(); got != 128 {
		t.Errorf("engine bpm: got %f, want 128", got)
	}
	if got := eng.MasterGain(); got != 0.3 {
		t.Errorf("master gain: got %f, want 0.3", got)
	}
	if got := strings.Join(eng.GeneratorNames(), " "); got != "ghost hats kick" {
		t.Errorf("generators: got %q, want %q", got, "ghost hats kick")
	}
	if got := eng.EffectCount(); got != 2 {
		t.Errorf("effects: got %d, want 2", got)
	}

	if got := eng.SequencerCount(); got != 3 {
		t.Fatalf("sequencers: got %d, want 3", got)
	}
	kickSeq := eng.Sequencer(0)
	if !kickSeq.Running() {
		t.Error("kick sequencer should default to running")
	}
	if got := kickSeq.StepCount(); got != 16 {
		t.Errorf("kick steps: got %d, want 16", got)
	}
	steps := kickSeq.Steps()
	if !steps[0].Enabled || steps[0].Velocity != 1 {
		t.Errorf("kick step 0: got %+v, want enabled at velocity 1", steps[0])
	}
	if steps[1].Enabled {
		t.Errorf("kick step 1 should be a rest")
	}

	hatSteps := eng.Sequencer(1).Steps()
	if len(hatSteps) != 16 {
		t.Fatalf("hat steps: got %d, want 16", len(hatSteps))
	}
	if hatSteps[0].Velocity != 0.5 || hatSteps[2].Velocity != 1 {
		t.Errorf("hat velocities: got %f and %f, want 0.5 and 1",
			hatSteps[0].Velocity, hatSteps[2].Velocity)
	}

	ghostSeq := eng.Sequencer(2)
	if ghostSeq.Running() {
		t.Error("ghost sequencer was declared stopped")
	}
	if got := ghostSeq.Steps()[4].Velocity; math.Abs(got-5.0/9) > 1e-12 {
		t.Errorf("digit velocity: got %f, want %f", got, 5.0/9)
	}

	if got := eng.LFOCount(); got != 2 {
		t.Fatalf("lfos: got %d, want 2", got)
	}
	synced := eng.LFO(0)
	if !synced.Synced() || synced.Division() != lfo.DivOneBar {
		t.Errorf("lfo 0: got synced=%v division=%v, want one bar sync", synced.Synced(), synced.Division())
	}
	if synced.Amount() != 0.6 || synced.Offset() != 0.25 {
		t.Errorf("lfo 0: got amount %f offset %f, want 0.6 and 0.25", synced.Amount(), synced.Offset())
	}
	if route, ok := synced.Route(); !ok || route.Generator != "hats" || route.Parameter != "decay" {
		t.Errorf("lfo 0 route: got %+v ok=%v, want hats.decay", route, ok)
	}

	free := eng.LFO(1)
	if free.Synced() || free.Frequency() != 0.5 {
		t.Errorf("lfo 1: got synced=%v freq=%f, want free-running 0.5 Hz", free.Synced(), free.Frequency())
	}
	if free.Amount() != 0.4 {
		t.Errorf("lfo 1 amount: got %f, want 0.4", free.Amount())
	}
	if route, ok := free.Route(); !ok || route.Parameter != "pitch_envelope_amount" {
		t.Errorf("lfo 1 route: got %+v ok=%v, want the pitch_drop alias resolved", route, ok)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"unknown statement", "bogus 1"},
		{"duplicate instrument", "inst a kick\ninst a snare"},
		{"unknown instrument type", "inst a conga"},
		{"too many inst arguments", "inst a kick tight extra"},
		{"bad pattern character", "inst a kick\nseq a x.q."},
		{"empty pattern", "inst a kick\nseq a stop"},
		{"lfo missing target", "lfo 1bar"},
		{"lfo target without dot", "inst a kick\nlfo 1bar kickdecay"},
		{"unknown lfo division", "lfo 3bars a.b"},
		{"unknown lfo argument", "inst a kick\nlfo 1bar a.punch depth=1"},
		{"unknown effect", "fx flange 1 2"},
		{"missing effect argument", "fx lowpass 2000"},
		{"unknown effect argument", "fx lowpass cutoff=2000 res=0.3 q=7"},
		{"bpm not a number", "bpm fast"},
	}
	for _, tc := range cases {
		if _, err := Parse(tc.source); err == nil {
			t.Errorf("%s: expected a parse error", tc.name)
		}
	}
}

func TestBuildRejectsUnknownPreset(t *testing.T) {
	p, err := Parse("inst boom kick mega")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := p.Build(44100); err == nil {
		t.Error("expected a build error for an unknown preset")
	}
}

func TestBuildRejectsBadLFORoutes(t *testing.T) {
	sources := []string{
		"inst boom kick\nlfo 1bar boom.nothing", // unknown parameter
		"lfo 1bar ghost.decay",                  // unknown instrument
	}
	for _, src := range sources {
		p, err := Parse(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if _, err := p.Build(44100); err == nil {
			t.Errorf("expected a build error for %q", src)
		}
	}
}

func TestFxClearDropsEarlierEffects(t *testing.T) {
	p, err := Parse("fx delay 0.3 0.3 0.3\nfx clear\nfx limiter 0.9")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	eng, err := p.Build(44100)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := eng.EffectCount(); got != 1 {
		t.Errorf("effects after clear: got %d, want 1", got)
	}
}

func TestExtendedEffectTypes(t *testing.T) {
	const script = `
fx softsat 0.8
fx comp thresh=-18 ratio=4
fx eq 1 1.2 1 0.8 1.1
fx chorus mix=0.25
fx reverb 0.3
fx sat drive=3 warmth=0.5 mix=0.4
`
	p, err := Parse(script)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	eng, err := p.Build(48000)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := eng.EffectCount(); got != 6 {
		t.Errorf("effects: got %d, want 6", got)
	}
}
