package lfo

import (
	"math"
	"testing"
)

func TestSineShapeAtQuarterPhases(t *testing.T) {
	// sampleRate 4 and 1 Hz puts successive ticks at phase 0, 0.25,
	// 0.5, 0.75.
	l := New(1.0, 4)
	want := []float64{0, 1, 0, -1}
	for i, w := range want {
		got := l.Tick()
		if math.Abs(got-w) > 1e-9 {
			t.Errorf("tick %d: got %f, want %f", i, got, w)
		}
	}
}

func TestAmountAndOffsetShapeOutput(t *testing.T) {
	l := New(1.0, 4)
	l.SetAmount(0.5)
	l.SetOffset(0.25)
	l.Tick() // phase 0 -> 0.25 + 0*0.5
	got := l.Tick()
	// Peak of the sine scaled by amount, recentered by offset.
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("got %f, want 0.75", got)
	}
}

func TestSyncedFrequencyFollowsDivision(t *testing.T) {
	cases := []struct {
		div  Division
		bpm  float64
		want float64
	}{
		{DivOneBar, 120, 0.5},
		{DivFourBars, 120, 0.125},
		{DivThirtySecond, 120, 16},
		{DivQuarter, 60, 1},
	}
	for _, c := range cases {
		l := NewSynced(c.div, c.bpm, 44100)
		if math.Abs(l.Frequency()-c.want) > 1e-9 {
			t.Errorf("%s at %g BPM: got %f Hz, want %f", c.div, c.bpm, l.Frequency(), c.want)
		}
	}
}

func TestSetBPMPreservesPhase(t *testing.T) {
	l := NewSynced(DivQuarter, 120, 100)
	for i := 0; i < 10; i++ {
		l.Tick()
	}
	before := l.Phase()
	l.SetBPM(240)
	if l.Phase() != before {
		t.Errorf("phase changed on tempo update: got %f, want %f", l.Phase(), before)
	}
	if math.Abs(l.Frequency()-4.0) > 1e-9 {
		t.Errorf("expected doubled rate 4 Hz at 240 BPM, got %f", l.Frequency())
	}
}

func TestSetFrequencyLeavesSyncMode(t *testing.T) {
	l := NewSynced(DivOneBar, 120, 44100)
	l.SetFrequency(3)
	if l.Synced() {
		t.Error("expected free-running mode after SetFrequency")
	}
	l.SetBPM(240)
	if l.Frequency() != 3 {
		t.Errorf("tempo change should not touch a free-running rate, got %f", l.Frequency())
	}
}

func TestRouteLifecycle(t *testing.T) {
	l := New(1, 44100)
	if _, ok := l.Route(); ok {
		t.Error("new LFO should be unrouted")
	}
	l.SetRoute("kick", "frequency")
	r, ok := l.Route()
	if !ok || r.Generator != "kick" || r.Parameter != "frequency" {
		t.Errorf("got route %+v ok=%v, want kick.frequency", r, ok)
	}
	l.ClearRoute()
	if _, ok := l.Route(); ok {
		t.Error("expected no route after ClearRoute")
	}
}

func TestResetRewindsPhase(t *testing.T) {
	l := New(2, 10)
	for i := 0; i < 3; i++ {
		l.Tick()
	}
	l.Reset()
	if l.Phase() != 0 {
		t.Errorf("expected phase 0 after reset, got %f", l.Phase())
	}
}

func TestParseDivisionRoundTrip(t *testing.T) {
	divs := []Division{
		DivFourBars, DivTwoBars, DivOneBar, DivHalf,
		DivQuarter, DivEighth, DivSixteenth, DivThirtySecond,
	}
	for _, d := range divs {
		got, ok := ParseDivision(d.String())
		if !ok || got != d {
			t.Errorf("ParseDivision(%q): got %v ok=%v", d.String(), got, ok)
		}
	}
	if _, ok := ParseDivision("3bars"); ok {
		t.Error("expected unknown division to fail")
	}
}
