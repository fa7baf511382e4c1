package filter

import (
	"math"
	"testing"
)

func TestResonantLowpassPassesDC(t *testing.T) {
	f := NewResonantLowpass(44100, 1000, 0)
	var out float64
	for i := 0; i < 2000; i++ {
		out = f.Process(1.0)
	}
	if math.Abs(out-1.0) > 0.05 {
		t.Errorf("lowpass DC gain: got %f, want ~1.0", out)
	}
}

func TestResonantLowpassStableAtHighResonance(t *testing.T) {
	f := NewResonantLowpass(44100, 1000, 4.0)
	for i := 0; i < 44100; i++ {
		out := f.Process(math.Sin(float64(i) * 0.1))
		if math.IsNaN(out) || math.Abs(out) > 100 {
			t.Fatalf("lowpass unstable at sample %d: %f", i, out)
		}
	}
}

func TestResonantLowpassReset(t *testing.T) {
	f := NewResonantLowpass(44100, 500, 2.0)
	for i := 0; i < 100; i++ {
		f.Process(1.0)
	}
	f.Reset()
	if f.state != 0 || f.prevOut != 0 {
		t.Error("reset should clear filter state")
	}
}

func TestResonantHighpassBlocksDC(t *testing.T) {
	f := NewResonantHighpass(44100, 1000, 1.0)
	var out float64
	for i := 0; i < 2000; i++ {
		out = f.Process(1.0)
	}
	if math.Abs(out) > 0.05 {
		t.Errorf("highpass DC leakage: got %f, want ~0", out)
	}
}

func TestSVFBandpassRejectsDC(t *testing.T) {
	f := NewSVF(44100, 1000, 2.0)
	var out float64
	for i := 0; i < 1000; i++ {
		out = f.Process(1.0)
	}
	if math.Abs(out) > 0.1 {
		t.Errorf("bandpass DC response: got %f, want ~0", out)
	}
}

func TestSVFLowpassPassesDC(t *testing.T) {
	f := NewSVF(44100, 1000, 1.0)
	var low float64
	for i := 0; i < 2000; i++ {
		low, _, _ = f.ProcessAll(1.0)
	}
	if math.Abs(low-1.0) > 0.05 {
		t.Errorf("SVF lowpass DC gain: got %f, want ~1.0", low)
	}
}

func TestSVFModesMatchProcessAll(t *testing.T) {
	a := NewSVF(44100, 800, 1.5)
	b := NewSVF(44100, 800, 1.5)
	for i := 0; i < 64; i++ {
		x := math.Sin(float64(i) * 0.3)
		low, _, high := a.ProcessAll(x)
		notch := b.ProcessMode(x, ModeNotch)
		if math.Abs(notch-(low+high)) > 1e-12 {
			t.Fatalf("notch mismatch at %d: %f vs %f", i, notch, low+high)
		}
	}
}

func TestSVFClampsParams(t *testing.T) {
	f := NewSVF(44100, 30000, 0.1)
	if f.cutoff != 20000 {
		t.Errorf("cutoff clamp: got %f, want 20000", f.cutoff)
	}
	if f.resonance != 0.5 {
		t.Errorf("resonance floor: got %f, want 0.5", f.resonance)
	}
}

func TestSVFReset(t *testing.T) {
	f := NewSVF(44100, 1000, 1.0)
	for i := 0; i < 100; i++ {
		f.Process(1.0)
	}
	f.Reset()
	if f.low != 0 || f.band != 0 {
		t.Error("reset should clear integrator state")
	}
}

func TestTPTSVFStableNearNyquist(t *testing.T) {
	f := NewTPTSVF(44100, 19000, 0.7)
	for i := 0; i < 44100; i++ {
		_, _, high := f.ProcessAll(math.Sin(float64(i) * 0.5))
		if math.IsNaN(high) || math.Abs(high) > 10 {
			t.Fatalf("TPT SVF unstable at sample %d: %f", i, high)
		}
	}
}

func TestTPTSVFHighpassBlocksDC(t *testing.T) {
	f := NewTPTSVF(44100, 2000, 0.7)
	var high float64
	for i := 0; i < 2000; i++ {
		_, _, high = f.ProcessAll(1.0)
	}
	if math.Abs(high) > 0.05 {
		t.Errorf("TPT highpass DC leakage: got %f, want ~0", high)
	}
}

func TestTPTSVFSetParamsSkipsTinyChanges(t *testing.T) {
	f := NewTPTSVF(44100, 1000, 1.0)
	g := f.g
	f.SetParams(1000.0005, 1.0)
	if f.g != g {
		t.Error("sub-threshold parameter change should not recompute coefficients")
	}
	f.SetParams(2000, 1.0)
	if f.g == g {
		t.Error("real parameter change should recompute coefficients")
	}
}
