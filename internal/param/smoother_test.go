package param

import (
	"math"
	"sync"
	"testing"
)

func TestSmootherConvergesWithinTenTimeConstants(t *testing.T) {
	const sampleRate = 44100.0
	s := NewSmoother(0, 0, 1, 15, sampleRate)
	s.SetTarget(1)
	tau := 15.0 / 1000.0 * sampleRate
	n := int(tau * 12)
	var v float64
	for i := 0; i < n; i++ {
		v = s.Tick()
	}
	if math.Abs(v-1) > 1e-3 {
		t.Errorf("after %d ticks: got %f, want within 1e-3 of 1.0", n, v)
	}
}

func TestSmootherStaysInBounds(t *testing.T) {
	s := NewSmoother(0.5, 0, 1, 15, 44100)
	s.SetTarget(1)
	for i := 0; i < 10000; i++ {
		v := s.Tick()
		if v < 0 || v > 1 {
			t.Fatalf("tick %d: value %f left bounds [0, 1]", i, v)
		}
	}
}

func TestSmootherClampsTarget(t *testing.T) {
	s := NewSmoother(0.5, 0, 1, 15, 44100)
	s.SetTarget(3)
	if got := s.Target(); got != 1 {
		t.Errorf("target after SetTarget(3): got %f, want 1.0", got)
	}
	s.SetTarget(-2)
	if got := s.Target(); got != 0 {
		t.Errorf("target after SetTarget(-2): got %f, want 0.0", got)
	}
}

func TestSmootherSnapsExactlyOntoTarget(t *testing.T) {
	s := NewSmoother(0, 0, 1, 1, 44100)
	s.SetTarget(0.25)
	for i := 0; i < 44100 && !s.Settled(); i++ {
		s.Tick()
	}
	if !s.Settled() {
		t.Fatal("smoother never settled")
	}
	if got := s.Tick(); got != 0.25 {
		t.Errorf("settled value: got %f, want exactly 0.25", got)
	}
}

func TestSmootherRetargetUnsettles(t *testing.T) {
	s := NewSmoother(0.5, 0, 1, 15, 44100)
	if !s.Settled() {
		t.Fatal("fresh smoother should start settled")
	}
	s.SetTarget(0.5)
	if !s.Settled() {
		t.Error("retargeting to the same value should stay settled")
	}
	s.SetTarget(0.75)
	if s.Settled() {
		t.Error("retargeting to a new value should unsettle")
	}
}

func TestSmootherSetImmediate(t *testing.T) {
	s := NewSmoother(0, 0, 1, 15, 44100)
	s.SetImmediate(0.9)
	if got := s.Current(); got != 0.9 {
		t.Errorf("current after SetImmediate(0.9): got %f, want 0.9", got)
	}
	if !s.Settled() {
		t.Error("SetImmediate should leave the smoother settled")
	}
}

func TestSmootherZeroSmoothingSnaps(t *testing.T) {
	s := NewSmoother(0, 0, 1, 0, 44100)
	s.SetTarget(0.6)
	if got := s.Tick(); got != 0.6 {
		t.Errorf("tick with zero smoothing: got %f, want 0.6", got)
	}
}

func TestSmootherSetBipolarMapsRange(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-1, 100},
		{0, 150},
		{1, 200},
		{-2, 100},
		{2, 200},
	}
	for _, c := range cases {
		s := NewSmoother(150, 100, 200, 15, 44100)
		s.SetBipolar(c.in)
		if got := s.Target(); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("SetBipolar(%f): target %f, want %f", c.in, got, c.want)
		}
	}
}

func TestSmootherSetNormalizedMapsRange(t *testing.T) {
	s := NewSmoother(0, -1, 1, 15, 44100)
	s.SetNormalized(0.5)
	if got := s.Target(); math.Abs(got) > 1e-9 {
		t.Errorf("SetNormalized(0.5) on [-1, 1]: target %f, want 0.0", got)
	}
}

func TestSharedTickFollowsPublishedTarget(t *testing.T) {
	p := NewShared(0, 0, 2, 0, 44100)
	p.Set(1.5)
	if got := p.Tick(); got != 1.5 {
		t.Errorf("tick after Set(1.5): got %f, want 1.5", got)
	}
}

func TestSharedClampsPublishedTarget(t *testing.T) {
	p := NewShared(0, 0, 2, 0, 44100)
	p.Set(5)
	if got := p.Target(); got != 2 {
		t.Errorf("target after Set(5): got %f, want 2.0", got)
	}
}

func TestSharedConcurrentPublish(t *testing.T) {
	p := NewShared(0, 0, 1, 5, 44100)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					p.Set(v)
				}
			}
		}(0.25 * float64(i))
	}
	for i := 0; i < 50000; i++ {
		v := p.Tick()
		if v < 0 || v > 1 {
			t.Errorf("tick %d: value %f left bounds [0, 1]", i, v)
			break
		}
	}
	close(stop)
	wg.Wait()
}
