// Package voice implements the drum voices: kick, snare, hi-hat, and
// tom. Each voice layers a few gen sources behind per-hit envelopes,
// exposes every control as a normalized smoothed parameter, and morphs
// between four corner presets on a 2D blend pad.
//
// Voices satisfy engine.Generator. Their advertised parameter names use
// snake_case so routing targets read the same across voices
// ("amp_decay", "filter_cutoff"). Config fields hold unit values in
// [0, 1]; the range constants in each voice file map them onto
// engineering units.
package voice

import (
	"fmt"
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/gen"
	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// modTable maps a voice's advertised parameter names onto its
// smoothers. Registration order is the order Parameters reports, and an
// alias can expose one smoother under a second name without it being
// ticked twice.
type modTable struct {
	names    []string
	bySlot   map[string]*param.Smoother
	smoothed []*param.Smoother
}

func newModTable() modTable {
	return modTable{bySlot: make(map[string]*param.Smoother)}
}

// register creates a unit-range smoother holding value and advertises
// it under name.
func (t *modTable) register(name string, value, sampleRate float64) *param.Smoother {
	s := param.NewSmoother(value, 0, 1, param.DefaultSmoothingMS, sampleRate)
	t.names = append(t.names, name)
	t.bySlot[name] = s
	t.smoothed = append(t.smoothed, s)
	return s
}

// registerAlias advertises an already-registered smoother under a
// second name.
func (t *modTable) registerAlias(name string, s *param.Smoother) {
	t.names = append(t.names, name)
	t.bySlot[name] = s
}

// tick advances every smoother one sample and reports whether any are
// still ramping.
func (t *modTable) tick() bool {
	ramping := false
	for _, s := range t.smoothed {
		s.Tick()
		if !s.Settled() {
			ramping = true
		}
	}
	return ramping
}

// Parameters lists the advertised parameter names in registration
// order.
func (t *modTable) Parameters() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// ApplyModulation maps a bipolar value in [-1, 1] across the named
// parameter's range and sets it as the smoothing target.
func (t *modTable) ApplyModulation(parameter string, value float64) error {
	s, ok := t.bySlot[parameter]
	if !ok {
		return fmt.Errorf("unknown parameter %q", parameter)
	}
	s.SetBipolar(value)
	return nil
}

// SetParameter sets the named parameter from a unit value in [0, 1].
// Scripts and UI controls use this path; modulation sources use the
// bipolar ApplyModulation path instead.
func (t *modTable) SetParameter(parameter string, value float64) error {
	s, ok := t.bySlot[parameter]
	if !ok {
		return fmt.Errorf("unknown parameter %q", parameter)
	}
	s.SetNormalized(value)
	return nil
}

// ParameterRange reports the bounds of the named parameter.
func (t *modTable) ParameterRange(parameter string) (min, max float64, ok bool) {
	s, ok := t.bySlot[parameter]
	if !ok {
		return 0, 0, false
	}
	min, max = s.Bounds()
	return min, max, true
}

// denorm maps a unit value onto [min, max], clamping u into [0, 1]
// first.
func denorm(u, min, max float64) float64 {
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return min + u*(max-min)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// curveFor picks a linear segment when the exponent is near enough to
// one that shaping would be a wasted pow call.
func curveFor(k float64) gen.Curve {
	if math.Abs(k-1) < 0.01 {
		return gen.Linear()
	}
	return gen.Exponential(k)
}
