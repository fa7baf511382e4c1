package gen

import "math"

// Snap is a millisecond-scale FM burst: a low carrier whose instantaneous
// frequency is pushed around by a fast modulator under a sharp envelope.
// On its own it reads as a knuckle-on-wood transient; mixed under a drum
// voice it adds attack without changing the body.
type Snap struct {
	sampleRate  float64
	attack      float64
	decay       float64
	carrier     float64
	modulator   float64
	modIndex    float64
	phase       float64
	triggerTime float64
	active      bool
}

func NewSnap(sampleRate float64) *Snap {
	return &Snap{
		sampleRate: sampleRate,
		attack:     0.001,
		decay:      0.008,
		carrier:    50.0,
		modulator:  500.0,
		modIndex:   2.0,
	}
}

func (s *Snap) SetParams(attack, decay, carrier, modulator, modIndex float64) {
	s.attack = attack
	s.decay = decay
	s.carrier = carrier
	s.modulator = modulator
	s.modIndex = modIndex
}

func (s *Snap) Trigger(now float64) {
	s.triggerTime = now
	s.phase = 0
	s.active = true
}

func (s *Snap) Active() bool { return s.active }

// Tick renders one sample. The burst deactivates itself once the attack
// and decay window has passed.
func (s *Snap) Tick(now float64) float64 {
	if !s.active {
		return 0
	}
	t := now - s.triggerTime
	if t > s.attack+s.decay {
		s.active = false
		return 0
	}

	env := snapEnv(t, s.attack, s.decay)
	mod := math.Sin(twoPi * s.modulator * t)
	instFreq := s.carrier + s.modIndex*mod*env

	s.phase += twoPi * instFreq / s.sampleRate
	if s.phase > twoPi {
		s.phase -= twoPi
	}
	return math.Sin(s.phase) * env
}

// PhaseModulator is the envelope half of Snap on its own: a unipolar burst
// a voice multiplies into its pitch for a brief frequency kick at the
// attack. Output runs 0 to 1 over roughly nine milliseconds.
type PhaseModulator struct {
	attack      float64
	decay       float64
	triggerTime float64
	active      bool
}

func NewPhaseModulator() PhaseModulator {
	return PhaseModulator{attack: 0.001, decay: 0.008}
}

func (p *PhaseModulator) Trigger(now float64) {
	p.triggerTime = now
	p.active = true
}

func (p *PhaseModulator) Active() bool { return p.active }

func (p *PhaseModulator) Tick(now float64) float64 {
	if !p.active {
		return 0
	}
	t := now - p.triggerTime
	if t > p.attack+p.decay {
		p.active = false
		return 0
	}
	return snapEnv(t, p.attack, p.decay)
}

// snapEnv is a linear ramp up followed by an exponential tail.
func snapEnv(t, attack, decay float64) float64 {
	if t < attack {
		return t / attack
	}
	return clamp(math.Exp(-(t-attack)/decay), 0, 1)
}
