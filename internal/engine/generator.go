package engine

// Generator is the voice-side contract the engine drives. Time is the
// engine's running clock in seconds; Tick is called once per sample
// whether or not the generator is currently sounding, so an idle
// generator should return 0 cheaply.
type Generator interface {
	TriggerWithVelocity(now, velocity float64)
	Tick(now float64) float64
	Active() bool
}

// Modulatable is the optional capability a generator exposes when its
// parameters can be driven by an LFO. Parameters lists the advertised
// names; ApplyModulation accepts a bipolar value in [-1, 1] for one of
// them and maps it onto the parameter's concrete range internally.
//
// Route legality is checked once against Parameters when a route is
// created, never per tick, so the advertised set must stay stable for
// the generator's lifetime.
type Modulatable interface {
	Parameters() []string
	ApplyModulation(parameter string, value float64) error
	ParameterRange(parameter string) (min, max float64, ok bool)
}

// BlendTarget is the optional capability for generators whose sound
// morphs across a two-axis preset square. A sequencer step carrying an
// absolute blend position repositions the generator just before the
// trigger fires.
type BlendTarget interface {
	SetBlendPosition(x, y float64)
}
