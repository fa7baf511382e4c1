// Package engine ties generators, sequencers, LFOs and the effect
// chain into a single per-sample tick. One real-time goroutine calls
// Tick once per output sample; everything that happens inside a sample
// happens in a fixed order so a given configuration always renders
// bit-identical output.
//
// Structural mutation (adding generators, sequencers, LFOs, routes) is
// configuration-time only: callers must serialize it against Tick
// themselves. Manual triggers go through a lock-free queue and
// per-parameter changes go through smoothers, so those are safe from a
// control goroutine while audio runs.
package engine

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/drumkit-audio/drumkit-go/internal/effects"
	"github.com/drumkit-audio/drumkit-go/internal/lfo"
	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// DefaultBPM is the tempo an engine starts at.
const DefaultBPM = 120.0

// DefaultTriggerVelocity is used by Trigger when no velocity is given.
const DefaultTriggerVelocity = 0.5

// triggerQueueSize bounds the manual trigger queue. Overflow drops the
// newest trigger rather than blocking the caller.
const triggerQueueSize = 64

type manualTrigger struct {
	generator string
	velocity  float64
}

// Engine owns the per-sample audio loop: LFO modulation, sequencer
// triggers, the manual trigger queue, generator summing, master gain
// and the global effect chain.
type Engine struct {
	sampleRate float64
	bpm        float64

	generators map[string]Generator
	sequencers []*Sequencer
	lfos       []*lfo.LFO
	chain      *effects.Chain

	// Master gain is applied to the summed output before effects.
	// 0.25 leaves headroom for several generators hitting at once.
	masterGain *param.Smoother

	triggers chan manualTrigger
	logger   *log.Logger
}

// New returns an engine at the given sample rate with a brick wall
// limiter already in the effect chain.
func New(sampleRate float64) *Engine {
	return &Engine{
		sampleRate: sampleRate,
		bpm:        DefaultBPM,
		generators: make(map[string]Generator),
		chain:      effects.NewChain(effects.NewBrickWallLimiter(1.0)),
		masterGain: param.NewSmoother(0.25, 0, 2, 30, sampleRate),
		triggers:   make(chan manualTrigger, triggerQueueSize),
		logger:     log.Default(),
	}
}

// SampleRate returns the engine's sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// SetLogger replaces the logger used for dropped-event warnings.
func (e *Engine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetBPM sets the global tempo and cascades it to every LFO so
// tempo-synced rates stay consistent. Sequencers keep their own tempo
// and must be updated individually.
func (e *Engine) SetBPM(bpm float64) {
	e.bpm = bpm
	for _, l := range e.lfos {
		l.SetBPM(bpm)
	}
}

// BPM returns the global tempo.
func (e *Engine) BPM() float64 { return e.bpm }

// SetMasterGain sets the master gain target in [0, 2]; the change
// ramps over a few milliseconds.
func (e *Engine) SetMasterGain(gain float64) { e.masterGain.SetTarget(gain) }

// MasterGain returns the master gain target.
func (e *Engine) MasterGain() float64 { return e.masterGain.Target() }

// AddGenerator registers a generator under a name. Adding a second
// generator with the same name replaces the first.
func (e *Engine) AddGenerator(name string, g Generator) {
	e.generators[name] = g
}

// Generator looks up a generator by name.
func (e *Engine) Generator(name string) (Generator, bool) {
	g, ok := e.generators[name]
	return g, ok
}

// GeneratorNames returns the registered names in sorted order.
func (e *Engine) GeneratorNames() []string {
	names := make([]string, 0, len(e.generators))
	for name := range e.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddSequencer appends a sequencer to the engine.
func (e *Engine) AddSequencer(s *Sequencer) {
	e.sequencers = append(e.sequencers, s)
}

// Sequencer returns the sequencer at index i, or nil if out of range.
func (e *Engine) Sequencer(i int) *Sequencer {
	if i < 0 || i >= len(e.sequencers) {
		return nil
	}
	return e.sequencers[i]
}

// SequencerCount returns the number of sequencers.
func (e *Engine) SequencerCount() int { return len(e.sequencers) }

// AddLFO appends an LFO and returns its index for routing.
func (e *Engine) AddLFO(l *lfo.LFO) int {
	e.lfos = append(e.lfos, l)
	return len(e.lfos) - 1
}

// LFO returns the LFO at index i, or nil if out of range.
func (e *Engine) LFO(i int) *lfo.LFO {
	if i < 0 || i >= len(e.lfos) {
		return nil
	}
	return e.lfos[i]
}

// LFOCount returns the number of LFOs.
func (e *Engine) LFOCount() int { return len(e.lfos) }

// AddEffect appends an effect to the global chain.
func (e *Engine) AddEffect(fx effects.Effect) { e.chain.Add(fx) }

// ClearEffects removes every effect from the global chain, including
// the default limiter.
func (e *Engine) ClearEffects() { e.chain.Clear() }

// EffectCount returns the number of effects in the global chain.
func (e *Engine) EffectCount() int { return e.chain.Len() }

// RouteLFO validates and stores a modulation route: the LFO at
// lfoIndex drives the named parameter of the named generator, scaled
// by amount. On any failure it returns a descriptive error and changes
// nothing. Validation happens here, once; per-tick application trusts
// it.
func (e *Engine) RouteLFO(lfoIndex int, generator, parameter string, amount float64) error {
	g, ok := e.generators[generator]
	if !ok {
		return fmt.Errorf("generator %q not found", generator)
	}
	m, ok := g.(Modulatable)
	if !ok {
		return fmt.Errorf("generator %q does not support modulation", generator)
	}
	params := m.Parameters()
	found := false
	for _, p := range params {
		if p == parameter {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("parameter %q is not modulatable on generator %q (available: %s)",
			parameter, generator, strings.Join(params, ", "))
	}
	l := e.LFO(lfoIndex)
	if l == nil {
		return fmt.Errorf("lfo index %d not found", lfoIndex)
	}
	l.SetRoute(generator, parameter)
	l.SetAmount(amount)
	return nil
}

// Trigger queues the named generator to fire on the next tick at the
// default velocity. Safe to call from a control goroutine while audio
// runs.
func (e *Engine) Trigger(name string) {
	e.TriggerWithVelocity(name, DefaultTriggerVelocity)
}

// TriggerWithVelocity queues the named generator to fire on the next
// tick at a velocity in [0, 1]. If the queue is full the trigger is
// dropped rather than blocking.
func (e *Engine) TriggerWithVelocity(name string, velocity float64) {
	if velocity < 0 {
		velocity = 0
	} else if velocity > 1 {
		velocity = 1
	}
	select {
	case e.triggers <- manualTrigger{generator: name, velocity: velocity}:
	default:
		e.logger.Printf("trigger queue full, dropping %q", name)
	}
}

// Tick renders one output sample at the given time in seconds. The
// order inside a tick is fixed: LFO modulation first, then sequencer
// triggers, then queued manual triggers, then generator summing,
// master gain and the effect chain. Modulation applied in this tick
// affects triggers fired in the same tick, so the order is part of the
// engine's observable behavior.
func (e *Engine) Tick(now float64) float64 {
	for _, l := range e.lfos {
		v := l.Tick()
		r, ok := l.Route()
		if !ok {
			continue
		}
		g, ok := e.generators[r.Generator]
		if !ok {
			continue
		}
		m, ok := g.(Modulatable)
		if !ok {
			continue
		}
		// A modulation failure must never interrupt audio.
		_ = m.ApplyModulation(r.Parameter, v)
	}

	for _, s := range e.sequencers {
		t, ok := s.Tick()
		if !ok {
			continue
		}
		g, ok := e.generators[t.Generator]
		if !ok {
			continue
		}
		if t.Blend != nil {
			if bt, ok := g.(BlendTarget); ok {
				bt.SetBlendPosition(t.Blend.X, t.Blend.Y)
			}
		}
		g.TriggerWithVelocity(now, t.Velocity)
	}

drain:
	for {
		select {
		case t := <-e.triggers:
			g, ok := e.generators[t.generator]
			if !ok {
				e.logger.Printf("warning: generator %q not found", t.generator)
				continue
			}
			g.TriggerWithVelocity(now, t.velocity)
		default:
			break drain
		}
	}

	var out float64
	for _, g := range e.generators {
		out += g.Tick(now)
	}

	out *= e.masterGain.Tick()
	return e.chain.Process(out)
}
