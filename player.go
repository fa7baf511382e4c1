// Package drumkit is a real-time drum synthesizer: four synthesized
// drum voices (kick, snare, hi-hat, tom) driven by sample-accurate
// step sequencers, tempo-synced LFO modulation and a master effect
// chain, all rendered one sample at a time by a single engine tick.
//
// Programs are written in a small line-based beat script (see
// internal/beat) and played live through Player or rendered offline
// with RenderProgram. StandardKit builds the four-voice setup the
// interactive tools start from.
package drumkit

import (
	"errors"
	"log"
	"sync"

	intaudio "github.com/drumkit-audio/drumkit-go/internal/audio"
	"github.com/drumkit-audio/drumkit-go/internal/beat"
	"github.com/drumkit-audio/drumkit-go/internal/engine"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	sampleRate int
	bpm        float64
	masterGain float64
	hasGain    bool
	sampleTap  func([]float32)
	logger     *log.Logger
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{sampleRate: 44100}
}

// WithSampleRate sets the output sample rate in Hz. The default is
// 44100.
func WithSampleRate(hz int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleRate = hz
	}
}

// WithBPM sets the tempo used for beat programs that do not carry a
// bpm statement of their own.
func WithBPM(bpm float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.bpm = bpm
	}
}

// WithMasterGain overrides the master gain of everything this player
// plays, including any master statement in a beat program.
func WithMasterGain(gain float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.masterGain = gain
		cfg.hasGain = true
	}
}

// WithSampleTap installs a callback invoked with each generated mono
// buffer. The callback runs on the audio thread; keep work brief and
// non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// WithLogger routes engine warnings, such as dropped manual triggers,
// to l instead of the default logger.
func WithLogger(l *log.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = l
	}
}

// Player plays drum engines live through the platform audio backend.
// One player drives one engine at a time; a new Play call replaces the
// previous playback.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	bpm        float64
	masterGain float64
	hasGain    bool
	sampleTap  func([]float32)
	logger     *log.Logger

	engine   *engine.Engine
	audio    *intaudio.Player
	baseGain float64
	volume   float64
}

// engineSource adapts an engine to the audio stream: one Tick per
// sample, with the timeline derived from the sample counter so long
// sessions never drift.
type engineSource struct {
	eng   *engine.Engine
	rate  float64
	count uint64
	tap   func([]float32)
}

func (s *engineSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = float32(s.eng.Tick(float64(s.count) / s.rate))
		s.count++
	}
	if s.tap != nil {
		s.tap(dst)
	}
}

// NewPlayer builds a player without opening the audio device; the
// device opens on the first Play call, so construction and control
// methods work headless.
func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	eng := engine.New(float64(cfg.sampleRate))
	if cfg.logger != nil {
		eng.SetLogger(cfg.logger)
	}
	if cfg.hasGain {
		eng.SetMasterGain(cfg.masterGain)
	}
	return &Player{
		sampleRate: cfg.sampleRate,
		bpm:        cfg.bpm,
		masterGain: cfg.masterGain,
		hasGain:    cfg.hasGain,
		sampleTap:  cfg.sampleTap,
		logger:     cfg.logger,
		engine:     eng,
		baseGain:   eng.MasterGain(),
		volume:     1,
	}, nil
}

// PlayBeat parses a beat script and starts playing it.
func (p *Player) PlayBeat(source string) error {
	prog, err := beat.Parse(source)
	if err != nil {
		return err
	}
	return p.Play(prog)
}

// Play builds an engine from a parsed program and starts playback,
// replacing whatever was playing before.
func (p *Player) Play(program *beat.Program) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	eng, err := program.Build(float64(p.sampleRate))
	if err != nil {
		return err
	}
	if _, ok := program.BPM(); !ok && p.bpm > 0 {
		setTempo(eng, p.bpm)
	}
	return p.startLocked(eng)
}

// PlayKit starts live playback of a kit. The kit keeps control of its
// own transport and tempo; the player only owns the audio stream.
func (p *Player) PlayKit(k *Kit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	eng := k.Engine()
	if eng.SampleRate() != float64(p.sampleRate) {
		return errors.New("kit sample rate does not match player sample rate")
	}
	return p.startLocked(eng)
}

// setTempo pushes one tempo to the engine and every sequencer; the
// engine's own SetBPM only cascades to LFOs.
func setTempo(eng *engine.Engine, bpm float64) {
	eng.SetBPM(bpm)
	for i := 0; i < eng.SequencerCount(); i++ {
		eng.Sequencer(i).SetBPM(bpm)
	}
}

func (p *Player) startLocked(eng *engine.Engine) error {
	if p.logger != nil {
		eng.SetLogger(p.logger)
	}
	if p.hasGain {
		eng.SetMasterGain(p.masterGain)
	}
	p.baseGain = eng.MasterGain()
	eng.SetMasterGain(p.baseGain * p.volume)

	source := &engineSource{eng: eng, rate: float64(p.sampleRate), tap: p.sampleTap}
	backend, err := intaudio.NewPlayer(p.sampleRate, source)
	if err != nil {
		return err
	}
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.engine = eng
	p.audio = backend
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

// Stop ends playback. The player stays usable; a later Play opens a
// fresh stream.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Close stops playback. The process-wide audio context stays alive for
// later players; the backend does not support tearing it down.
func (p *Player) Close() error { return p.Stop() }

// Playing reports whether the audio stream is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

// SetMasterVolume sets the runtime volume scalar. 1.0 is default; the
// change ramps through the engine's gain smoother.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	p.engine.SetMasterGain(p.baseGain * p.volume)
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SampleRate returns the player's output sample rate in Hz.
func (p *Player) SampleRate() int { return p.sampleRate }

// Engine returns the engine the player is driving. Structural changes
// (adding generators, sequencers or routes) must happen before
// playback; triggers and parameter changes are safe while audio runs.
func (p *Player) Engine() *engine.Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine
}

// PlaybackPosition returns the current output position of the audio
// driver in samples, i.e. what the listener actually hears right now.
// Returns 0 if not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}
