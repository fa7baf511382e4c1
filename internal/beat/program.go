// Package beat parses a small line-based script for describing engine
// programs: declare instruments, lay step patterns under them, route
// LFOs, and stack master effects, all in a dozen short lines.
//
// Lines are statements and `#` starts a comment:
//
//	bpm 120
//	master 0.25
//
//	inst hats hihat short
//	seq hats x.x.x.x.|x.x.x.x.
//
//	lfo 1bar hats.decay amt=0.6
//	fx lowpass 2000 0.3
//
// The syntax is deliberately forgiving about whitespace and accepts
// both positional and key=value effect arguments.
package beat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drumkit-audio/drumkit-go/internal/effects"
	"github.com/drumkit-audio/drumkit-go/internal/engine"
	"github.com/drumkit-audio/drumkit-go/internal/lfo"
	"github.com/drumkit-audio/drumkit-go/internal/voice"
)

// Program is a parsed beat script, ready to assemble into engines. A
// single Program can build any number of independent engines at any
// sample rate.
type Program struct {
	bpm          float64
	hasBPM       bool
	masterGain   float64
	hasMaster    bool
	clearEffects bool
	instruments  []instrumentDef
	sequencers   []sequencerDef
	lfos         []lfoDef
	effects      []effectDef
}

// Parse reads a beat script. Errors carry the one-based line number of
// the statement that failed.
func Parse(source string) (*Program, error) {
	p := &Program{}
	names := make(map[string]bool)

	for lineIndex, rawLine := range strings.Split(source, "\n") {
		lineNum := lineIndex + 1
		line := rawLine
		if head, _, ok := strings.Cut(line, "#"); ok {
			line = head
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}

		var err error
		switch cmd := strings.ToLower(tokens[0]); cmd {
		case "bpm":
			p.bpm, err = parseSingleNumber("bpm", lineNum, tokens)
			p.hasBPM = err == nil
		case "master", "gain":
			p.masterGain, err = parseSingleNumber("master", lineNum, tokens)
			p.hasMaster = err == nil
		case "inst", "i":
			err = p.parseInst(lineNum, tokens, names)
		case "seq", "s":
			err = p.parseSeq(lineNum, tokens)
		case "lfo", "l":
			err = p.parseLFO(lineNum, tokens)
		case "fx", "effect":
			err = p.parseFx(lineNum, tokens)
		default:
			err = fmt.Errorf("line %d: unknown statement %q", lineNum, cmd)
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// BPM returns the script's tempo and whether one was declared.
func (p *Program) BPM() (float64, bool) { return p.bpm, p.hasBPM }

func (p *Program) parseInst(lineNum int, tokens []string, names map[string]bool) error {
	if len(tokens) < 3 {
		return fmt.Errorf("line %d: inst expects: inst <name> <type> [preset]", lineNum)
	}
	name := tokens[1]
	if names[name] {
		return fmt.Errorf("line %d: duplicate instrument name %q", lineNum, name)
	}
	names[name] = true

	kind, ok := parseInstrumentKind(tokens[2])
	if !ok {
		return fmt.Errorf("line %d: unknown instrument type %q", lineNum, tokens[2])
	}

	preset := ""
	for _, arg := range tokens[3:] {
		if key, value, isNamed := strings.Cut(arg, "="); isNamed {
			if strings.ToLower(key) != "preset" {
				return fmt.Errorf("line %d: unknown inst argument %q", lineNum, key)
			}
			preset = value
		} else if preset == "" {
			preset = arg
		} else {
			return fmt.Errorf("line %d: too many inst arguments (unexpected %q)", lineNum, arg)
		}
	}

	p.instruments = append(p.instruments, instrumentDef{name: name, kind: kind, preset: preset})
	return nil
}

func (p *Program) parseSeq(lineNum int, tokens []string) error {
	if len(tokens) < 3 {
		return fmt.Errorf("line %d: seq expects: seq <instrument> <pattern> [start|stop]", lineNum)
	}
	instrument := tokens[1]
	rest := tokens[2:]

	// Trailing run-state flags; sequencers default to started.
	start := true
flags:
	for len(rest) > 0 {
		switch strings.ToLower(rest[len(rest)-1]) {
		case "start", "on":
			start = true
		case "stop", "stopped", "off":
			start = false
		default:
			break flags
		}
		rest = rest[:len(rest)-1]
	}
	if len(rest) == 0 {
		return fmt.Errorf("line %d: seq expects a non-empty pattern string", lineNum)
	}

	steps, err := parsePattern(lineNum, strings.Join(rest, " "))
	if err != nil {
		return err
	}
	p.sequencers = append(p.sequencers, sequencerDef{instrument: instrument, steps: steps, start: start})
	return nil
}

func (p *Program) parseLFO(lineNum int, tokens []string) error {
	if len(tokens) < 3 {
		return fmt.Errorf("line %d: lfo expects: lfo <rate> <inst.param> [amt=..] [offset=..]", lineNum)
	}

	def := lfoDef{amount: 1}
	consumed, err := parseLFORate(lineNum, tokens[1:], &def)
	if err != nil {
		return err
	}
	i := 1 + consumed

	if i < len(tokens) && tokens[i] == "->" {
		i++
	}
	if i >= len(tokens) {
		return fmt.Errorf("line %d: lfo expects target like %q", lineNum, "kick.pitch_drop")
	}
	def.instrument, def.parameter, err = parseTarget(lineNum, tokens[i])
	if err != nil {
		return err
	}
	i++

	for _, arg := range tokens[i:] {
		switch {
		case strings.HasPrefix(arg, "*"):
			def.amount, err = parseNumber(lineNum, "lfo amount", arg[1:])
		case strings.HasPrefix(arg, "@"):
			def.offset, err = parseNumber(lineNum, "lfo offset", arg[1:])
		default:
			key, value, isNamed := strings.Cut(arg, "=")
			if !isNamed {
				return fmt.Errorf("line %d: unrecognized lfo argument %q", lineNum, arg)
			}
			switch strings.ToLower(key) {
			case "amt", "amount":
				def.amount, err = parseNumber(lineNum, "lfo amount", value)
			case "off", "offset":
				def.offset, err = parseNumber(lineNum, "lfo offset", value)
			default:
				return fmt.Errorf("line %d: unknown lfo argument %q", lineNum, key)
			}
		}
		if err != nil {
			return err
		}
	}

	p.lfos = append(p.lfos, def)
	return nil
}

func (p *Program) parseFx(lineNum int, tokens []string) error {
	if len(tokens) < 2 {
		return fmt.Errorf("line %d: fx expects: fx <type> [...]", lineNum)
	}
	if strings.ToLower(tokens[1]) == "clear" {
		p.clearEffects = true
		p.effects = nil
		return nil
	}
	def, err := parseEffect(lineNum, tokens[1:])
	if err != nil {
		return err
	}
	p.effects = append(p.effects, def)
	return nil
}

// Build assembles a fresh engine from the program: tempo and master
// gain first, then instruments, master effects, sequencers (started
// unless the script said stop), and finally LFO routes. Unknown presets
// and unroutable LFO targets surface here rather than at parse time,
// mirroring where the engine itself validates.
func (p *Program) Build(sampleRate float64) (*engine.Engine, error) {
	eng := engine.New(sampleRate)

	if p.hasBPM {
		eng.SetBPM(p.bpm)
	}
	if p.hasMaster {
		eng.SetMasterGain(p.masterGain)
	}
	if p.clearEffects {
		eng.ClearEffects()
	}

	for _, def := range p.instruments {
		g, err := def.build(sampleRate)
		if err != nil {
			return nil, err
		}
		eng.AddGenerator(def.name, g)
	}

	for _, def := range p.effects {
		fx, err := def.build(sampleRate)
		if err != nil {
			return nil, err
		}
		eng.AddEffect(fx)
	}

	for _, def := range p.sequencers {
		seq := engine.NewSequencerPattern(eng.BPM(), sampleRate, def.steps, def.instrument)
		if def.start {
			seq.Start()
		}
		eng.AddSequencer(seq)
	}

	kinds := p.kindByName()
	for _, def := range p.lfos {
		var l *lfo.LFO
		if def.synced {
			l = lfo.NewSynced(def.division, eng.BPM(), sampleRate)
		} else {
			l = lfo.New(def.freq, sampleRate)
		}
		idx := eng.AddLFO(l)

		parameter := resolveParameterAlias(kinds[def.instrument], def.parameter)
		if err := eng.RouteLFO(idx, def.instrument, parameter, def.amount); err != nil {
			return nil, err
		}
		l.SetOffset(def.offset)
	}

	return eng, nil
}

func (p *Program) kindByName() map[string]instrumentKind {
	kinds := make(map[string]instrumentKind, len(p.instruments))
	for _, def := range p.instruments {
		kinds[def.name] = def.kind
	}
	return kinds
}

type instrumentKind int

const (
	kindUnknown instrumentKind = iota
	kindKick
	kindSnare
	kindHiHat
	kindTom
)

func parseInstrumentKind(token string) (instrumentKind, bool) {
	switch strings.ToLower(token) {
	case "kick", "kickdrum":
		return kindKick, true
	case "snare", "snaredrum":
		return kindSnare, true
	case "hihat", "hat":
		return kindHiHat, true
	case "tom", "tomdrum":
		return kindTom, true
	}
	return kindUnknown, false
}

type instrumentDef struct {
	name   string
	kind   instrumentKind
	preset string
}

func (d instrumentDef) build(sampleRate float64) (engine.Generator, error) {
	preset := strings.ToLower(d.preset)
	if preset == "" {
		preset = "default"
	}

	switch d.kind {
	case kindKick:
		switch preset {
		case "default":
			return voice.NewKick(sampleRate, voice.DefaultKick()), nil
		case "tight":
			return voice.NewKick(sampleRate, voice.TightKick()), nil
		case "punch":
			return voice.NewKick(sampleRate, voice.PunchKick()), nil
		case "loose":
			return voice.NewKick(sampleRate, voice.LooseKick()), nil
		case "dirt", "dirty":
			return voice.NewKick(sampleRate, voice.DirtKick()), nil
		}
		return nil, fmt.Errorf("unknown kick preset %q (try default, tight, punch, loose, dirt)", d.preset)
	case kindSnare:
		switch preset {
		case "default", "tight":
			return voice.NewSnare(sampleRate, voice.TightSnare()), nil
		case "loose":
			return voice.NewSnare(sampleRate, voice.LooseSnare()), nil
		case "hiss":
			return voice.NewSnare(sampleRate, voice.HissSnare()), nil
		case "smack":
			return voice.NewSnare(sampleRate, voice.SmackSnare()), nil
		}
		return nil, fmt.Errorf("unknown snare preset %q (try default, tight, loose, hiss, smack)", d.preset)
	case kindHiHat:
		switch preset {
		case "default", "short":
			return voice.NewHiHat(sampleRate, voice.ShortHiHat()), nil
		case "loose":
			return voice.NewHiHat(sampleRate, voice.LooseHiHat()), nil
		case "dark":
			return voice.NewHiHat(sampleRate, voice.DarkHiHat()), nil
		case "soft":
			return voice.NewHiHat(sampleRate, voice.SoftHiHat()), nil
		}
		return nil, fmt.Errorf("unknown hihat preset %q (try short, loose, dark, soft)", d.preset)
	case kindTom:
		switch preset {
		case "default", "mid", "mid_tom":
			return voice.NewTom(sampleRate, voice.MidTom()), nil
		case "high", "high_tom":
			return voice.NewTom(sampleRate, voice.HighTom()), nil
		case "low", "low_tom":
			return voice.NewTom(sampleRate, voice.LowTom()), nil
		case "floor", "floor_tom":
			return voice.NewTom(sampleRate, voice.FloorTom()), nil
		case "ds", "ds_tom":
			return voice.NewTom(sampleRate, voice.DSTom()), nil
		}
		return nil, fmt.Errorf("unknown tom preset %q (try default, high, mid, low, floor, ds)", d.preset)
	}
	return nil, fmt.Errorf("unknown instrument kind for %q", d.name)
}

type sequencerDef struct {
	instrument string
	steps      []engine.Step
	start      bool
}

type lfoDef struct {
	freq       float64
	division   lfo.Division
	synced     bool
	instrument string
	parameter  string
	amount     float64
	offset     float64
}

// resolveParameterAlias maps the short kick parameter names the script
// examples use onto the registered long forms. Other kinds pass
// through untouched.
func resolveParameterAlias(kind instrumentKind, parameter string) string {
	parameter = strings.ToLower(parameter)
	if kind != kindKick {
		return parameter
	}
	switch parameter {
	case "pitch_drop", "pitch_env_amt":
		return "pitch_envelope_amount"
	case "pitch_env_crv":
		return "pitch_envelope_curve"
	case "pitch_ratio":
		return "pitch_start_ratio"
	case "osc_decay":
		return "oscillator_decay"
	case "phase_mod_amt":
		return "phase_mod_amount"
	case "noise_res":
		return "noise_resonance"
	}
	return parameter
}

// parsePattern turns a pattern string into sequencer steps: `.`, `-`,
// `_`, and `0` rest, `x` hits at full velocity, `o` at half, digits 1-9
// at d/9. `|` and whitespace only group visually.
func parsePattern(lineNum int, pattern string) ([]engine.Step, error) {
	var steps []engine.Step
	for _, ch := range pattern {
		switch {
		case ch == ' ' || ch == '\t' || ch == '|':
		case ch == '.' || ch == '-' || ch == '_' || ch == '0':
			steps = append(steps, engine.Step{})
		case ch == 'x' || ch == 'X':
			steps = append(steps, engine.Step{Enabled: true, Velocity: 1})
		case ch == 'o' || ch == 'O':
			steps = append(steps, engine.Step{Enabled: true, Velocity: 0.5})
		case ch >= '1' && ch <= '9':
			steps = append(steps, engine.Step{Enabled: true, Velocity: float64(ch-'0') / 9})
		default:
			return nil, fmt.Errorf("line %d: invalid pattern character %q (use x o . - _ | digits 1-9)", lineNum, ch)
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("line %d: pattern has no steps", lineNum)
	}
	return steps, nil
}

// parseLFORate reads the rate tokens into def and reports how many it
// consumed. Accepted forms: "0.5hz", "hz 0.5", or a musical division
// name.
func parseLFORate(lineNum int, tokens []string, def *lfoDef) (int, error) {
	token := strings.ToLower(tokens[0])

	if token == "hz" {
		if len(tokens) < 2 {
			return 0, fmt.Errorf("line %d: lfo hz expects a frequency number", lineNum)
		}
		freq, err := parseNumber(lineNum, "lfo frequency", tokens[1])
		if err != nil {
			return 0, err
		}
		def.freq = freq
		return 2, nil
	}

	if numeric, ok := strings.CutSuffix(token, "hz"); ok {
		freq, err := parseNumber(lineNum, "lfo frequency", numeric)
		if err != nil {
			return 0, err
		}
		def.freq = freq
		return 1, nil
	}

	division, ok := lfo.ParseDivision(token)
	if !ok {
		return 0, fmt.Errorf("line %d: unknown lfo division %q (try 1bar, 2bars, 4bars, 1/2, 1/4, 1/8, 1/16, 1/32)", lineNum, token)
	}
	def.division = division
	def.synced = true
	return 1, nil
}

func parseTarget(lineNum int, token string) (instrument, parameter string, err error) {
	instrument, parameter, ok := strings.Cut(token, ".")
	if !ok || instrument == "" || parameter == "" {
		return "", "", fmt.Errorf("line %d: expected target like %q, got %q", lineNum, "kick.pitch_drop", token)
	}
	return instrument, parameter, nil
}

// parseSingleNumber handles "bpm 120" and the spaced "bpm = 120" form.
func parseSingleNumber(statement string, lineNum int, tokens []string) (float64, error) {
	switch {
	case len(tokens) == 2:
		return parseNumber(lineNum, statement, tokens[1])
	case len(tokens) == 3 && tokens[1] == "=":
		return parseNumber(lineNum, statement, tokens[2])
	}
	return 0, fmt.Errorf("line %d: %s expects a single number (e.g. %q)", lineNum, statement, statement+" 120")
}

func parseNumber(lineNum int, what, token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: expected a number for %s, got %q", lineNum, what, token)
	}
	return v, nil
}

type effectDef struct {
	kind string
	args []float64
}

func parseEffect(lineNum int, tokens []string) (effectDef, error) {
	args := newFxArgs(lineNum, tokens)
	var (
		def effectDef
		err error
	)
	switch args.effect {
	case "lowpass", "lp":
		def.kind = "lowpass"
		def.args, err = args.all(
			newArgSpec("cutoff", "cutoff", "cutoff_hz"),
			newArgSpec("res", "res", "resonance"))
	case "delay":
		def.kind = "delay"
		def.args, err = args.all(
			newArgSpec("time", "time", "t"),
			newArgSpec("fb", "fb", "feedback"),
			newArgSpec("mix", "mix"))
	case "saturation", "sat":
		def.kind = "sat"
		def.args, err = args.all(
			newArgSpec("drive", "drive"),
			newArgSpec("warmth", "warmth"),
			newArgSpec("mix", "mix"))
	case "limiter", "limit":
		def.kind = "limiter"
		def.args, err = args.all(newArgSpec("threshold", "thresh", "threshold"))
	case "softsat":
		def.kind = "softsat"
		def.args, err = args.all(newArgSpec("threshold", "thresh", "threshold"))
	case "comp", "compressor":
		def.kind = "comp"
		def.args, err = args.all(
			newArgSpec("threshold", "thresh", "threshold"),
			newArgSpec("ratio", "ratio"))
	case "eq":
		def.kind = "eq"
		def.args, err = args.all(
			newArgSpec("low gain", "low"),
			newArgSpec("low-mid gain", "lowmid"),
			newArgSpec("mid gain", "mid"),
			newArgSpec("high-mid gain", "highmid"),
			newArgSpec("high gain", "high"))
	case "chorus":
		def.kind = "chorus"
		def.args, err = args.optional(newArgSpec("mix", "mix"))
	case "reverb":
		def.kind = "reverb"
		def.args, err = args.optional(newArgSpec("wet", "wet", "mix"))
	default:
		return effectDef{}, fmt.Errorf("line %d: unknown effect type %q", lineNum, args.effect)
	}
	if err != nil {
		return effectDef{}, err
	}
	if err := args.finish(); err != nil {
		return effectDef{}, err
	}
	return def, nil
}

func (d effectDef) build(sampleRate float64) (effects.Effect, error) {
	switch d.kind {
	case "lowpass":
		return effects.NewLowpass(sampleRate, d.args[0], d.args[1]), nil
	case "delay":
		return effects.NewDelay(sampleRate, d.args[0], d.args[1], d.args[2]), nil
	case "sat":
		return effects.NewTubeSaturation(sampleRate, d.args[0], d.args[1], d.args[2]), nil
	case "limiter":
		return effects.NewBrickWallLimiter(d.args[0]), nil
	case "softsat":
		return effects.NewSoftSaturation(d.args[0]), nil
	case "comp":
		// Fixed bus-style timing; the script only picks how hard it grabs.
		return effects.NewCompressor(sampleRate, d.args[0], d.args[1], 10, 100, 0), nil
	case "eq":
		eq := effects.NewBandEQ(sampleRate)
		for band, gain := range d.args {
			eq.SetGain(band, gain)
		}
		return eq, nil
	case "chorus":
		c, err := effects.NewChorus(sampleRate)
		if err != nil {
			return nil, err
		}
		if len(d.args) == 1 {
			if err := c.SetMix(d.args[0]); err != nil {
				return nil, err
			}
		}
		return c, nil
	case "reverb":
		r := effects.NewReverb()
		if len(d.args) == 1 {
			r.SetWet(d.args[0])
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown effect type %q", d.kind)
}

// argSpec names one effect argument: a human description followed by
// the key spellings that select it.
type argSpec struct {
	what string
	keys []string
}

func newArgSpec(what string, keys ...string) argSpec { return argSpec{what: what, keys: keys} }

type fxArgs struct {
	line       int
	effect     string
	positional []string
	named      map[string]string
	used       map[string]bool
}

func newFxArgs(line int, tokens []string) *fxArgs {
	a := &fxArgs{
		line:   line,
		effect: strings.ToLower(tokens[0]),
		named:  make(map[string]string),
		used:   make(map[string]bool),
	}
	for _, tok := range tokens[1:] {
		if key, value, ok := strings.Cut(tok, "="); ok {
			a.named[strings.ToLower(key)] = value
		} else {
			a.positional = append(a.positional, tok)
		}
	}
	return a
}

// all resolves every spec, by key first and positional order second,
// erroring on the first one missing.
func (a *fxArgs) all(specs ...argSpec) ([]float64, error) {
	values := make([]float64, 0, len(specs))
	for i, spec := range specs {
		v, ok, err := a.get(i, spec)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("line %d: %s expects %s (positional or %s=)",
				a.line, a.effect, spec.what, spec.keys[0])
		}
		values = append(values, v)
	}
	return values, nil
}

// optional resolves at most one spec, returning an empty slice when it
// is absent.
func (a *fxArgs) optional(spec argSpec) ([]float64, error) {
	v, ok, err := a.get(0, spec)
	if err != nil || !ok {
		return nil, err
	}
	return []float64{v}, nil
}

func (a *fxArgs) get(pos int, spec argSpec) (float64, bool, error) {
	raw, found := "", false
	for _, key := range spec.keys {
		if v, ok := a.named[key]; ok {
			a.used[key] = true
			if !found {
				raw, found = v, true
			}
		}
	}
	if !found && pos < len(a.positional) {
		raw, found = a.positional[pos], true
	}
	if !found {
		return 0, false, nil
	}
	v, err := parseNumber(a.line, spec.what, raw)
	return v, true, err
}

// finish rejects named arguments nothing consumed.
func (a *fxArgs) finish() error {
	for key := range a.named {
		if !a.used[key] {
			return fmt.Errorf("line %d: unknown %s argument %q", a.line, a.effect, key)
		}
	}
	return nil
}
