package beat

import (
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/drumkit-audio/drumkit-go/internal/engine"
)

// General MIDI percussion notes for the instrument kinds.
func (k instrumentKind) gmNote() uint8 {
	switch k {
	case kindKick:
		return 36 // bass drum 1
	case kindSnare:
		return 38 // acoustic snare
	case kindHiHat:
		return 42 // closed hi-hat
	case kindTom:
		return 47 // low-mid tom
	}
	return 38
}

const gmPercussionChannel = 9

// ticksPerStep divides the 960-tick quarter note into sixteenth steps.
const ticksPerStep = 240

// ExportSMF writes the program's sequenced patterns as a standard MIDI
// file: a tempo track followed by one percussion track per sequencer,
// each step a sixteenth note on the General MIDI drum channel.
// Sequencers bound to undeclared instruments are skipped, matching how
// the engine treats unknown trigger names.
func (p *Program) ExportSMF(w io.Writer) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(960)

	bpm := engine.DefaultBPM
	if p.hasBPM {
		bpm = p.bpm
	}

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	kinds := p.kindByName()
	for i, def := range p.sequencers {
		kind, ok := kinds[def.instrument]
		if !ok {
			continue
		}
		note := kind.gmNote()

		var track smf.Track
		var at uint32 // absolute tick of the last event added
		for step, st := range def.steps {
			if !st.Enabled {
				continue
			}
			pos := uint32(step) * ticksPerStep
			track.Add(pos-at, midi.NoteOn(gmPercussionChannel, note, midiVelocity(st.Velocity)))
			track.Add(ticksPerStep-1, midi.NoteOff(gmPercussionChannel, note))
			at = pos + ticksPerStep - 1
		}
		end := uint32(len(def.steps)) * ticksPerStep
		track.Close(end - at)
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("add track %d: %w", i, err)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}

// midiVelocity maps a unit velocity onto MIDI 1-127; enabled steps
// never export as silent.
func midiVelocity(v float64) uint8 {
	scaled := int(math.Round(v * 127))
	if scaled < 1 {
		scaled = 1
	} else if scaled > 127 {
		scaled = 127
	}
	return uint8(scaled)
}
