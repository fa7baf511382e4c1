package beat

import (
	"bytes"
	"testing"
)

func TestExportSMFWritesTempoAndPatternTracks(t *testing.T) {
	const script = `
bpm 100
inst kick kick
inst hats hihat
seq kick x...x...
seq hats x.x.x.x.
seq ghost xxxx # never declared, engine would drop its triggers too
`
	p, err := Parse(script)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := p.ExportSMF(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte("MThd")) {
		t.Fatalf("missing SMF header, got % x", data[:min(8, len(data))])
	}
	// Tempo track plus one track per declared-instrument sequencer; the
	// ghost pattern is skipped.
	if got := bytes.Count(data, []byte("MTrk")); got != 3 {
		t.Errorf("track chunks: got %d, want 3", got)
	}
}

func TestExportSMFWithoutSequencers(t *testing.T) {
	p, err := Parse("bpm 90\ninst kick kick")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := p.ExportSMF(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("MTrk")); got != 1 {
		t.Errorf("track chunks: got %d, want just the tempo track", got)
	}
}

func TestMIDIVelocityMapping(t *testing.T) {
	cases := []struct {
		in   float64
		want uint8
	}{
		{0, 1},
		{0.5, 64},
		{1, 127},
		{2, 127},
	}
	for _, tc := range cases {
		if got := midiVelocity(tc.in); got != tc.want {
			t.Errorf("midiVelocity(%f): got %d, want %d", tc.in, got, tc.want)
		}
	}
}
