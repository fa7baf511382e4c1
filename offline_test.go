package drumkit

import (
	"encoding/binary"
	"math"
	"testing"
)

const backbeatScript = `
bpm 120
master 0.3

inst kick kick punch
inst hats hihat short

seq kick x...x...x...x...
seq hats ..x...x...x...x.
`

func TestRenderProgramProducesAudio(t *testing.T) {
	out, err := RenderProgram(backbeatScript, 44100, 1)
	if err != nil {
		t.Fatalf("RenderProgram: %v", err)
	}
	if got, want := len(out), 44100; got != want {
		t.Fatalf("rendered %d samples, want %d", got, want)
	}
	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak < 0.01 {
		t.Fatalf("render peak %g, expected audible output", peak)
	}
	if peak > 1 {
		t.Fatalf("render peak %g exceeds the limiter ceiling", peak)
	}
}

func TestRenderProgramRejectsBadScripts(t *testing.T) {
	if _, err := RenderProgram("inst k kick\nseq k zz", 44100, 0.1); err == nil {
		t.Fatal("expected pattern parse error")
	}
	if _, err := RenderProgram("inst k kick nosuchpreset", 44100, 0.1); err == nil {
		t.Fatal("expected preset build error")
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0.5, -0.25, 0.125}
	buf := EncodeWAVFloat32LE(samples, 48000, 1)

	if got, want := len(buf), 44+len(samples)*4; got != want {
		t.Fatalf("buffer length = %d, want %d", got, want)
	}
	if string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != uint32(36+len(samples)*4) {
		t.Fatalf("chunk size = %d", got)
	}
	if string(buf[12:16]) != "fmt " {
		t.Fatal("missing fmt chunk")
	}
	if got := binary.LittleEndian.Uint32(buf[16:]); got != 16 {
		t.Fatalf("fmt chunk size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(buf[20:]); got != 3 {
		t.Fatalf("format tag = %d, want 3 (IEEE float)", got)
	}
	if got := binary.LittleEndian.Uint16(buf[22:]); got != 1 {
		t.Fatalf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(buf[24:]); got != 48000 {
		t.Fatalf("sample rate = %d, want 48000", got)
	}
	if got := binary.LittleEndian.Uint32(buf[28:]); got != 48000*4 {
		t.Fatalf("byte rate = %d, want %d", got, 48000*4)
	}
	if got := binary.LittleEndian.Uint16(buf[32:]); got != 4 {
		t.Fatalf("block align = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint16(buf[34:]); got != 32 {
		t.Fatalf("bits per sample = %d, want 32", got)
	}
	if string(buf[36:40]) != "data" {
		t.Fatal("missing data chunk")
	}
	if got := binary.LittleEndian.Uint32(buf[40:]); got != uint32(len(samples)*4) {
		t.Fatalf("data size = %d", got)
	}
	for i, s := range samples {
		if got := binary.LittleEndian.Uint32(buf[44+i*4:]); got != math.Float32bits(s) {
			t.Fatalf("sample %d bits = %#x, want %#x", i, got, math.Float32bits(s))
		}
	}
}
