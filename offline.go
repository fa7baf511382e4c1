package drumkit

import (
	"encoding/binary"
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/beat"
	"github.com/drumkit-audio/drumkit-go/internal/engine"
)

// RenderProgram parses a beat script and renders it offline without
// opening an audio device. The result is mono: one float32 sample per
// frame.
func RenderProgram(source string, sampleRate, seconds float64) ([]float32, error) {
	prog, err := beat.Parse(source)
	if err != nil {
		return nil, err
	}
	eng, err := prog.Build(sampleRate)
	if err != nil {
		return nil, err
	}
	return RenderSamples(eng, seconds), nil
}

// RenderSamples renders seconds of mono audio from an engine that is
// not playing anywhere else.
func RenderSamples(eng *engine.Engine, seconds float64) []float32 {
	rate := eng.SampleRate()
	frames := int(rate * seconds)
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(eng.Tick(float64(i) / rate))
	}
	return out
}

// EncodeWAVFloat32LE wraps raw samples in a WAV container using the
// IEEE float encoding (format tag 3).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
