package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	drumkit "github.com/drumkit-audio/drumkit-go"
	"github.com/drumkit-audio/drumkit-go/internal/analyze"
	"github.com/drumkit-audio/drumkit-go/internal/beat"
)

const defaultBeat = `
bpm 120
master 0.3

inst kick kick punch
inst snare snare tight
inst hats hihat short

seq kick  x...x...x...x...
seq snare ....x.......x..o
seq hats  ..x...x...x...x.
`

func main() {
	var (
		sampleRate = flag.Float64("sample-rate", 44100, "render sample rate")
		seconds    = flag.Float64("seconds", 4, "length of the render")
		beatPath   = flag.String("file", "", "path to a beat script")
		beatInline = flag.String("beat", "", "inline beat script")
		wavPath    = flag.String("wav", "out.wav", "output WAV path (float32 mono)")
		midiPath   = flag.String("midi", "", "also export the patterns as a standard MIDI file")
		analyzeOut = flag.Bool("analyze", false, "print the dominant spectral peaks of the render")
	)
	flag.Parse()

	source, err := resolveBeatInput(*beatPath, *beatInline)
	if err != nil {
		log.Fatal(err)
	}
	prog, err := beat.Parse(source)
	if err != nil {
		log.Fatal(err)
	}
	eng, err := prog.Build(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}

	samples := drumkit.RenderSamples(eng, *seconds)
	wav := drumkit.EncodeWAVFloat32LE(samples, int(*sampleRate), 1)
	if err := os.WriteFile(*wavPath, wav, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%.1fs, %d samples at %.0f Hz)\n", *wavPath, *seconds, len(samples), *sampleRate)

	if *midiPath != "" {
		f, err := os.Create(*midiPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := prog.ExportSMF(f); err != nil {
			f.Close()
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *midiPath)
	}

	if *analyzeOut {
		an, err := analyze.New(*sampleRate, analyze.DefaultConfig())
		if err != nil {
			log.Fatal(err)
		}
		an.PushAll(samples)
		if !an.Ready() {
			log.Fatal("render too short for spectrum analysis")
		}
		fmt.Println("spectral peaks:")
		for _, pk := range an.Peaks(8) {
			fmt.Printf("  %8.1f Hz  %6.1f dB\n", pk.Frequency, pk.DB)
		}
	}
}

func resolveBeatInput(path string, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return defaultBeat, nil
}
