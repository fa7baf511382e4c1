package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	drumkit "github.com/drumkit-audio/drumkit-go"
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

lfo 1bar kick.pitch_drop amt=0.4
fx softsat 0.9
`

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		duration   = flag.Duration("duration", 8*time.Second, "how long to play (0 = until interrupted)")
		beatPath   = flag.String("file", "", "path to a beat script")
		beatInline = flag.String("beat", "", "inline beat script")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		bpm        = flag.Float64("bpm", 0, "tempo for scripts without a bpm statement")
	)
	flag.Parse()

	source, err := resolveBeatInput(*beatPath, *beatInline)
	if err != nil {
		log.Fatal(err)
	}

	opts := []drumkit.PlayerOption{drumkit.WithSampleRate(*sampleRate)}
	if *bpm > 0 {
		opts = append(opts, drumkit.WithBPM(*bpm))
	}
	pl, err := drumkit.NewPlayer(opts...)
	if err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(*volume)
	if err := pl.PlayBeat(source); err != nil {
		log.Fatal(err)
	}

	if *duration > 0 {
		time.Sleep(*duration)
	} else {
		interrupted := make(chan os.Signal, 1)
		signal.Notify(interrupted, os.Interrupt)
		<-interrupted
	}
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("playback stopped")
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
