// Package analyze measures the spectral content of rendered audio. An
// Analyzer consumes samples one at a time, maintains a windowed FFT
// frame over the most recent ones, and exposes the smoothed magnitude
// spectrum in dBFS together with a peak-hold trace for picking out the
// dominant partials of a decaying hit.
package analyze

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

const (
	minDB = -120.0
	eps   = 1e-12
)

// Config holds analyzer settings. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	FFTSize   int     // frame length, a power of two between 256 and 8192
	Overlap   float64 // frame overlap fraction in [0.25, 0.95]
	Smoothing float64 // per-bin dB smoothing across frames in [0, 0.95]
	Window    string  // hann, hamming, blackman, blackmanharris, flattop
}

// DefaultConfig is a 2048-point Blackman-Harris analyzer with 75%
// overlap and moderate smoothing.
func DefaultConfig() Config {
	return Config{FFTSize: 2048, Overlap: 0.75, Smoothing: 0.6, Window: "blackmanharris"}
}

func sanitizeConfig(cfg Config) Config {
	switch cfg.FFTSize {
	case 256, 512, 1024, 2048, 4096, 8192:
	default:
		cfg.FFTSize = 2048
	}
	cfg.Overlap = clamp(cfg.Overlap, 0.25, 0.95)
	cfg.Smoothing = clamp(cfg.Smoothing, 0, 0.95)
	cfg.Window = strings.ToLower(strings.TrimSpace(cfg.Window))
	if cfg.Window == "" {
		cfg.Window = "blackmanharris"
	}
	return cfg
}

func windowType(name string) (window.Type, error) {
	switch name {
	case "hann":
		return window.TypeHann, nil
	case "hamming":
		return window.TypeHamming, nil
	case "blackman":
		return window.TypeBlackman, nil
	case "blackmanharris":
		return window.TypeBlackmanHarris4Term, nil
	case "flattop":
		return window.TypeFlatTop, nil
	}
	return 0, fmt.Errorf("unsupported analyzer window %q", name)
}

// Peak is one spectral maximum from the peak-hold trace.
type Peak struct {
	Frequency float64 // Hz, parabolic-refined between bins
	DB        float64
}

// Analyzer is a streaming FFT magnitude analyzer. Feed it samples with
// Push; frames fire on the hop grid once the ring has filled.
type Analyzer struct {
	sampleRate float64
	cfg        Config

	dc *biquad.Section // 20 Hz highpass keeps render DC out of bin zero

	win     []float64
	winGain float64
	plan    *algofft.Plan[complex128]
	input   []complex128
	output  []complex128

	ring   []float64
	write  int
	filled int
	toHop  int
	hop    int

	db     []float64 // smoothed current spectrum
	peakDB []float64 // per-bin maximum since Reset
	ready  bool
}

// New builds an analyzer at the given sample rate. Out-of-range config
// fields are coerced into range; an unknown window name is an error.
func New(sampleRate float64, cfg Config) (*Analyzer, error) {
	cfg = sanitizeConfig(cfg)

	winType, err := windowType(cfg.Window)
	if err != nil {
		return nil, err
	}
	win := window.Generate(winType, cfg.FFTSize, window.WithPeriodic())
	if len(win) != cfg.FFTSize {
		return nil, fmt.Errorf("invalid analyzer window size: %d", cfg.FFTSize)
	}
	sum := 0.0
	for _, w := range win {
		sum += w
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("init fft plan: %w", err)
	}

	hop := int(math.Round(float64(cfg.FFTSize) * (1 - cfg.Overlap)))
	if hop < 1 {
		hop = 1
	}

	a := &Analyzer{
		sampleRate: sampleRate,
		cfg:        cfg,
		dc:         biquad.NewSection(design.Highpass(20, 0.707, sampleRate)),
		win:        win,
		winGain:    sum / float64(cfg.FFTSize),
		plan:       plan,
		input:      make([]complex128, cfg.FFTSize),
		output:     make([]complex128, cfg.FFTSize),
		ring:       make([]float64, cfg.FFTSize),
		hop:        hop,
		db:         make([]float64, cfg.FFTSize/2+1),
		peakDB:     make([]float64, cfg.FFTSize/2+1),
	}
	a.clearSpectra()
	return a, nil
}

// Config returns the sanitized configuration in effect.
func (a *Analyzer) Config() Config { return a.cfg }

// BinWidth returns the frequency width of one FFT bin in Hz.
func (a *Analyzer) BinWidth() float64 { return a.sampleRate / float64(a.cfg.FFTSize) }

// Ready reports whether at least one full frame has been analyzed.
func (a *Analyzer) Ready() bool { return a.ready }

// Push feeds one sample. When the ring is full and a hop boundary
// passes, a new frame is windowed, transformed, and folded into the
// spectrum.
func (a *Analyzer) Push(x float64) {
	x = a.dc.ProcessSample(x)
	a.ring[a.write] = x
	a.write++
	if a.write >= a.cfg.FFTSize {
		a.write = 0
	}
	if a.filled < a.cfg.FFTSize {
		a.filled++
	}
	a.toHop++
	if a.filled < a.cfg.FFTSize || a.toHop < a.hop {
		return
	}
	a.toHop = 0
	a.frame()
}

// PushAll feeds a rendered buffer.
func (a *Analyzer) PushAll(samples []float32) {
	for _, s := range samples {
		a.Push(float64(s))
	}
}

func (a *Analyzer) frame() {
	read := a.write
	for i := 0; i < a.cfg.FFTSize; i++ {
		a.input[i] = complex(a.ring[read]*a.win[i], 0)
		read++
		if read >= a.cfg.FFTSize {
			read = 0
		}
	}
	if err := a.plan.Forward(a.output, a.input); err != nil {
		return
	}

	norm := float64(a.cfg.FFTSize) * math.Max(a.winGain, eps)
	last := len(a.db) - 1
	for k := 0; k <= last; k++ {
		mag := cmplx.Abs(a.output[k]) / norm
		if k > 0 && k < last {
			mag *= 2
		}
		db := 20 * math.Log10(math.Max(eps, mag))
		if db < minDB {
			db = minDB
		}
		if a.ready {
			s := a.cfg.Smoothing
			a.db[k] = s*a.db[k] + (1-s)*db
		} else {
			a.db[k] = db
		}
		if db > a.peakDB[k] {
			a.peakDB[k] = db
		}
	}
	a.ready = true
}

// DB returns a copy of the smoothed spectrum, one dBFS value per bin
// from DC to Nyquist.
func (a *Analyzer) DB() []float64 {
	out := make([]float64, len(a.db))
	copy(out, a.db)
	return out
}

// PeakHoldDB returns a copy of the per-bin maximum since Reset.
func (a *Analyzer) PeakHoldDB() []float64 {
	out := make([]float64, len(a.peakDB))
	copy(out, a.peakDB)
	return out
}

// At returns the smoothed level at an arbitrary frequency, linearly
// interpolated between bins.
func (a *Analyzer) At(freqHz float64) float64 {
	if !a.ready {
		return minDB
	}
	last := len(a.db) - 1
	bin := freqHz / a.BinWidth()
	if bin <= 0 {
		return a.db[0]
	}
	if bin >= float64(last) {
		return a.db[last]
	}
	base := int(bin)
	frac := bin - float64(base)
	return a.db[base] + frac*(a.db[base+1]-a.db[base])
}

// Peaks returns up to n dominant spectral peaks from the peak-hold
// trace, loudest first. Peak frequencies are refined by fitting a
// parabola through the winning bin and its neighbors.
func (a *Analyzer) Peaks(n int) []Peak {
	if !a.ready || n <= 0 {
		return nil
	}
	binHz := a.BinWidth()
	var found []Peak
	for k := 1; k < len(a.peakDB)-1; k++ {
		d := a.peakDB[k]
		if d <= a.peakDB[k-1] || d < a.peakDB[k+1] || d <= minDB+1 {
			continue
		}
		delta := 0.0
		if denom := a.peakDB[k-1] - 2*d + a.peakDB[k+1]; denom != 0 {
			delta = clamp(0.5*(a.peakDB[k-1]-a.peakDB[k+1])/denom, -0.5, 0.5)
		}
		found = append(found, Peak{Frequency: (float64(k) + delta) * binHz, DB: d})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].DB > found[j].DB })
	if len(found) > n {
		found = found[:n]
	}
	return found
}

// Reset clears the ring, both spectra, and the DC blocker.
func (a *Analyzer) Reset() {
	for i := range a.ring {
		a.ring[i] = 0
	}
	a.write = 0
	a.filled = 0
	a.toHop = 0
	a.ready = false
	a.dc.Reset()
	a.clearSpectra()
}

func (a *Analyzer) clearSpectra() {
	for i := range a.db {
		a.db[i] = minDB
		a.peakDB[i] = minDB
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
