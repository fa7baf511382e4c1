package effects

import (
	"math"

	"github.com/drumkit-audio/drumkit-go/internal/param"
)

// Delay time ceiling in seconds; the line is allocated for this up
// front so time changes never reallocate on the audio goroutine.
const maxDelayTime = 5.0

// Delay is a feedback delay with a fractional read position. Time
// changes are smoothed over 50 ms and the read interpolates linearly
// between adjacent samples, so sweeping the time glides the pitch
// instead of clicking. Feedback and mix smooth over 30 ms.
type Delay struct {
	sampleRate float64

	buffer     []float64
	writeIndex int

	time     *param.Shared
	feedback *param.Shared
	mix      *param.Shared
}

// NewDelay creates a delay line. time is seconds in [0, 5], feedback
// in [0, 0.95], mix in [0, 1].
func NewDelay(sampleRate, time, feedback, mix float64) *Delay {
	return &Delay{
		sampleRate: sampleRate,
		buffer:     make([]float64, int(sampleRate*maxDelayTime)+1),
		time:       param.NewShared(clamp(time, 0, maxDelayTime), 0, maxDelayTime, 50, sampleRate),
		feedback:   param.NewShared(clamp(feedback, 0, 0.95), 0, 0.95, 30, sampleRate),
		mix:        param.NewShared(clamp(mix, 0, 1), 0, 1, 30, sampleRate),
	}
}

// SetTime sets the delay time in seconds. Safe from any goroutine.
func (d *Delay) SetTime(seconds float64) { d.time.Set(seconds) }

// SetFeedback sets the feedback amount in [0, 0.95]. Safe from any
// goroutine.
func (d *Delay) SetFeedback(fb float64) { d.feedback.Set(fb) }

// SetMix sets the wet/dry mix in [0, 1]. Safe from any goroutine.
func (d *Delay) SetMix(mix float64) { d.mix.Set(mix) }

func (d *Delay) Time() float64     { return d.time.Target() }
func (d *Delay) Feedback() float64 { return d.feedback.Target() }
func (d *Delay) Mix() float64      { return d.mix.Target() }

func (d *Delay) Process(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}

	time := d.time.Tick()
	feedback := d.feedback.Tick()
	mix := d.mix.Tick()

	delaySamples := time * d.sampleRate
	delayInt := int(delaySamples)
	delayFrac := delaySamples - float64(delayInt)

	n := len(d.buffer)
	read1 := (d.writeIndex + n - delayInt) % n
	read2 := (d.writeIndex + n - delayInt - 1) % n

	delayed := d.buffer[read1]*(1.0-delayFrac) + d.buffer[read2]*delayFrac

	write := x + delayed*feedback
	if math.Abs(write) < denormalThreshold {
		write = 0
	}
	if math.IsNaN(write) || math.IsInf(write, 0) {
		write = 0
	}
	d.buffer[d.writeIndex] = write
	d.writeIndex = (d.writeIndex + 1) % n

	out := x*(1.0-mix) + delayed*mix
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return x
	}
	return out
}

// Reset clears the delay line.
func (d *Delay) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writeIndex = 0
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
