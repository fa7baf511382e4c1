package gen

import "math"

// SegmentCurve bends linear progress through a segment. The curve argument
// runs from -1 to 1: zero is linear, positive values start slow and finish
// fast, negative values do most of the travel early. The shape matches the
// curve~ interpolation familiar from Max patches, so envelope tables tuned
// there carry over directly.
func SegmentCurve(progress, curve float64) float64 {
	progress = clamp(progress, 0, 1)
	if math.Abs(curve) < 1e-6 {
		return progress
	}
	if curve < 0 {
		return 1 - SegmentCurve(1-progress, -curve)
	}
	hp := math.Pow((curve+1e-20)*1.2, 0.41) * 0.91
	fp := hp / (1 - hp)
	if math.Abs(fp) < 1e-6 {
		return progress
	}
	return math.Expm1(fp*progress) / math.Expm1(fp)
}

// Segment is one leg of a SegmentEnvelope: ramp to Target over Duration
// seconds, bent by Curve.
type Segment struct {
	Target   float64
	Duration float64
	Curve    float64
}

// Seg builds a segment from a duration in milliseconds, mirroring the
// (target, time, curve) triple convention of curve~ tables.
func Seg(target, durationMS, curve float64) Segment {
	return Segment{Target: target, Duration: durationMS / 1000.0, Curve: curve}
}

// SegmentEnvelope chains curved ramps end to end. Unlike Envelope it has no
// sustain concept: it runs its segments once and holds the final value.
type SegmentEnvelope struct {
	segments     []Segment
	index        int
	segmentStart float64
	startValue   float64
	current      float64
	initial      float64
	active       bool
}

func NewSegmentEnvelope(segments ...Segment) SegmentEnvelope {
	return SegmentEnvelope{segments: segments}
}

// SetSegments replaces the segment table. The next Trigger runs the new
// table from the initial value.
func (e *SegmentEnvelope) SetSegments(segments ...Segment) {
	e.segments = segments
}

// SetInitial sets the value the envelope starts from on the next Trigger.
func (e *SegmentEnvelope) SetInitial(value float64) {
	e.initial = value
}

func (e *SegmentEnvelope) Trigger(now float64) {
	e.active = true
	e.index = 0
	e.segmentStart = now
	e.startValue = e.initial
	e.current = e.initial
}

// Value evaluates the envelope at the given time, advancing through
// segments as their durations elapse.
func (e *SegmentEnvelope) Value(now float64) float64 {
	if !e.active {
		return e.current
	}
	for {
		if e.index >= len(e.segments) {
			e.active = false
			return e.current
		}
		seg := e.segments[e.index]
		elapsed := now - e.segmentStart
		if elapsed >= seg.Duration {
			e.startValue = seg.Target
			e.current = seg.Target
			e.segmentStart += seg.Duration
			e.index++
			continue
		}
		progress := 1.0
		if seg.Duration > 0 {
			progress = elapsed / seg.Duration
		}
		e.current = e.startValue + (seg.Target-e.startValue)*SegmentCurve(progress, seg.Curve)
		return e.current
	}
}

// Complete reports whether every segment has finished.
func (e *SegmentEnvelope) Complete() bool {
	return !e.active && e.index >= len(e.segments)
}
