package param

import "math"

// Velocity curve steepness presets. DefaultSteepness shapes amplitude
// response; PitchSteepness is the harder curve used when velocity
// drives pitch-related parameters.
const (
	DefaultSteepness = 1.0
	PitchSteepness   = 2.0
)

// ShapeVelocity bends a velocity in [0, 1] so that quiet hits keep
// resolution while hard hits saturate early. Steepness 0 is linear;
// larger values push more of the range toward full scale.
func ShapeVelocity(velocity, steepness float64) float64 {
	v := clamp(velocity, 0, 1)
	return 1 - math.Pow(1-v, 1+steepness*(1-v*0.5))
}
