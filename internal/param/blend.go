package param

// Blendable is implemented by config types whose fields interpolate
// linearly, so four presets can be morphed across a two-axis pad.
type Blendable[T any] interface {
	Lerp(other T, t float64) T
}

// Blender holds four corner presets on a unit square and produces the
// bilinear mix at any position inside it.
type Blender[T Blendable[T]] struct {
	bottomLeft  T
	bottomRight T
	topLeft     T
	topRight    T
}

// NewBlender returns a blender over the four corner presets.
func NewBlender[T Blendable[T]](bottomLeft, bottomRight, topLeft, topRight T) *Blender[T] {
	return &Blender[T]{
		bottomLeft:  bottomLeft,
		bottomRight: bottomRight,
		topLeft:     topLeft,
		topRight:    topRight,
	}
}

// Blend returns the preset at (x, y) with (0, 0) at the bottom left
// corner. Positions outside the unit square clamp to its edge.
func (b *Blender[T]) Blend(x, y float64) T {
	x = clamp(x, 0, 1)
	y = clamp(y, 0, 1)
	bottom := b.bottomLeft.Lerp(b.bottomRight, x)
	top := b.topLeft.Lerp(b.topRight, x)
	return bottom.Lerp(top, y)
}

// Lerp linearly interpolates from a to b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
