package stream

// An Animation implements a way to render a specific animation. The
// fraction is the position within the current cycle of the animator that
// drives it, in [0, 1].
type Animation interface {
	CalculateFrame(fraction float64) *Frame
}

// AnimationFunc adapts a function to Animation.
type AnimationFunc func(fraction float64) *Frame

// CalculateFrame calls f(fraction).
func (f AnimationFunc) CalculateFrame(fraction float64) *Frame {
	return f(fraction)
}
