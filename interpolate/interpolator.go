// Package interpolate provides the fraction warps used by animators and
// key frames.
//
// An Interpolator maps a linear time fraction in [0, 1] to an eased
// fraction. The package ships the closed-form interpolators (Linear,
// Discrete, AccelerationInterpolator), an iterative cubic-Bezier
// SplineInterpolator, adapters for the github.com/fogleman/ease curves and a
// sampled LookupInterpolator.
package interpolate

// An Interpolator warps a time fraction in [0, 1].
type Interpolator interface {
	Interpolate(fraction float64) float64
}

// Func adapts an ordinary function to the Interpolator interface.
type Func func(fraction float64) float64

// Interpolate calls f(fraction).
func (f Func) Interpolate(fraction float64) float64 {
	return f(fraction)
}

type linear struct{}

func (linear) Interpolate(fraction float64) float64 { return fraction }

func (linear) String() string { return "linear" }

type discrete struct{}

// Interpolate snaps to 0 for the whole segment and only reaches 1 at the
// very end.
func (discrete) Interpolate(fraction float64) float64 {
	if fraction < 1 {
		return 0
	}
	return 1
}

func (discrete) String() string { return "discrete" }

// Linear is the identity interpolator.
var Linear Interpolator = linear{}

// Discrete produces a step function that jumps at fraction 1.
var Discrete Interpolator = discrete{}

// Clamp limits value to [0, 1].
func Clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
