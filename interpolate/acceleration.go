package interpolate

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when an interpolator is constructed with
// out-of-range parameters.
var ErrInvalidParameter = errors.New("interpolate: invalid parameter")

// AccelerationInterpolator ramps speed up over the first Accel share of the
// cycle, runs at constant speed, then ramps down over the last Decel share.
// The area under the speed curve is normalised so the output still spans
// [0, 1].
type AccelerationInterpolator struct {
	Accel, Decel float64
}

// NewAccelerationInterpolator requires accel and decel in [0,1] with
// accel+decel <= 1.
func NewAccelerationInterpolator(accel, decel float64) (*AccelerationInterpolator, error) {
	if accel < 0 || accel > 1 || decel < 0 || decel > 1 || accel+decel > 1 {
		return nil, fmt.Errorf("%w: acceleration %g and deceleration %g must be in [0,1] and sum to at most 1",
			ErrInvalidParameter, accel, decel)
	}
	return &AccelerationInterpolator{Accel: accel, Decel: decel}, nil
}

// Interpolate applies the speed ramp.
func (a *AccelerationInterpolator) Interpolate(fraction float64) float64 {
	accel, decel := a.Accel, a.Decel
	runRate := 1 / (1 - accel/2 - decel/2)

	var out float64
	switch {
	case fraction < accel:
		out = runRate * (fraction / accel / 2) * fraction
	case fraction > 1-decel:
		t := fraction - (1 - decel)
		p := t / decel
		out = runRate * (1 - accel/2 - decel + t*(2-p)/2)
	default:
		out = runRate * (fraction - accel/2)
	}
	return Clamp(out)
}

func (a *AccelerationInterpolator) String() string {
	return fmt.Sprintf("accelerate %g %g", a.Accel, a.Decel)
}
