package interpolate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fogleman/ease"
)

// Named curves from github.com/fogleman/ease. Several of them (Back,
// Elastic) overshoot [0, 1]. Animators clamp after warping; key frames
// extrapolate.
var eases = map[string]func(float64) float64{
	"Linear":       ease.Linear,
	"InQuad":       ease.InQuad,
	"OutQuad":      ease.OutQuad,
	"InOutQuad":    ease.InOutQuad,
	"InCubic":      ease.InCubic,
	"OutCubic":     ease.OutCubic,
	"InOutCubic":   ease.InOutCubic,
	"InQuart":      ease.InQuart,
	"OutQuart":     ease.OutQuart,
	"InOutQuart":   ease.InOutQuart,
	"InQuint":      ease.InQuint,
	"OutQuint":     ease.OutQuint,
	"InOutQuint":   ease.InOutQuint,
	"InSine":       ease.InSine,
	"OutSine":      ease.OutSine,
	"InOutSine":    ease.InOutSine,
	"InExpo":       ease.InExpo,
	"OutExpo":      ease.OutExpo,
	"InOutExpo":    ease.InOutExpo,
	"InCirc":       ease.InCirc,
	"OutCirc":      ease.OutCirc,
	"InOutCirc":    ease.InOutCirc,
	"InElastic":    ease.InElastic,
	"OutElastic":   ease.OutElastic,
	"InOutElastic": ease.InOutElastic,
	"InBack":       ease.InBack,
	"OutBack":      ease.OutBack,
	"InOutBack":    ease.InOutBack,
	"InBounce":     ease.InBounce,
	"OutBounce":    ease.OutBounce,
	"InOutBounce":  ease.InOutBounce,
}

type named struct {
	name string
	fn   func(float64) float64
}

func (n named) Interpolate(fraction float64) float64 { return n.fn(fraction) }

func (n named) String() string { return n.name }

// Ease returns the fogleman/ease curve with the given name, e.g. "InOutQuad".
func Ease(name string) (Interpolator, bool) {
	fn, ok := eases[name]
	if !ok {
		return nil, false
	}
	return named{name: name, fn: fn}, true
}

// EaseNames lists the curves accepted by Ease, sorted.
func EaseNames() []string {
	names := make([]string, 0, len(eases))
	for name := range eases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse builds an interpolator from a textual description. Accepted forms:
//
//	linear
//	discrete
//	spline x1 y1 x2 y2
//	accelerate accel decel
//	<ease curve name>   (e.g. InOutQuad)
func Parse(s string) (Interpolator, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Linear, nil
	}

	args := make([]float64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidParameter, s, err)
		}
		args = append(args, v)
	}

	switch strings.ToLower(fields[0]) {
	case "linear":
		return Linear, nil
	case "discrete":
		return Discrete, nil
	case "spline":
		if len(args) != 4 {
			return nil, fmt.Errorf("%w: %q: spline needs 4 control values", ErrInvalidParameter, s)
		}
		sp, err := NewSplineInterpolator(args[0], args[1], args[2], args[3])
		if err != nil {
			return nil, err
		}
		return sp, nil
	case "accelerate", "acceleration":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %q: accelerate needs accel and decel", ErrInvalidParameter, s)
		}
		ac, err := NewAccelerationInterpolator(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return ac, nil
	}

	if i, ok := Ease(fields[0]); ok && len(args) == 0 {
		return i, nil
	}
	return nil, fmt.Errorf("%w: unknown interpolator %q", ErrInvalidParameter, s)
}
