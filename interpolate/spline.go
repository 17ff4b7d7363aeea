package interpolate

import (
	"fmt"
	"math"
)

// SplineInterpolator follows a cubic Bezier curve running from (0,0) to
// (1,1) with control points (X1,Y1) and (X2,Y2), like CSS cubic-bezier().
type SplineInterpolator struct {
	X1, Y1, X2, Y2 float64
}

// NewSplineInterpolator validates the control points, which must all lie
// within [0, 1].
func NewSplineInterpolator(x1, y1, x2, y2 float64) (*SplineInterpolator, error) {
	for _, v := range []float64{x1, y1, x2, y2} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: spline control points must lie in [0,1], got (%g,%g) (%g,%g)",
				ErrInvalidParameter, x1, y1, x2, y2)
		}
	}
	return &SplineInterpolator{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// MustSpline is like NewSplineInterpolator but panics on invalid control
// points. Use it for package-level curve definitions.
func MustSpline(x1, y1, x2, y2 float64) *SplineInterpolator {
	s, err := NewSplineInterpolator(x1, y1, x2, y2)
	if err != nil {
		panic(err)
	}
	return s
}

// Interpolate solves x(u) = fraction for u and returns y(u).
func (s *SplineInterpolator) Interpolate(fraction float64) float64 {
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 1
	}

	u := fraction
	// Newton-Raphson converges quickly for most values.
	for range 8 {
		x := bezier(s.X1, s.X2, u) - fraction
		if math.Abs(x) < 1e-7 {
			return Clamp(bezier(s.Y1, s.Y2, Clamp(u)))
		}
		dx := bezierDerivative(s.X1, s.X2, u)
		if math.Abs(dx) < 1e-7 {
			break
		}
		u -= x / dx
	}

	// Fall back to bisection, which always stays inside [0,1].
	lo, hi := 0.0, 1.0
	u = Clamp(u)
	for range 32 {
		x := bezier(s.X1, s.X2, u) - fraction
		if math.Abs(x) < 1e-7 {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return Clamp(bezier(s.Y1, s.Y2, u))
}

func (s *SplineInterpolator) String() string {
	return fmt.Sprintf("spline %g %g %g %g", s.X1, s.Y1, s.X2, s.Y2)
}

func bezier(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}
