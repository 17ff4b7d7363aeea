package keyframes

import (
	"image"
	"image/color"
	"reflect"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// An Evaluator blends two values. fraction has already been warped by the
// segment's interpolator and is normally in [0, 1], but overshooting
// interpolators may push it outside.
type Evaluator[T any] func(v0, v1 T, fraction float64) T

// Registry maps value types to evaluators. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[reflect.Type]any
}

// NewRegistry returns a registry pre-populated with the built-in evaluators.
func NewRegistry() *Registry {
	r := &Registry{evaluators: make(map[reflect.Type]any)}
	registerBuiltins(r)
	return r
}

// DefaultRegistry is consulted by builders that have no explicit evaluator.
var DefaultRegistry = NewRegistry()

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterIn installs e as the evaluator for T in r, replacing any previous
// one.
func RegisterIn[T any](r *Registry, e Evaluator[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[typeOf[T]()] = e
}

// LookupIn returns the evaluator for T in r.
func LookupIn[T any](r *Registry) (Evaluator[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.evaluators[typeOf[T]()]
	if !ok {
		return nil, false
	}
	return e.(Evaluator[T]), true
}

// Register installs e in DefaultRegistry.
func Register[T any](e Evaluator[T]) {
	RegisterIn(DefaultRegistry, e)
}

// Lookup queries DefaultRegistry.
func Lookup[T any]() (Evaluator[T], bool) {
	return LookupIn[T](DefaultRegistry)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Integer evaluators truncate toward zero.
func integer[T ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64](v0, v1 T, fraction float64) T {
	return T(lerp(float64(v0), float64(v1), fraction))
}

func float[T ~float32 | ~float64](v0, v1 T, fraction float64) T {
	return T(lerp(float64(v0), float64(v1), fraction))
}

// EvaluatePoint blends two image points component-wise.
func EvaluatePoint(v0, v1 image.Point, fraction float64) image.Point {
	return image.Point{
		X: integer(v0.X, v1.X, fraction),
		Y: integer(v0.Y, v1.Y, fraction),
	}
}

// EvaluateRectangle blends both corners of two rectangles.
func EvaluateRectangle(v0, v1 image.Rectangle, fraction float64) image.Rectangle {
	return image.Rectangle{
		Min: EvaluatePoint(v0.Min, v1.Min, fraction),
		Max: EvaluatePoint(v0.Max, v1.Max, fraction),
	}
}

func channel(a, b uint8, t float64) uint8 {
	v := lerp(float64(a), float64(b), t)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// EvaluateRGBA blends each channel of two colours.
func EvaluateRGBA(v0, v1 color.RGBA, fraction float64) color.RGBA {
	return color.RGBA{
		R: channel(v0.R, v1.R, fraction),
		G: channel(v0.G, v1.G, fraction),
		B: channel(v0.B, v1.B, fraction),
		A: channel(v0.A, v1.A, fraction),
	}
}

// EvaluateColor blends in the HCL space, which keeps perceived brightness
// steady across the transition.
func EvaluateColor(v0, v1 colorful.Color, fraction float64) colorful.Color {
	return v0.BlendHcl(v1, fraction)
}

func registerBuiltins(r *Registry) {
	RegisterIn(r, Evaluator[int](integer[int]))
	RegisterIn(r, Evaluator[int8](integer[int8]))
	RegisterIn(r, Evaluator[int16](integer[int16]))
	RegisterIn(r, Evaluator[int32](integer[int32]))
	RegisterIn(r, Evaluator[int64](integer[int64]))
	RegisterIn(r, Evaluator[uint8](integer[uint8]))
	RegisterIn(r, Evaluator[uint16](integer[uint16]))
	RegisterIn(r, Evaluator[uint32](integer[uint32]))
	RegisterIn(r, Evaluator[uint64](integer[uint64]))
	RegisterIn(r, Evaluator[time.Duration](integer[time.Duration]))
	RegisterIn(r, Evaluator[float32](float[float32]))
	RegisterIn(r, Evaluator[float64](float[float64]))
	RegisterIn(r, Evaluator[image.Point](EvaluatePoint))
	RegisterIn(r, Evaluator[image.Rectangle](EvaluateRectangle))
	RegisterIn(r, Evaluator[color.RGBA](EvaluateRGBA))
	RegisterIn(r, Evaluator[colorful.Color](EvaluateColor))
}
