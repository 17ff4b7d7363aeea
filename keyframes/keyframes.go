// Package keyframes evaluates piecewise curves over typed values.
//
// A KeyFrames[T] is an immutable list of frames, each holding a value and a
// time fraction. Frame 0 sits at fraction 0 and the last frame at 1. Each
// segment between two frames is shaped by the interpolator of its ending
// frame and blended by an Evaluator[T]:
//
//	kf, err := keyframes.NewBuilder(1).AddFrame(100).Build()
//	kf.Evaluate(0.5) // 50
package keyframes

import (
	"errors"
	"fmt"
	"sort"

	"github.com/matt-g-everett/ledtiming/interpolate"
)

var (
	// ErrTooFewFrames is returned when fewer than two frames are supplied.
	ErrTooFewFrames = errors.New("keyframes: at least two frames are required")
	// ErrNilValue is returned when a frame value is a nil pointer, interface,
	// map, slice, channel or function.
	ErrNilValue = errors.New("keyframes: frame value is nil")
	// ErrNotIncreasing is returned when time fractions do not strictly increase.
	ErrNotIncreasing = errors.New("keyframes: time fractions must strictly increase")
	// ErrNoEvaluator is returned when no evaluator is known for the value type.
	ErrNoEvaluator = errors.New("keyframes: no evaluator for value type")
	// ErrSegmentCount is returned when the number of segment interpolators
	// does not equal the number of segments.
	ErrSegmentCount = errors.New("keyframes: segment interpolator count mismatch")
)

// Frame is one anchor of a KeyFrames curve. Interpolator shapes the segment
// ending at this frame and is nil for frame 0.
type Frame[T any] struct {
	Value        T
	TimeFraction float64
	Interpolator interpolate.Interpolator
}

func (f Frame[T]) String() string {
	return fmt.Sprintf("%v@%g", f.Value, f.TimeFraction)
}

// KeyFrames is an immutable curve. It is safe for concurrent use.
type KeyFrames[T any] struct {
	frames    []Frame[T]
	evaluator Evaluator[T]
}

// Size returns the number of frames.
func (k *KeyFrames[T]) Size() int {
	return len(k.frames)
}

// Frame returns frame i.
func (k *KeyFrames[T]) Frame(i int) Frame[T] {
	return k.frames[i]
}

// Frames returns a copy of all frames.
func (k *KeyFrames[T]) Frames() []Frame[T] {
	out := make([]Frame[T], len(k.frames))
	copy(out, k.frames)
	return out
}

// FrameIndexAt returns the index of the frame that ends the segment
// containing fraction, or 0 when fraction is at or before the start.
func (k *KeyFrames[T]) FrameIndexAt(fraction float64) int {
	fraction = interpolate.Clamp(fraction)
	if fraction <= 0 {
		return 0
	}
	i := sort.Search(len(k.frames), func(i int) bool {
		return k.frames[i].TimeFraction >= fraction
	})
	if i >= len(k.frames) {
		i = len(k.frames) - 1
	}
	return i
}

// Evaluate returns the curve's value at fraction, which is clamped to
// [0, 1].
func (k *KeyFrames[T]) Evaluate(fraction float64) T {
	i := k.FrameIndexAt(fraction)
	if i == 0 {
		return k.frames[0].Value
	}
	fraction = interpolate.Clamp(fraction)

	prev, cur := k.frames[i-1], k.frames[i]
	t := (fraction - prev.TimeFraction) / (cur.TimeFraction - prev.TimeFraction)
	t = cur.Interpolator.Interpolate(t)
	return k.evaluator(prev.Value, cur.Value, t)
}
