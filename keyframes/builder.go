package keyframes

import (
	"fmt"
	"math"
	"reflect"

	"github.com/matt-g-everett/ledtiming/interpolate"
)

// Builder collects frames for a KeyFrames. Frames added without a time
// fraction are spread evenly between their nearest explicit neighbours; the
// first and last fractions are always coerced to 0 and 1.
type Builder[T any] struct {
	frames    []Frame[T]
	inferred  []bool
	def       interpolate.Interpolator
	segments  []interpolate.Interpolator
	evaluator Evaluator[T]
	registry  *Registry
}

// NewBuilder starts a curve whose first value is first.
func NewBuilder[T any](first T) *Builder[T] {
	b := &Builder[T]{registry: DefaultRegistry}
	return b.AddFrameAt(first, 0)
}

// AddFrame appends a frame with an inferred time fraction.
func (b *Builder[T]) AddFrame(value T) *Builder[T] {
	return b.add(value, 0, true, nil)
}

// AddFrames appends several frames with inferred time fractions.
func (b *Builder[T]) AddFrames(values ...T) *Builder[T] {
	for _, v := range values {
		b.AddFrame(v)
	}
	return b
}

// AddFrameAt appends a frame at the given time fraction.
func (b *Builder[T]) AddFrameAt(value T, timeFraction float64) *Builder[T] {
	return b.AddFrameAtWith(value, timeFraction, nil)
}

// AddFrameWith appends a frame whose incoming segment uses i.
func (b *Builder[T]) AddFrameWith(value T, i interpolate.Interpolator) *Builder[T] {
	return b.add(value, 0, true, i)
}

// AddFrameAtWith appends a frame at the given time fraction whose incoming
// segment uses i. A nil i falls back to the builder default.
func (b *Builder[T]) AddFrameAtWith(value T, timeFraction float64, i interpolate.Interpolator) *Builder[T] {
	return b.add(value, timeFraction, false, i)
}

func (b *Builder[T]) add(value T, timeFraction float64, inferred bool, i interpolate.Interpolator) *Builder[T] {
	b.frames = append(b.frames, Frame[T]{Value: value, TimeFraction: timeFraction, Interpolator: i})
	b.inferred = append(b.inferred, inferred)
	return b
}

// SetInterpolator sets the interpolator for frames added without one.
// Linear is used when no default is set.
func (b *Builder[T]) SetInterpolator(i interpolate.Interpolator) *Builder[T] {
	b.def = i
	return b
}

// SetSegmentInterpolators assigns one interpolator per segment, in order.
// The count must equal the number of frames minus one when Build runs.
func (b *Builder[T]) SetSegmentInterpolators(i ...interpolate.Interpolator) *Builder[T] {
	b.segments = i
	return b
}

// SetEvaluator overrides registry lookup.
func (b *Builder[T]) SetEvaluator(e Evaluator[T]) *Builder[T] {
	b.evaluator = e
	return b
}

// SetRegistry makes Build resolve the evaluator from r instead of
// DefaultRegistry.
func (b *Builder[T]) SetRegistry(r *Registry) *Builder[T] {
	b.registry = r
	return b
}

// Build validates the frames and returns the curve.
func (b *Builder[T]) Build() (*KeyFrames[T], error) {
	n := len(b.frames)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewFrames, n)
	}
	if b.segments != nil && len(b.segments) != n-1 {
		return nil, fmt.Errorf("%w: %d interpolators for %d segments", ErrSegmentCount, len(b.segments), n-1)
	}

	evaluator := b.evaluator
	if evaluator == nil {
		var ok bool
		evaluator, ok = LookupIn[T](b.registry)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNoEvaluator, typeOf[T]())
		}
	}

	def := b.def
	if def == nil {
		def = interpolate.Linear
	}

	frames := make([]Frame[T], n)
	copy(frames, b.frames)
	for i := range frames {
		if isNil(frames[i].Value) {
			return nil, fmt.Errorf("%w: frame %d", ErrNilValue, i)
		}
		if i == 0 {
			frames[i].Interpolator = nil
			continue
		}
		if b.segments != nil && b.segments[i-1] != nil {
			frames[i].Interpolator = b.segments[i-1]
		}
		if frames[i].Interpolator == nil {
			frames[i].Interpolator = def
		}
	}

	frames[0].TimeFraction = 0
	frames[n-1].TimeFraction = 1
	inferFractions(frames, b.inferred)

	for i := 1; i < n; i++ {
		if math.IsNaN(frames[i].TimeFraction) || frames[i].TimeFraction <= frames[i-1].TimeFraction {
			return nil, fmt.Errorf("%w: frame %d at %g follows %g",
				ErrNotIncreasing, i, frames[i].TimeFraction, frames[i-1].TimeFraction)
		}
	}

	return &KeyFrames[T]{frames: frames, evaluator: evaluator}, nil
}

// inferFractions fills inferred fractions by spacing them evenly between
// the surrounding explicit ones. Both ends must already be set.
func inferFractions[T any](frames []Frame[T], inferred []bool) {
	last := 0
	for i := 1; i < len(frames); i++ {
		if inferred[i] && i < len(frames)-1 {
			continue
		}
		gap := i - last
		if gap > 1 {
			from, to := frames[last].TimeFraction, frames[i].TimeFraction
			for j := last + 1; j < i; j++ {
				frames[j].TimeFraction = from + (to-from)*float64(j-last)/float64(gap)
			}
		}
		last = i
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
