package timing

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/matt-g-everett/ledtiming/interpolate"
)

// Defaults carries the values a Builder starts from. Applications usually
// keep one Defaults holding their shared TimingSource and pass it to every
// place that builds animators. Zero fields fall back to a one second,
// single cycle animation.
type Defaults struct {
	TimingSource   TimingSource
	Duration       time.Duration
	RepeatCount    float64
	RepeatBehavior RepeatBehavior
	EndBehavior    EndBehavior
	Interpolator   interpolate.Interpolator
	ErrorHandler   ErrorHandler
}

// NewBuilder returns a builder seeded from d.
func (d Defaults) NewBuilder() *Builder {
	b := &Builder{
		source:         d.TimingSource,
		duration:       d.Duration,
		repeatCount:    d.RepeatCount,
		repeatBehavior: d.RepeatBehavior,
		endBehavior:    d.EndBehavior,
		interpolator:   d.Interpolator,
		errorHandler:   d.ErrorHandler,
	}
	if b.duration == 0 {
		b.duration = time.Second
	}
	if b.repeatCount == 0 {
		b.repeatCount = 1
	}
	return b
}

// NewBuilder returns a builder with no TimingSource. One must be set before
// Build.
func NewBuilder() *Builder {
	return Defaults{}.NewBuilder()
}

// Builder configures an Animator. Values are validated by Build.
type Builder struct {
	source         TimingSource
	duration       time.Duration
	startDelay     time.Duration
	repeatCount    float64
	repeatBehavior RepeatBehavior
	endBehavior    EndBehavior
	interpolator   interpolate.Interpolator
	startDirection Direction
	disposeOnEnd   bool
	errorHandler   ErrorHandler
	targets        []TimingTarget
}

// TimingSource sets the source that drives the animator.
func (b *Builder) TimingSource(s TimingSource) *Builder {
	b.source = s
	return b
}

// Duration sets the length of one cycle. Use InfiniteDuration for a cycle
// that never ends.
func (b *Builder) Duration(d time.Duration) *Builder {
	b.duration = d
	return b
}

// StartDelay sets the time between Start and the first timing event.
func (b *Builder) StartDelay(d time.Duration) *Builder {
	b.startDelay = d
	return b
}

// RepeatCount sets the number of cycles. Fractional counts end part way
// through the last cycle. Use InfiniteRepeat to run until stopped.
func (b *Builder) RepeatCount(n float64) *Builder {
	b.repeatCount = n
	return b
}

// RepeatBehavior sets the direction handling at cycle boundaries.
func (b *Builder) RepeatBehavior(r RepeatBehavior) *Builder {
	b.repeatBehavior = r
	return b
}

// EndBehavior sets the final fraction policy.
func (b *Builder) EndBehavior(e EndBehavior) *Builder {
	b.endBehavior = e
	return b
}

// Interpolator warps every dispatched fraction. nil means linear.
func (b *Builder) Interpolator(i interpolate.Interpolator) *Builder {
	b.interpolator = i
	return b
}

// StartDirection sets the direction used by Start. StartReverse uses the
// opposite.
func (b *Builder) StartDirection(d Direction) *Builder {
	b.startDirection = d
	return b
}

// DisposeTimingSourceOnEnd makes the animator dispose its source when it
// stops. Only set it for a source the animator owns.
func (b *Builder) DisposeTimingSourceOnEnd(dispose bool) *Builder {
	b.disposeOnEnd = dispose
	return b
}

// ErrorHandler sets where target panics are reported. The default logs
// them with the standard logger.
func (b *Builder) ErrorHandler(h ErrorHandler) *Builder {
	b.errorHandler = h
	return b
}

// AddTarget registers targets in order.
func (b *Builder) AddTarget(targets ...TimingTarget) *Builder {
	b.targets = append(b.targets, targets...)
	return b
}

// Build validates the configuration and returns an idle Animator.
func (b *Builder) Build() (*Animator, error) {
	if b.source == nil {
		return nil, ErrNoTimingSource
	}
	if b.duration <= 0 && b.duration != InfiniteDuration {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, b.duration)
	}
	if b.startDelay < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStartDelay, b.startDelay)
	}
	if math.IsNaN(b.repeatCount) || math.IsInf(b.repeatCount, 0) ||
		(b.repeatCount <= 0 && b.repeatCount != InfiniteRepeat) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRepeatCount, b.repeatCount)
	}
	for i, t := range b.targets {
		if t == nil {
			return nil, fmt.Errorf("%w: target %d", ErrNilTarget, i)
		}
	}

	a := &Animator{
		source:         b.source,
		duration:       b.duration,
		startDelay:     b.startDelay,
		repeatCount:    b.repeatCount,
		repeatBehavior: b.repeatBehavior,
		endBehavior:    b.endBehavior,
		interpolator:   b.interpolator,
		startDirection: b.startDirection,
		disposeOnEnd:   b.disposeOnEnd,
		errorHandler:   b.errorHandler,
		targets:        append([]TimingTarget(nil), b.targets...),
	}
	if a.interpolator == nil {
		a.interpolator = interpolate.Linear
	}
	if a.errorHandler == nil {
		a.errorHandler = &LogHandler{}
	}
	a.idle = sync.NewCond(&a.mu)
	a.ticker = &animatorTicker{a: a}
	return a, nil
}
