// Package timing turns the ticks of a TimingSource into animation
// callbacks.
//
// An Animator converts elapsed time into a fraction in [0, 1] for each
// cycle, taking into account its duration, start delay, repeat count,
// repeat behavior, end behavior and interpolator. The fraction and the
// begin, end, repeat and reverse lifecycle events go to an ordered list of
// TimingTargets.
//
//	a, err := timing.NewBuilder().
//		TimingSource(src).
//		Duration(2 * time.Second).
//		RepeatCount(timing.InfiniteRepeat).
//		AddTarget(target).
//		Build()
//	a.Start()
//
// Control methods may be called from any goroutine, including from inside
// a target callback.
package timing

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/matt-g-everett/ledtiming/interpolate"
)

type eventKind int

const (
	eventBegin eventKind = iota
	eventEnd
	eventRepeat
	eventReverse
	eventTiming
)

func (k eventKind) String() string {
	switch k {
	case eventBegin:
		return "Begin"
	case eventEnd:
		return "End"
	case eventRepeat:
		return "Repeat"
	case eventReverse:
		return "Reverse"
	default:
		return "TimingEvent"
	}
}

// event is a callback waiting to be delivered to a snapshot of targets.
type event struct {
	kind     eventKind
	fraction float64
	targets  []TimingTarget
}

type animatorTicker struct {
	a *Animator
}

func (t *animatorTicker) TimingSourceTick(_ TimingSource, nanoTime int64) {
	t.a.tick(nanoTime)
}

// Animator is the animation state machine. Create one with a Builder. An
// animator can be started again once it is idle, but one run must finish
// before the next starts.
type Animator struct {
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
	ticker         *animatorTicker

	mu   sync.Mutex
	idle *sync.Cond
	// targets is copy-on-write; a published slice is never modified.
	targets    []TimingTarget
	state      State
	direction  Direction
	startTime  int64
	cycleStart int64
	pauseBegin int64
	lastTick   int64
	ticked     bool
	reversals  int
	pending    []event
	draining   bool
}

// Start runs the animation from the builder's start direction. It returns
// ErrInvalidState unless the animator is idle. Begin is delivered before
// Start returns.
func (a *Animator) Start() error {
	return a.start(a.startDirection)
}

// StartReverse is like Start but runs in the opposite direction.
func (a *Animator) StartReverse() error {
	return a.start(a.startDirection.Opposite())
}

func (a *Animator) start(dir Direction) error {
	a.mu.Lock()
	if a.state != Idle {
		state := a.state
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}

	now := a.source.Nanos()
	a.state = Running
	a.direction = dir
	a.startTime = now + int64(a.startDelay)
	a.cycleStart = a.startTime
	a.ticked = false
	a.reversals = 0
	a.source.AddTickListener(a.ticker)
	a.enqueue(eventBegin, 0)
	a.mu.Unlock()

	a.drain()
	return nil
}

// Stop ends a running or paused animation and delivers End. It reports
// false, doing nothing, when the animator is already idle.
//
// End is delivered before Stop returns unless another goroutine is in the
// middle of delivering callbacks for this animator; that goroutine then
// delivers End right after its current batch. Use StopAndAwait to wait for
// delivery in every case.
func (a *Animator) Stop() bool {
	return a.halt(true)
}

// Cancel is like Stop but does not deliver End.
func (a *Animator) Cancel() bool {
	return a.halt(false)
}

func (a *Animator) halt(notify bool) bool {
	a.mu.Lock()
	if a.state == Idle {
		a.mu.Unlock()
		return false
	}
	a.finish()
	if notify {
		a.enqueue(eventEnd, 0)
	}
	a.mu.Unlock()

	if a.disposeOnEnd {
		a.source.Dispose()
	}
	a.drain()
	return true
}

// StopAndAwait stops the animator and waits until every queued callback
// has been delivered. It must not be called from a target callback.
func (a *Animator) StopAndAwait() bool {
	stopped := a.Stop()
	a.Await()
	return stopped
}

// Await blocks until the animator is idle and every queued callback has
// been delivered. It must not be called from a target callback.
func (a *Animator) Await() {
	a.mu.Lock()
	for a.state != Idle || a.draining || len(a.pending) > 0 {
		a.idle.Wait()
	}
	a.mu.Unlock()
}

// Pause freezes a running animation. It reports whether the animator was
// running.
func (a *Animator) Pause() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Running {
		return false
	}
	a.pauseBegin = a.source.Nanos()
	a.state = Paused
	return true
}

// Resume continues a paused animation from where it was paused. It
// reports whether the animator was paused.
func (a *Animator) Resume() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Paused {
		return false
	}
	delta := a.source.Nanos() - a.pauseBegin
	a.startTime += delta
	a.cycleStart += delta
	a.lastTick += delta
	a.state = Running
	return true
}

// ReverseNow flips the direction of a running animation at the next tick.
// Calls between two ticks cancel in pairs, so only an odd count reverses.
// It reports false, doing nothing, unless the animator is running, not
// paused, and has processed at least one tick since it started.
func (a *Animator) ReverseNow() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Running || !a.ticked {
		return false
	}
	a.reversals++
	return true
}

// AddTarget appends t to the target list. It takes effect from the next
// callback.
func (a *Animator) AddTarget(t TimingTarget) {
	if t == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	targets := make([]TimingTarget, len(a.targets), len(a.targets)+1)
	copy(targets, a.targets)
	a.targets = append(targets, t)
}

// RemoveTarget removes the first occurrence of t. It reports whether t was
// registered. Targets are matched with ==, so a target whose dynamic type
// is not comparable, such as a struct value holding a slice, can never be
// removed; register a pointer instead.
func (a *Animator) RemoveTarget(t TimingTarget) bool {
	if t == nil || !reflect.TypeOf(t).Comparable() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, existing := range a.targets {
		if existing == t {
			targets := make([]TimingTarget, 0, len(a.targets)-1)
			targets = append(targets, a.targets[:i]...)
			a.targets = append(targets, a.targets[i+1:]...)
			return true
		}
	}
	return false
}

// Targets returns the registered targets in dispatch order.
func (a *Animator) Targets() []TimingTarget {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]TimingTarget(nil), a.targets...)
}

// State returns the lifecycle state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// IsRunning reports whether the animator is running or paused.
func (a *Animator) IsRunning() bool {
	return a.State() != Idle
}

// IsPaused reports whether the animator is paused.
func (a *Animator) IsPaused() bool {
	return a.State() == Paused
}

// Direction returns the current direction, including reversals that will
// be applied at the next tick.
func (a *Animator) Direction() Direction {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reversals%2 != 0 {
		return a.direction.Opposite()
	}
	return a.direction
}

func (a *Animator) Duration() time.Duration                { return a.duration }
func (a *Animator) StartDelay() time.Duration              { return a.startDelay }
func (a *Animator) RepeatCount() float64                   { return a.repeatCount }
func (a *Animator) RepeatBehavior() RepeatBehavior         { return a.repeatBehavior }
func (a *Animator) EndBehavior() EndBehavior               { return a.endBehavior }
func (a *Animator) Interpolator() interpolate.Interpolator { return a.interpolator }
func (a *Animator) StartDirection() Direction              { return a.startDirection }
func (a *Animator) TimingSource() TimingSource             { return a.source }
func (a *Animator) DisposeTimingSourceOnEnd() bool         { return a.disposeOnEnd }

func (a *Animator) String() string {
	return fmt.Sprintf("Animator(%s %s duration=%v repeat=%g)", a.State(), a.Direction(), a.duration, a.repeatCount)
}

func (a *Animator) tick(now int64) {
	a.mu.Lock()
	finished := a.advance(now)
	a.mu.Unlock()

	if finished && a.disposeOnEnd {
		a.source.Dispose()
	}
	a.drain()
}

// advance runs the fraction computation for one tick. It reports whether
// the animation finished. Callers hold a.mu.
func (a *Animator) advance(now int64) bool {
	if a.state != Running || now-a.startTime < 0 {
		return false
	}

	if a.reversals%2 != 0 {
		a.mirror()
		a.enqueue(eventReverse, 0)
	}
	a.reversals = 0
	a.ticked = true
	a.lastTick = now

	if a.duration == InfiniteDuration {
		a.enqueue(eventTiming, a.warp(directional(0, a.direction)))
		return false
	}

	d := int64(a.duration)
	total := now - a.startTime
	elapsed := now - a.cycleStart

	if a.repeatCount != InfiniteRepeat && float64(total)/float64(d) >= a.repeatCount {
		var fraction float64
		if a.endBehavior == Hold {
			fraction = a.holdFraction(elapsed)
		}
		a.finish()
		a.enqueue(eventTiming, a.warp(fraction))
		a.enqueue(eventEnd, 0)
		return true
	}

	if elapsed > d {
		crossed := elapsed / d
		elapsed %= d
		a.cycleStart = now - elapsed
		if a.repeatBehavior == Reverse && crossed%2 == 1 {
			a.direction = a.direction.Opposite()
		}
		a.enqueue(eventRepeat, 0)
	}

	a.enqueue(eventTiming, a.warp(directional(float64(elapsed)/float64(d), a.direction)))
	return false
}

// mirror reflects the current cycle around the last processed tick so that
// the fraction is continuous and now moves the other way. The start time
// shifts by the same amount, keeping the remaining run time consistent.
// Callers hold a.mu.
func (a *Animator) mirror() {
	a.direction = a.direction.Opposite()
	if a.duration == InfiniteDuration {
		return
	}
	d := int64(a.duration)
	elapsed := a.lastTick - a.cycleStart
	shift := (d - elapsed) - elapsed
	a.cycleStart -= shift
	a.startTime -= shift
}

// holdFraction is the position a finished HOLD animation rests at. An
// integral repeat count ends on the boundary the current direction was
// heading for; a partial last cycle stops where the cycle clock reads,
// elapsed being measured before any boundary is folded away. Callers hold
// a.mu.
func (a *Animator) holdFraction(elapsed int64) float64 {
	if a.repeatCount == math.Trunc(a.repeatCount) {
		return directional(1, a.direction)
	}
	return directional(math.Min(1, float64(elapsed)/float64(a.duration)), a.direction)
}

func directional(fraction float64, dir Direction) float64 {
	fraction = interpolate.Clamp(fraction)
	if dir == Backward {
		return 1 - fraction
	}
	return fraction
}

func (a *Animator) warp(fraction float64) float64 {
	return interpolate.Clamp(a.interpolator.Interpolate(fraction))
}

// finish moves to Idle. Callers hold a.mu.
func (a *Animator) finish() {
	a.state = Idle
	a.reversals = 0
	a.source.RemoveTickListener(a.ticker)
	a.idle.Broadcast()
}

// enqueue queues a callback for the current targets. Callers hold a.mu.
func (a *Animator) enqueue(kind eventKind, fraction float64) {
	a.pending = append(a.pending, event{kind: kind, fraction: fraction, targets: a.targets})
}

// drain delivers queued callbacks in order. Only one goroutine drains at a
// time; a call made while another drain is in progress returns at once and
// leaves its events to that drain.
func (a *Animator) drain() {
	a.mu.Lock()
	if a.draining {
		a.mu.Unlock()
		return
	}
	a.draining = true
	for len(a.pending) > 0 {
		ev := a.pending[0]
		a.pending[0] = event{}
		a.pending = a.pending[1:]
		a.mu.Unlock()
		for _, t := range ev.targets {
			a.deliver(t, ev)
		}
		a.mu.Lock()
	}
	a.pending = nil
	a.draining = false
	a.idle.Broadcast()
	a.mu.Unlock()
}

func (a *Animator) deliver(t TimingTarget, ev event) {
	defer func() {
		if r := recover(); r != nil {
			a.errorHandler.HandleTargetError(&TargetError{
				Op:         ev.kind.String(),
				Target:     t,
				Value:      r,
				StackTrace: captureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()

	switch ev.kind {
	case eventBegin:
		t.Begin(a)
	case eventEnd:
		t.End(a)
	case eventRepeat:
		t.Repeat(a)
	case eventReverse:
		t.Reverse(a)
	case eventTiming:
		t.TimingEvent(a, ev.fraction)
	}
}
