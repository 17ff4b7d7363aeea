package timing

// A TimingTarget receives the lifecycle and progress callbacks of an
// Animator. Timing events and repeats arrive on the tick goroutine of the
// animator's TimingSource. Begin is delivered from Start and StartReverse,
// and End from Stop, on the caller's goroutine. Callbacks for one animator
// never run concurrently.
//
// Targets are compared with == by RemoveTarget, so they must be comparable;
// pointer types are the usual choice.
type TimingTarget interface {
	// Begin is called when the animator starts.
	Begin(source *Animator)
	// End is called when the animator finishes or is stopped.
	End(source *Animator)
	// Repeat is called when a cycle boundary is crossed.
	Repeat(source *Animator)
	// Reverse is called when ReverseNow takes effect.
	Reverse(source *Animator)
	// TimingEvent reports the current fraction, always in [0, 1].
	TimingEvent(source *Animator, fraction float64)
}

// TimingTargetAdapter implements every TimingTarget method as a no-op.
// Embed it and override the callbacks you need.
type TimingTargetAdapter struct{}

func (TimingTargetAdapter) Begin(*Animator)                {}
func (TimingTargetAdapter) End(*Animator)                  {}
func (TimingTargetAdapter) Repeat(*Animator)               {}
func (TimingTargetAdapter) Reverse(*Animator)              {}
func (TimingTargetAdapter) TimingEvent(*Animator, float64) {}

// TargetFuncs adapts optional callback functions to TimingTarget. Use it by
// pointer so that it can be removed again.
type TargetFuncs struct {
	OnBegin       func(a *Animator)
	OnEnd         func(a *Animator)
	OnRepeat      func(a *Animator)
	OnReverse     func(a *Animator)
	OnTimingEvent func(a *Animator, fraction float64)
}

func (t *TargetFuncs) Begin(a *Animator) {
	if t.OnBegin != nil {
		t.OnBegin(a)
	}
}

func (t *TargetFuncs) End(a *Animator) {
	if t.OnEnd != nil {
		t.OnEnd(a)
	}
}

func (t *TargetFuncs) Repeat(a *Animator) {
	if t.OnRepeat != nil {
		t.OnRepeat(a)
	}
}

func (t *TargetFuncs) Reverse(a *Animator) {
	if t.OnReverse != nil {
		t.OnReverse(a)
	}
}

func (t *TargetFuncs) TimingEvent(a *Animator, fraction float64) {
	if t.OnTimingEvent != nil {
		t.OnTimingEvent(a, fraction)
	}
}
