package timing_test

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matt-g-everett/ledtiming/interpolate"
	"github.com/matt-g-everett/ledtiming/timing"
	"github.com/matt-g-everett/ledtiming/timing/source"
)

type recordingTarget struct {
	mu        sync.Mutex
	events    []string
	fractions []float64
	begins    int
	ends      int
	repeats   int
	reverses  int
}

func (r *recordingTarget) Begin(*timing.Animator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.begins++
	r.events = append(r.events, "begin")
}

func (r *recordingTarget) End(*timing.Animator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends++
	r.events = append(r.events, "end")
}

func (r *recordingTarget) Repeat(*timing.Animator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repeats++
	r.events = append(r.events, "repeat")
}

func (r *recordingTarget) Reverse(*timing.Animator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reverses++
	r.events = append(r.events, "reverse")
}

func (r *recordingTarget) TimingEvent(_ *timing.Animator, fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fractions = append(r.fractions, fraction)
	r.events = append(r.events, fmt.Sprintf("%.2f", fraction))
}

func (r *recordingTarget) lastFraction() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fractions) == 0 {
		return math.NaN()
	}
	return r.fractions[len(r.fractions)-1]
}

func (r *recordingTarget) counts() (begins, ends int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.begins, r.ends
}

func newManual(t *testing.T) *source.Manual {
	t.Helper()
	m := source.NewManual()
	if err := m.Init(); err != nil {
		t.Fatal(err)
	}
	return m
}

func build(t *testing.T, b *timing.Builder) *timing.Animator {
	t.Helper()
	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRunToCompletion(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(rec))

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if rec.begins != 1 {
		t.Fatalf("begin not delivered by Start")
	}
	m.Tick()
	for i := 0; i < 9; i++ {
		m.Step(100 * time.Millisecond)
	}
	if !a.IsRunning() {
		t.Fatal("animator finished early")
	}
	m.Step(100 * time.Millisecond)
	if a.IsRunning() {
		t.Fatal("animator still running after duration")
	}
	m.Step(100 * time.Millisecond)

	want := []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}
	if len(rec.fractions) != len(want) {
		t.Fatalf("fractions = %v", rec.fractions)
	}
	for i, w := range want {
		if !near(rec.fractions[i], w) {
			t.Errorf("fraction %d = %v, want %v", i, rec.fractions[i], w)
		}
	}
	if rec.begins != 1 || rec.ends != 1 {
		t.Errorf("begins=%d ends=%d, want 1/1", rec.begins, rec.ends)
	}
	if rec.events[len(rec.events)-1] != "end" {
		t.Errorf("last event = %q, want end", rec.events[len(rec.events)-1])
	}
}

func TestFractionBounds(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	overshoot, _ := interpolate.Ease("InOutBack")
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(70*time.Millisecond).
		RepeatCount(3.3).
		Interpolator(overshoot).
		AddTarget(rec))

	a.Start()
	for i := 0; i < 100 && a.IsRunning(); i++ {
		m.Step(7 * time.Millisecond)
	}
	if a.IsRunning() {
		t.Fatal("animator did not finish")
	}
	for i, f := range rec.fractions {
		if f < 0 || f > 1 {
			t.Errorf("fraction %d = %v out of [0,1]", i, f)
		}
	}
}

func TestStartWhileRunning(t *testing.T) {
	m := newManual(t)
	a := build(t, timing.NewBuilder().TimingSource(m))
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); !errors.Is(err, timing.ErrInvalidState) {
		t.Errorf("Start while running err = %v", err)
	}
	a.Pause()
	if err := a.StartReverse(); !errors.Is(err, timing.ErrInvalidState) {
		t.Errorf("StartReverse while paused err = %v", err)
	}
}

func TestStopAndCancel(t *testing.T) {
	tests := []struct {
		name     string
		halt     func(*timing.Animator) bool
		wantEnds int
	}{
		{"stop", (*timing.Animator).Stop, 1},
		{"cancel", (*timing.Animator).Cancel, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManual(t)
			rec := new(recordingTarget)
			a := build(t, timing.NewBuilder().TimingSource(m).AddTarget(rec))

			if tt.halt(a) {
				t.Error("halting an idle animator reported true")
			}
			a.Start()
			m.Step(100 * time.Millisecond)
			if !tt.halt(a) {
				t.Error("halting a running animator reported false")
			}
			if tt.halt(a) {
				t.Error("second halt reported true")
			}
			if rec.begins != 1 || rec.ends != tt.wantEnds {
				t.Errorf("begins=%d ends=%d, want 1/%d", rec.begins, rec.ends, tt.wantEnds)
			}

			n := len(rec.fractions)
			m.Step(100 * time.Millisecond)
			if len(rec.fractions) != n {
				t.Error("timing event delivered after halt")
			}

			// Sequential reuse.
			if err := a.Start(); err != nil {
				t.Errorf("restart: %v", err)
			}
		})
	}
}

func TestRepeatReverseAlternates(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(time.Second).
		RepeatCount(2).
		RepeatBehavior(timing.Reverse).
		AddTarget(rec))

	a.Start()
	m.Step(500 * time.Millisecond)
	if a.Direction() != timing.Forward {
		t.Fatalf("direction = %v before first repeat", a.Direction())
	}
	m.Step(700 * time.Millisecond)
	if rec.repeats != 1 {
		t.Fatalf("repeats = %d, want 1", rec.repeats)
	}
	if a.Direction() != timing.Backward {
		t.Errorf("direction after repeat = %v, want backward", a.Direction())
	}
	if got := rec.lastFraction(); !near(got, 0.8) {
		t.Errorf("fraction after repeat = %v, want 0.8", got)
	}

	m.Step(800 * time.Millisecond)
	if a.IsRunning() {
		t.Fatal("animator still running")
	}
	if got := rec.lastFraction(); got != 0 {
		t.Errorf("held fraction = %v, want 0 after ending backward", got)
	}
}

func TestRepeatLoop(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(time.Second).
		RepeatCount(timing.InfiniteRepeat).
		RepeatBehavior(timing.Loop).
		AddTarget(rec))

	a.Start()
	m.Step(900 * time.Millisecond)
	m.Step(300 * time.Millisecond)
	if got := rec.lastFraction(); !near(got, 0.2) {
		t.Errorf("fraction = %v, want 0.2", got)
	}
	// Skip several cycles in one tick.
	m.Step(3500 * time.Millisecond)
	if got := rec.lastFraction(); !near(got, 0.7) {
		t.Errorf("fraction = %v, want 0.7", got)
	}
	if rec.repeats != 2 {
		t.Errorf("repeats = %d, want one per boundary tick", rec.repeats)
	}
	if a.Direction() != timing.Forward {
		t.Errorf("loop changed direction")
	}
	a.Stop()
}

func TestEndBehavior(t *testing.T) {
	tests := []struct {
		name     string
		repeat   float64
		behavior timing.RepeatBehavior
		end      timing.EndBehavior
		ticks    []time.Duration
		want     float64
	}{
		{"hold forward", 1, timing.Reverse, timing.Hold, []time.Duration{400, 700}, 1},
		{"reset", 1, timing.Reverse, timing.Reset, []time.Duration{400, 700}, 0},
		{"hold fractional loop", 1.5, timing.Loop, timing.Hold, []time.Duration{1400, 500}, 0.9},
		{"hold fractional reverse", 1.25, timing.Reverse, timing.Hold, []time.Duration{500, 600, 200}, 0.7},
		{"hold fractional past cycle end", 1.5, timing.Loop, timing.Hold, []time.Duration{500, 1100}, 1},
		{"hold ending backward", 2, timing.Reverse, timing.Hold, []time.Duration{500, 700, 900}, 0},
		{"hold sparse reverse keeps direction", 2, timing.Reverse, timing.Hold, []time.Duration{500, 2000}, 1},
		{"hold after three reverse cycles", 3, timing.Reverse, timing.Hold, []time.Duration{3500}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManual(t)
			rec := new(recordingTarget)
			a := build(t, timing.NewBuilder().
				TimingSource(m).
				Duration(time.Second).
				RepeatCount(tt.repeat).
				RepeatBehavior(tt.behavior).
				EndBehavior(tt.end).
				AddTarget(rec))
			a.Start()
			for _, d := range tt.ticks {
				m.Step(d * time.Millisecond)
			}
			if a.IsRunning() {
				t.Fatal("animator still running")
			}
			if got := rec.lastFraction(); !near(got, tt.want) {
				t.Errorf("final fraction = %v, want %v", got, tt.want)
			}
			if rec.ends != 1 {
				t.Errorf("ends = %d", rec.ends)
			}
		})
	}
}

func TestStartReverseAndStartDirection(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(rec))

	a.StartReverse()
	m.Step(250 * time.Millisecond)
	if got := rec.lastFraction(); !near(got, 0.75) {
		t.Errorf("reverse fraction = %v, want 0.75", got)
	}
	a.Stop()

	b := build(t, timing.NewBuilder().TimingSource(m).StartDirection(timing.Backward).AddTarget(rec))
	b.Start()
	if b.Direction() != timing.Backward {
		t.Errorf("Start ignored StartDirection")
	}
	b.Stop()
}

func TestStartDelay(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(time.Second).
		StartDelay(500*time.Millisecond).
		AddTarget(rec))

	a.Start()
	m.Step(200 * time.Millisecond)
	m.Step(200 * time.Millisecond)
	if len(rec.fractions) != 0 {
		t.Fatalf("timing events during start delay: %v", rec.fractions)
	}
	if a.ReverseNow() {
		t.Error("ReverseNow succeeded during start delay")
	}
	m.Step(200 * time.Millisecond)
	if got := rec.lastFraction(); !near(got, 0.1) {
		t.Errorf("fraction = %v, want 0.1", got)
	}
}

func TestReverseNowEligibility(t *testing.T) {
	m := newManual(t)
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second))

	if a.ReverseNow() {
		t.Error("ReverseNow succeeded while idle")
	}
	a.Start()
	if a.ReverseNow() {
		t.Error("ReverseNow succeeded before the first tick")
	}
	m.Step(10 * time.Millisecond)
	if !a.ReverseNow() {
		t.Error("ReverseNow failed after a tick")
	}
	a.Pause()
	if a.ReverseNow() {
		t.Error("ReverseNow succeeded while paused")
	}
}

func TestReverseNowParity(t *testing.T) {
	tests := []struct {
		calls    int
		want     float64
		wantDir  timing.Direction
		reverses int
	}{
		{0, 0.4, timing.Forward, 0},
		{1, 0.2, timing.Backward, 1},
		{2, 0.4, timing.Forward, 0},
		{3, 0.2, timing.Backward, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.calls), func(t *testing.T) {
			m := newManual(t)
			rec := new(recordingTarget)
			a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(rec))
			a.Start()
			m.Step(300 * time.Millisecond)
			for i := 0; i < tt.calls; i++ {
				if !a.ReverseNow() {
					t.Fatalf("ReverseNow call %d failed", i)
				}
			}
			if a.Direction() != tt.wantDir {
				t.Errorf("pending direction = %v, want %v", a.Direction(), tt.wantDir)
			}
			m.Step(100 * time.Millisecond)
			if got := rec.lastFraction(); !near(got, tt.want) {
				t.Errorf("fraction = %v, want %v", got, tt.want)
			}
			if rec.reverses != tt.reverses {
				t.Errorf("reverse callbacks = %d, want %d", rec.reverses, tt.reverses)
			}
			if a.Direction() != tt.wantDir {
				t.Errorf("direction = %v, want %v", a.Direction(), tt.wantDir)
			}
		})
	}
}

func TestReverseNowRunsBackToStart(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(rec))
	a.Start()
	m.Step(300 * time.Millisecond)
	a.ReverseNow()
	m.Step(100 * time.Millisecond)
	m.Step(100 * time.Millisecond)
	if got := rec.lastFraction(); !near(got, 0.1) {
		t.Errorf("fraction = %v, want 0.1", got)
	}
	m.Step(200 * time.Millisecond)
	if a.IsRunning() {
		t.Fatal("reversed animator did not finish at its start")
	}
	if got := rec.lastFraction(); got != 0 {
		t.Errorf("held fraction = %v, want 0", got)
	}
}

func TestReverseNowComposesWithRepeatReverse(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(time.Second).
		RepeatCount(timing.InfiniteRepeat).
		RepeatBehavior(timing.Reverse).
		AddTarget(rec))
	a.Start()
	m.Step(800 * time.Millisecond)
	a.ReverseNow()
	m.Step(100 * time.Millisecond) // now backward at 0.7
	if got := rec.lastFraction(); !near(got, 0.7) {
		t.Fatalf("fraction = %v, want 0.7", got)
	}
	// The reversed cycle has 0.7s left; crossing its boundary toggles again.
	m.Step(800 * time.Millisecond)
	if a.Direction() != timing.Forward {
		t.Errorf("direction = %v, want forward", a.Direction())
	}
	if got := rec.lastFraction(); !near(got, 0.1) {
		t.Errorf("fraction = %v, want 0.1", got)
	}
	a.Stop()
}

func TestPauseResume(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(rec))

	if a.Pause() || a.Resume() {
		t.Error("Pause/Resume on idle animator reported true")
	}
	a.Start()
	m.Step(300 * time.Millisecond)
	if !a.Pause() {
		t.Fatal("Pause failed")
	}
	if !a.IsPaused() || !a.IsRunning() {
		t.Errorf("state = %v", a.State())
	}
	n := len(rec.fractions)
	m.Step(5 * time.Second)
	if len(rec.fractions) != n {
		t.Error("timing event while paused")
	}
	if !a.Resume() {
		t.Fatal("Resume failed")
	}
	m.Step(100 * time.Millisecond)
	if got := rec.lastFraction(); !near(got, 0.4) {
		t.Errorf("fraction after resume = %v, want 0.4", got)
	}
}

type orderTarget struct {
	timing.TimingTargetAdapter
	id      int
	counter *int
	order   *[]int
}

func (o *orderTarget) TimingEvent(*timing.Animator, float64) {
	*o.counter++
	*o.order = append(*o.order, o.id)
}

func TestTargetOrder(t *testing.T) {
	m := newManual(t)
	var counter int
	var order []int
	b := timing.NewBuilder().TimingSource(m).RepeatCount(timing.InfiniteRepeat)
	for i := 0; i < 5; i++ {
		b.AddTarget(&orderTarget{id: i, counter: &counter, order: &order})
	}
	a := build(t, b)
	for i := 5; i < 10; i++ {
		a.AddTarget(&orderTarget{id: i, counter: &counter, order: &order})
	}

	a.Start()
	for tick := 0; tick < 3; tick++ {
		counter, order = 0, nil
		m.Step(10 * time.Millisecond)
		if counter != 10 {
			t.Fatalf("tick %d: %d callbacks, want 10", tick, counter)
		}
		for i, id := range order {
			if id != i {
				t.Fatalf("tick %d: order = %v", tick, order)
			}
		}
	}
}

type mutatingTarget struct {
	timing.TimingTargetAdapter
	extra   timing.TimingTarget
	removed bool
}

func (m *mutatingTarget) TimingEvent(a *timing.Animator, _ float64) {
	if !m.removed {
		a.AddTarget(m.extra)
		a.RemoveTarget(m)
		m.removed = true
	}
}

func TestTargetMutationDuringDispatch(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	mut := &mutatingTarget{extra: rec}
	after := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).RepeatCount(timing.InfiniteRepeat).AddTarget(mut, after))
	a.Start()

	m.Step(10 * time.Millisecond)
	if len(rec.fractions) != 0 {
		t.Error("target added mid-tick received that tick")
	}
	if len(after.fractions) != 1 {
		t.Errorf("later target got %d events, want 1", len(after.fractions))
	}
	m.Step(10 * time.Millisecond)
	if len(rec.fractions) != 1 || len(after.fractions) != 2 {
		t.Errorf("second tick: added=%d after=%d", len(rec.fractions), len(after.fractions))
	}
	if got := len(a.Targets()); got != 2 {
		t.Errorf("targets = %d, want 2", got)
	}
}

// sliceTarget has value receivers and a slice field, so its values are not
// comparable.
type sliceTarget struct {
	timing.TimingTargetAdapter
	seen []float64
	hits *int
}

func (s sliceTarget) TimingEvent(*timing.Animator, float64) {
	*s.hits++
}

func TestRemoveNonComparableTarget(t *testing.T) {
	m := newManual(t)
	hits := 0
	target := sliceTarget{seen: []float64{0}, hits: &hits}
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).AddTarget(target, rec))

	if a.RemoveTarget(sliceTarget{hits: &hits}) {
		t.Error("removed a target that cannot be compared")
	}
	if !a.RemoveTarget(rec) {
		t.Error("pointer target not removed past a non-comparable one")
	}
	if a.RemoveTarget(nil) {
		t.Error("removed nil")
	}

	a.Start()
	m.Step(100 * time.Millisecond)
	if hits != 1 || len(rec.fractions) != 0 {
		t.Errorf("hits=%d removed target events=%d", hits, len(rec.fractions))
	}
}

type panicTarget struct {
	timing.TimingTargetAdapter
}

func (panicTarget) TimingEvent(*timing.Animator, float64) {
	panic("boom")
}

func TestTargetPanicIsReported(t *testing.T) {
	m := newManual(t)
	var reported []*timing.TargetError
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		AddTarget(&panicTarget{}, rec).
		ErrorHandler(timing.ErrorHandlerFunc(func(err *timing.TargetError) {
			reported = append(reported, err)
		})))

	a.Start()
	m.Step(100 * time.Millisecond)
	if len(reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(reported))
	}
	if reported[0].Op != "TimingEvent" || reported[0].Value != "boom" {
		t.Errorf("error = %+v", reported[0])
	}
	if len(rec.fractions) != 1 {
		t.Error("panic stopped delivery to later targets")
	}
	if !a.IsRunning() {
		t.Error("panic corrupted animator state")
	}
}

func TestStopFromCallback(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	stopper := &timing.TargetFuncs{
		OnTimingEvent: func(a *timing.Animator, f float64) {
			if f >= 0.5 {
				a.Stop()
			}
		},
	}
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(stopper, rec))
	a.Start()
	for i := 0; i < 10; i++ {
		m.Step(100 * time.Millisecond)
	}
	if a.IsRunning() {
		t.Fatal("animator still running")
	}
	// The tick's event reaches every target before End does.
	want := []string{"begin", "0.10", "0.20", "0.30", "0.40", "0.50", "end"}
	if fmt.Sprint(rec.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestStopAndAwaitWhileAnotherGoroutineDispatches(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	blocker := &timing.TargetFuncs{
		OnTimingEvent: func(*timing.Animator, float64) {
			once.Do(func() {
				close(entered)
				<-release
			})
		},
	}
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(blocker, rec))
	a.Start()

	stepped := make(chan struct{})
	go func() {
		m.Step(100 * time.Millisecond)
		close(stepped)
	}()
	<-entered

	stopped := make(chan bool)
	go func() {
		stopped <- a.StopAndAwait()
	}()
	select {
	case <-stopped:
		t.Fatal("StopAndAwait returned while a tick was still being delivered")
	case <-time.After(50 * time.Millisecond):
	}
	if _, ends := rec.counts(); ends != 0 {
		t.Fatalf("End delivered ahead of the blocked tick")
	}

	close(release)
	select {
	case ok := <-stopped:
		if !ok {
			t.Error("StopAndAwait reported idle")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("StopAndAwait did not return")
	}
	<-stepped

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{"begin", "0.10", "end"}
	if fmt.Sprint(rec.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestRestartFromEnd(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	restarts := 0
	restarter := &timing.TargetFuncs{
		OnEnd: func(a *timing.Animator) {
			if restarts < 2 {
				restarts++
				if err := a.Start(); err != nil {
					t.Errorf("restart: %v", err)
				}
			}
		},
	}
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(100*time.Millisecond).AddTarget(restarter, rec))
	a.Start()
	for i := 0; i < 20; i++ {
		m.Step(50 * time.Millisecond)
	}
	if rec.begins != 3 || rec.ends != 3 {
		t.Errorf("begins=%d ends=%d, want 3/3", rec.begins, rec.ends)
	}
}

func TestAnimatorInterpolator(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(time.Second).
		Interpolator(interpolate.Discrete).
		AddTarget(rec))
	a.StartReverse()
	m.Step(500 * time.Millisecond)
	if got := rec.lastFraction(); got != 0 {
		t.Errorf("discrete fraction = %v, want 0", got)
	}
	m.Step(500 * time.Millisecond)
	if got := rec.lastFraction(); got != 0 {
		t.Errorf("final fraction = %v, want 0", got)
	}
}

func TestInfiniteDuration(t *testing.T) {
	m := newManual(t)
	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(m).Duration(timing.InfiniteDuration).AddTarget(rec))
	a.Start()
	for i := 0; i < 5; i++ {
		m.Step(time.Hour)
	}
	if !a.IsRunning() {
		t.Fatal("infinite animator finished")
	}
	for _, f := range rec.fractions {
		if f != 0 {
			t.Fatalf("fraction = %v, want 0", f)
		}
	}
	a.ReverseNow()
	m.Step(time.Hour)
	if got := rec.lastFraction(); got != 1 {
		t.Errorf("reversed fraction = %v, want 1", got)
	}
	a.Stop()
}

func TestDisposeTimingSourceOnEnd(t *testing.T) {
	m := newManual(t)
	a := build(t, timing.NewBuilder().
		TimingSource(m).
		Duration(100*time.Millisecond).
		DisposeTimingSourceOnEnd(true))
	a.Start()
	m.Step(200 * time.Millisecond)
	if a.IsRunning() {
		t.Fatal("animator still running")
	}
	if m.Tick() {
		t.Error("source still ticking after animator end")
	}
}

func TestSharedSource(t *testing.T) {
	m := newManual(t)
	r1, r2 := new(recordingTarget), new(recordingTarget)
	a1 := build(t, timing.NewBuilder().TimingSource(m).Duration(time.Second).AddTarget(r1))
	a2 := build(t, timing.NewBuilder().TimingSource(m).Duration(2*time.Second).AddTarget(r2))
	a1.Start()
	a2.Start()
	m.Step(500 * time.Millisecond)
	if !near(r1.lastFraction(), 0.5) || !near(r2.lastFraction(), 0.25) {
		t.Errorf("fractions = %v, %v", r1.lastFraction(), r2.lastFraction())
	}
	a1.Stop()
	m.Step(500 * time.Millisecond)
	if len(r1.fractions) != 1 {
		t.Error("stopped animator still ticking")
	}
	if !near(r2.lastFraction(), 0.5) {
		t.Errorf("second animator fraction = %v", r2.lastFraction())
	}
}

func TestAwaitScheduled(t *testing.T) {
	s := source.NewScheduled(time.Millisecond)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Dispose()

	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().TimingSource(s).Duration(20*time.Millisecond).AddTarget(rec))
	a.Start()

	done := make(chan struct{})
	go func() {
		a.Await()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return")
	}
	if begins, ends := rec.counts(); begins != 1 || ends != 1 {
		t.Errorf("begins=%d ends=%d", begins, ends)
	}
	if got := rec.lastFraction(); got != 1 {
		t.Errorf("final fraction = %v, want 1", got)
	}
}

func TestStopAndAwaitScheduled(t *testing.T) {
	s := source.NewScheduled(time.Millisecond)
	s.Init()
	defer s.Dispose()

	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(s).
		RepeatCount(timing.InfiniteRepeat).
		AddTarget(rec))
	a.Start()
	time.Sleep(10 * time.Millisecond)
	if !a.StopAndAwait() {
		t.Fatal("StopAndAwait reported idle")
	}
	if _, ends := rec.counts(); ends != 1 {
		t.Errorf("ends = %d", ends)
	}
}

func TestConcurrentControl(t *testing.T) {
	s := source.NewScheduled(time.Millisecond)
	s.Init()
	defer s.Dispose()

	rec := new(recordingTarget)
	a := build(t, timing.NewBuilder().
		TimingSource(s).
		Duration(5*time.Millisecond).
		RepeatCount(timing.InfiniteRepeat).
		AddTarget(rec))
	a.Start()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			extra := new(recordingTarget)
			for i := 0; i < 200; i++ {
				switch (i + g) % 4 {
				case 0:
					a.ReverseNow()
				case 1:
					a.Pause()
				case 2:
					a.Resume()
				case 3:
					a.AddTarget(extra)
					a.RemoveTarget(extra)
				}
			}
		}(g)
	}
	wg.Wait()
	a.Resume()
	a.StopAndAwait()

	for i, f := range rec.fractions {
		if f < 0 || f > 1 {
			t.Fatalf("fraction %d = %v", i, f)
		}
	}
	if begins, ends := rec.counts(); begins != 1 || ends != 1 {
		t.Errorf("begins=%d ends=%d", begins, ends)
	}
}

func TestBuilderErrors(t *testing.T) {
	m := source.NewManual()
	tests := []struct {
		name string
		b    *timing.Builder
		want error
	}{
		{"no source", timing.NewBuilder(), timing.ErrNoTimingSource},
		{"zero duration", timing.NewBuilder().TimingSource(m).Duration(0), timing.ErrInvalidDuration},
		{"negative duration", timing.NewBuilder().TimingSource(m).Duration(-5 * time.Second), timing.ErrInvalidDuration},
		{"negative delay", timing.NewBuilder().TimingSource(m).StartDelay(-time.Second), timing.ErrInvalidStartDelay},
		{"zero repeat", timing.NewBuilder().TimingSource(m).RepeatCount(0), timing.ErrInvalidRepeatCount},
		{"nan repeat", timing.NewBuilder().TimingSource(m).RepeatCount(math.NaN()), timing.ErrInvalidRepeatCount},
		{"nil target", timing.NewBuilder().TimingSource(m).AddTarget(nil), timing.ErrNilTarget},
	}
	for _, tt := range tests {
		if _, err := tt.b.Build(); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	m := source.NewManual()
	defs := timing.Defaults{
		TimingSource:   m,
		Duration:       3 * time.Second,
		RepeatBehavior: timing.Loop,
	}
	a := build(t, defs.NewBuilder())
	if a.TimingSource() != m {
		t.Error("default timing source not used")
	}
	if a.Duration() != 3*time.Second || a.RepeatCount() != 1 || a.RepeatBehavior() != timing.Loop {
		t.Errorf("animator = %v", a)
	}
	if a.EndBehavior() != timing.Hold || a.StartDirection() != timing.Forward {
		t.Error("unexpected zero-value defaults")
	}
	if a.Interpolator() != interpolate.Linear {
		t.Error("nil interpolator should default to linear")
	}
}
