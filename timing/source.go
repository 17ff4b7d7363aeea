package timing

// A TickListener is notified on every tick of a TimingSource. nanoTime is
// the source's monotonic time base and never decreases between calls.
type TickListener interface {
	TimingSourceTick(source TimingSource, nanoTime int64)
}

// A PostTickListener runs after every TickListener has handled the tick.
type PostTickListener interface {
	TimingSourcePostTick(source TimingSource, nanoTime int64)
}

// A TimingSource produces periodic ticks.
//
// Implementations deliver ticks one at a time, never concurrently, from
// whatever goroutine their mechanism owns. Listeners run in registration
// order: all tick listeners complete before any post-tick listener starts.
// Listeners may be added or removed at any time, including from inside a
// listener; the change takes effect from the next tick.
type TimingSource interface {
	// Init starts tick production. It returns ErrSourceInitialized when the
	// source is already running.
	Init() error
	// Dispose stops tick production. It is idempotent and never blocks on
	// the tick goroutine, so it may be called from inside a listener.
	Dispose()

	AddTickListener(l TickListener)
	RemoveTickListener(l TickListener)
	AddPostTickListener(l PostTickListener)
	RemovePostTickListener(l PostTickListener)

	// Nanos reports the current time on the source's time base.
	Nanos() int64
}
