package source

import (
	"sync"
	"time"

	"github.com/matt-g-everett/ledtiming/timing"
)

// Manual is a TimingSource whose clock and ticks are driven by the caller,
// typically a test or a host event loop. Ticks are delivered synchronously
// on the calling goroutine.
type Manual struct {
	listeners

	mu      sync.Mutex
	now     int64
	running bool
}

// NewManual returns a Manual source whose clock reads zero.
func NewManual() *Manual {
	return new(Manual)
}

// Init enables tick delivery.
func (m *Manual) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return timing.ErrSourceInitialized
	}
	m.running = true
	return nil
}

// Dispose disables tick delivery.
func (m *Manual) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// Nanos returns the manual clock.
func (m *Manual) Nanos() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d without ticking. Negative values
// are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += int64(d)
}

// Tick delivers a tick at the current clock. It reports false, delivering
// nothing, when the source is not initialized.
func (m *Manual) Tick() bool {
	m.mu.Lock()
	running, now := m.running, m.now
	m.mu.Unlock()
	if !running {
		return false
	}
	m.fire(m, now)
	return true
}

// TickAt sets the clock to nanoTime, if that is later, and ticks.
func (m *Manual) TickAt(nanoTime int64) bool {
	m.mu.Lock()
	if nanoTime > m.now {
		m.now = nanoTime
	}
	m.mu.Unlock()
	return m.Tick()
}

// Step advances the clock by d and ticks.
func (m *Manual) Step(d time.Duration) bool {
	m.Advance(d)
	return m.Tick()
}

var _ timing.TimingSource = (*Manual)(nil)
