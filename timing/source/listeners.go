// Package source provides TimingSource implementations: Manual, ticked
// explicitly by its owner, and Scheduled, ticked by a background goroutine
// at a fixed period.
package source

import (
	"sync"

	"github.com/matt-g-everett/ledtiming/timing"
)

// listeners holds the listener lists shared by every source and serialises
// tick delivery.
type listeners struct {
	mu   sync.Mutex
	tick []timing.TickListener
	post []timing.PostTickListener
	last int64

	// fireMu is held for the whole of a tick so ticks never overlap.
	fireMu sync.Mutex
}

func (l *listeners) AddTickListener(t timing.TickListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tick = appendCopy(l.tick, t)
}

func (l *listeners) RemoveTickListener(t timing.TickListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tick = removeCopy(l.tick, t)
}

func (l *listeners) AddPostTickListener(t timing.PostTickListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.post = appendCopy(l.post, t)
}

func (l *listeners) RemovePostTickListener(t timing.PostTickListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.post = removeCopy(l.post, t)
}

// fire delivers one tick. Times earlier than the previous tick are raised
// to it so listeners never see time go backwards.
func (l *listeners) fire(src timing.TimingSource, now int64) {
	l.fireMu.Lock()
	defer l.fireMu.Unlock()

	l.mu.Lock()
	if now < l.last {
		now = l.last
	}
	l.last = now
	tick, post := l.tick, l.post
	l.mu.Unlock()

	for _, t := range tick {
		t.TimingSourceTick(src, now)
	}
	for _, p := range post {
		p.TimingSourcePostTick(src, now)
	}
}

// appendCopy never modifies s, so slices handed to fire stay stable.
func appendCopy[T comparable](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func removeCopy[T comparable](s []T, v T) []T {
	for i, existing := range s {
		if existing == v {
			out := make([]T, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...)
		}
	}
	return s
}
