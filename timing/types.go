package timing

import (
	"fmt"
	"time"
)

// InfiniteDuration makes a single cycle last forever.
const InfiniteDuration time.Duration = -1

// InfiniteRepeat makes an animator repeat until stopped.
const InfiniteRepeat float64 = -1

// State is the lifecycle state of an Animator.
//
//	          Start / StartReverse
//	Idle ─────────────────────────► Running ◄──── Resume ──── Paused
//	 ▲                                 │  └────── Pause ────────►│
//	 └──── finish / Stop / Cancel ─────┴─────────────────────────┘
type State int

const (
	// Idle means the animator is not running and ignores ticks.
	Idle State = iota
	// Running means ticks advance the animation.
	Running
	// Paused means ticks are ignored and elapsed time is frozen.
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Direction is the way fractions move through a cycle.
type Direction int

const (
	// Forward runs fractions from 0 to 1.
	Forward Direction = iota
	// Backward runs fractions from 1 to 0.
	Backward
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// RepeatBehavior decides what happens to the direction at a cycle boundary.
type RepeatBehavior int

const (
	// Reverse flips the direction on every new cycle.
	Reverse RepeatBehavior = iota
	// Loop restarts every cycle in the same direction.
	Loop
)

func (r RepeatBehavior) String() string {
	switch r {
	case Reverse:
		return "reverse"
	case Loop:
		return "loop"
	default:
		return fmt.Sprintf("RepeatBehavior(%d)", int(r))
	}
}

// EndBehavior decides the final fraction dispatched when an animator
// finishes on its own.
type EndBehavior int

const (
	// Hold keeps the fraction the animation ended on.
	Hold EndBehavior = iota
	// Reset dispatches fraction 0.
	Reset
)

func (e EndBehavior) String() string {
	switch e {
	case Hold:
		return "hold"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("EndBehavior(%d)", int(e))
	}
}
