package stream

import (
	"errors"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/matt-g-everett/ledtiming/interpolate"
	"github.com/matt-g-everett/ledtiming/timing"
)

// Controller that manages animations. It is itself an Animation that
// renders the current animation, cross-fading to the next one while a
// transition runs. The cross-fade is driven by its own animator, which
// shares the show's timing source.
type Controller struct {
	timing.TimingTargetAdapter

	logger *log.Logger
	fader  *timing.Animator

	mu            sync.Mutex
	playlist      []Animation
	index         int
	animation     Animation
	nextAnimation Animation
	transition    float64
	cycleTime     time.Duration
}

// NewController creates an instance of a Controller showing playlist[0].
// A zero transitionTime switches animations without a cross-fade.
func NewController(defs timing.Defaults, cycleTime, transitionTime time.Duration,
	logger *log.Logger, playlist ...Animation) (*Controller, error) {

	if len(playlist) == 0 {
		return nil, errors.New("stream: controller needs at least one animation")
	}

	c := new(Controller)
	c.logger = logger
	if c.logger == nil {
		c.logger = log.Default()
	}
	c.playlist = playlist
	c.animation = playlist[0]
	c.cycleTime = cycleTime

	if transitionTime > 0 {
		curve, _ := interpolate.Ease("InOutSine")
		fader, err := defs.NewBuilder().
			Duration(transitionTime).
			RepeatCount(1).
			EndBehavior(timing.Hold).
			Interpolator(curve).
			AddTarget(c).
			Build()
		if err != nil {
			return nil, err
		}
		c.fader = fader
	}

	return c, nil
}

// CalculateFrame renders the current animation, blended with the next one
// during a transition.
func (c *Controller) CalculateFrame(fraction float64) *Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nextAnimation != nil {
		f1 := c.animation.CalculateFrame(fraction)
		f2 := c.nextAnimation.CalculateFrame(fraction)
		return f1.InterpolateFrame(f2, c.transition)
	}
	return c.animation.CalculateFrame(fraction)
}

// Current returns the name of the animation being shown.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return animationName(c.animation)
}

// Transitioning reports whether a cross-fade is in progress.
func (c *Controller) Transitioning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextAnimation != nil
}

// SetPlaylist replaces the playlist and fades to its first animation.
func (c *Controller) SetPlaylist(playlist []Animation) {
	if len(playlist) == 0 {
		return
	}
	c.mu.Lock()
	c.playlist = playlist
	c.index = 0
	c.mu.Unlock()
	c.Show(playlist[0])
}

// Next moves to the next animation in the playlist.
func (c *Controller) Next() {
	c.mu.Lock()
	c.index = (c.index + 1) % len(c.playlist)
	next := c.playlist[c.index]
	c.mu.Unlock()

	c.logger.Printf("[controller] next animation: %s", animationName(next))
	c.Show(next)
}

// Show fades to a. A transition already in progress is completed first.
func (c *Controller) Show(a Animation) {
	if c.fader == nil {
		c.mu.Lock()
		c.animation = a
		c.nextAnimation = nil
		c.mu.Unlock()
		return
	}

	c.fader.Cancel()
	c.mu.Lock()
	if c.nextAnimation != nil {
		c.animation = c.nextAnimation
	}
	c.nextAnimation = a
	c.transition = 0
	c.mu.Unlock()

	if err := c.fader.Start(); err != nil {
		c.logger.Printf("[controller] transition not started: %v", err)
	}
}

// TimingEvent advances the cross-fade.
func (c *Controller) TimingEvent(_ *timing.Animator, fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition = fraction
}

// End completes the cross-fade.
func (c *Controller) End(a *timing.Animator) {
	// A late End from a run that Show has already replaced.
	if a.IsRunning() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nextAnimation != nil {
		c.animation = c.nextAnimation
		c.nextAnimation = nil
	}
	c.transition = 0
}

// Run causes the Controller to cycle through animations until stop is
// closed.
func (c *Controller) Run(stop <-chan struct{}) {
	if c.cycleTime <= 0 {
		<-stop
		return
	}
	publishTimer := time.NewTicker(c.cycleTime)
	defer publishTimer.Stop()
	for {
		select {
		case <-publishTimer.C:
			c.Next()
		case <-stop:
			return
		}
	}
}

func animationName(a Animation) string {
	t := reflect.TypeOf(a)
	if t == nil {
		return "none"
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}
