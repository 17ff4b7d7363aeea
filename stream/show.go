package stream

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/timing"
)

// A Command controls a running show.
type Command string

const (
	CmdStart        Command = "start"
	CmdStartReverse Command = "start-reverse"
	CmdStop         Command = "stop"
	CmdCancel       Command = "cancel"
	CmdPause        Command = "pause"
	CmdResume       Command = "resume"
	CmdReverse      Command = "reverse"
	CmdNext         Command = "next"
)

// ErrUnknownCommand is returned for a command the show does not support.
var ErrUnknownCommand = errors.New("stream: unknown command")

var commands = []Command{
	CmdStart, CmdStartReverse, CmdStop, CmdCancel, CmdPause, CmdResume, CmdReverse, CmdNext,
}

// ParseCommand validates s.
func ParseCommand(s string) (Command, error) {
	for _, c := range commands {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Status is a snapshot of the show.
type Status struct {
	State         string  `json:"state"`
	Direction     string  `json:"direction"`
	Duration      string  `json:"duration"`
	RepeatCount   float64 `json:"repeatCount"`
	Interpolator  string  `json:"interpolator"`
	Animation     string  `json:"animation"`
	Transitioning bool    `json:"transitioning"`
	Frames        int64   `json:"frames"`
}

type frameCounter interface {
	Frames() int64
}

// Show ties the main animator to the controller and the targets that
// render it. The animator is rebuilt whenever its configuration changes.
type Show struct {
	defs       timing.Defaults
	controller *Controller
	targets    []timing.TimingTarget
	logger     *log.Logger

	mu       sync.Mutex
	animator *timing.Animator
	settings AnimatorConfig
}

// NewShow builds the main animator from settings. It is left idle.
func NewShow(defs timing.Defaults, settings AnimatorConfig, controller *Controller,
	logger *log.Logger, targets ...timing.TimingTarget) (*Show, error) {

	s := new(Show)
	s.defs = defs
	s.controller = controller
	s.targets = targets
	s.logger = logger
	if s.logger == nil {
		s.logger = log.Default()
	}
	if err := s.Configure(settings); err != nil {
		return nil, err
	}
	return s, nil
}

// Animator returns the current main animator.
func (s *Show) Animator() *timing.Animator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animator
}

// Configure rebuilds the main animator. If the old one was running, the new
// one takes over from the start of its first cycle.
func (s *Show) Configure(settings AnimatorConfig) error {
	a, err := settings.Apply(s.defs.NewBuilder()).AddTarget(s.targets...).Build()
	if err != nil {
		return fmt.Errorf("stream: animator: %w", err)
	}

	s.mu.Lock()
	old := s.animator
	s.animator = a
	s.settings = settings
	s.mu.Unlock()

	if old != nil && old.Cancel() {
		s.logger.Printf("[show] animator replaced while running, restarting")
		return a.Start()
	}
	return nil
}

// Reload applies a new configuration: the playlist is rebuilt and the
// animator reconfigured. Connection settings only take effect on restart.
func (s *Show) Reload(c *Config) error {
	playlist, err := NewAnimations(c)
	if err != nil {
		return err
	}
	if err := s.Configure(c.Animator); err != nil {
		return err
	}
	s.controller.SetPlaylist(playlist)
	s.logger.Printf("[show] configuration reloaded: %d animations, duration=%v repeat=%g",
		len(playlist), c.Animator.Duration, float64(c.Animator.RepeatCount))
	return nil
}

// Execute runs cmd. The result reports whether it changed anything; a
// command that does not apply in the current state returns false.
func (s *Show) Execute(cmd Command) (bool, error) {
	a := s.Animator()
	switch cmd {
	case CmdStart:
		err := a.Start()
		return err == nil, err
	case CmdStartReverse:
		err := a.StartReverse()
		return err == nil, err
	case CmdStop:
		return a.Stop(), nil
	case CmdCancel:
		return a.Cancel(), nil
	case CmdPause:
		return a.Pause(), nil
	case CmdResume:
		return a.Resume(), nil
	case CmdReverse:
		return a.ReverseNow(), nil
	case CmdNext:
		s.controller.Next()
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// Status returns a snapshot of the show.
func (s *Show) Status() Status {
	s.mu.Lock()
	a, settings := s.animator, s.settings
	s.mu.Unlock()

	st := Status{
		State:         a.State().String(),
		Direction:     a.Direction().String(),
		Duration:      settings.Duration.String(),
		RepeatCount:   a.RepeatCount(),
		Interpolator:  settings.Interpolator.Expr,
		Animation:     s.controller.Current(),
		Transitioning: s.controller.Transitioning(),
	}
	if st.Interpolator == "" {
		st.Interpolator = "linear"
	}
	for _, t := range s.targets {
		if fc, ok := t.(frameCounter); ok {
			st.Frames += fc.Frames()
		}
	}
	return st
}

// NewAnimations builds the playlist described by c.Show.
func NewAnimations(c *Config) ([]Animation, error) {
	gradient, err := NewGradient(c.Show.Gradient)
	if err != nil {
		return nil, err
	}
	pixels := c.Strip.Pixels
	fore := colorful.Color(c.Show.ForeColour)
	back := colorful.Color(c.Show.BackColour)

	playlist := []Animation{
		NewTwinkle(pixels, c.Show.Particles, fore, back),
		NewGradientTrail(gradient, pixels, c.Show.TrailLength),
		NewStreak(pixels, c.Show.StreakChance, back),
	}
	if len(c.Show.Palette) > 0 {
		palette := colours(c.Show.Palette)
		playlist = append(playlist,
			NewMultiTwinkle(pixels, c.Show.Scintillate, palette),
			NewInfinityStripe(pixels, c.Show.StripeSpeed, palette))
	}
	if len(c.Show.Fade) > 0 {
		fade, err := NewFade(pixels, c.Animator.Interpolator.Interpolator, colours(c.Show.Fade)...)
		if err != nil {
			return nil, err
		}
		playlist = append(playlist, fade)
	}
	return playlist, nil
}

func colours(cs []Colour) []colorful.Color {
	out := make([]colorful.Color, len(cs))
	for i, c := range cs {
		out[i] = colorful.Color(c)
	}
	return out
}
