package stream

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/interpolate"
	"github.com/matt-g-everett/ledtiming/timing"
	"gopkg.in/yaml.v2"
)

// Config is the YAML configuration of the streamer.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		ClientID string `yaml:"clientId"`
		Qos      byte   `yaml:"qos"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Control string `yaml:"control"`
		}
	} `yaml:"mqtt"`
	Strip struct {
		Pixels int `yaml:"pixels"`
	} `yaml:"strip"`
	Source struct {
		Period Duration `yaml:"period"`
	} `yaml:"source"`
	Animator AnimatorConfig `yaml:"animator"`
	Show     ShowConfig     `yaml:"show"`
	Api      struct {
		Listen string `yaml:"listen"`
		Static string `yaml:"static"`
	} `yaml:"api"`
}

// AnimatorConfig holds the options of the show's main animator.
type AnimatorConfig struct {
	Duration       Duration       `yaml:"duration"`
	StartDelay     Duration       `yaml:"startDelay"`
	RepeatCount    RepeatCount    `yaml:"repeatCount"`
	RepeatBehavior RepeatBehavior `yaml:"repeatBehavior"`
	EndBehavior    EndBehavior    `yaml:"endBehavior"`
	Interpolator   Interpolator   `yaml:"interpolator"`
	StartReverse   bool           `yaml:"startReverse"`
}

// ShowConfig describes the animations the controller cycles through.
type ShowConfig struct {
	Cycle        Duration       `yaml:"cycle"`
	Transition   Duration       `yaml:"transition"`
	Gradient     []GradientStop `yaml:"gradient"`
	TrailLength  int            `yaml:"trailLength"`
	Particles    int            `yaml:"particles"`
	StreakChance int32          `yaml:"streakChance"`
	Scintillate  int32          `yaml:"scintillate"`
	StripeSpeed  float64        `yaml:"stripeSpeed"`
	Palette      []Colour       `yaml:"palette"`
	ForeColour   Colour         `yaml:"foreColour"`
	BackColour   Colour         `yaml:"backColour"`
	Fade         []Colour       `yaml:"fade"`
}

// DefaultConfig returns the configuration used for anything the YAML file
// leaves out.
func DefaultConfig() *Config {
	c := new(Config)
	c.Mqtt.ClientID = "ledtx"
	c.Mqtt.Qos = 2
	c.Mqtt.Topics.Stream = "home/xmastree/stream"
	c.Strip.Pixels = 500
	c.Source.Period = Duration(33 * time.Millisecond)

	c.Animator.Duration = Duration(10 * time.Second)
	c.Animator.RepeatCount = RepeatCount(timing.InfiniteRepeat)
	c.Animator.RepeatBehavior = RepeatBehavior(timing.Loop)
	c.Animator.EndBehavior = EndBehavior(timing.Hold)

	c.Show.Cycle = Duration(5 * time.Minute)
	c.Show.Transition = Duration(5 * time.Second)
	c.Show.Gradient = RainbowStops
	c.Show.TrailLength = 200
	c.Show.Particles = 60
	c.Show.StreakChance = 20
	c.Show.Scintillate = 400
	c.Show.StripeSpeed = 600
	c.Show.ForeColour = mustHex("#808080")
	c.Show.BackColour = mustHex("#000005")

	c.Api.Listen = ":3000"
	c.Api.Static = "client/dist"
	return c
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := DefaultConfig()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(c); err != nil {
		return nil, fmt.Errorf("stream: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("stream: %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the values the YAML types cannot.
func (c *Config) Validate() error {
	if c.Strip.Pixels < 1 || c.Strip.Pixels > MaxPixels {
		return fmt.Errorf("strip.pixels must be in [1, %d], got %d", MaxPixels, c.Strip.Pixels)
	}
	if c.Source.Period <= 0 {
		return fmt.Errorf("source.period must be positive, got %v", c.Source.Period)
	}
	if c.Mqtt.Qos > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.Mqtt.Qos)
	}
	if c.Show.Transition < 0 || c.Show.Cycle < 0 {
		return fmt.Errorf("show.cycle and show.transition must not be negative")
	}
	if len(c.Show.Gradient) < 2 {
		return fmt.Errorf("show.gradient needs at least two stops")
	}
	return nil
}

// Apply copies the options onto b.
func (a AnimatorConfig) Apply(b *timing.Builder) *timing.Builder {
	b.Duration(time.Duration(a.Duration)).
		StartDelay(time.Duration(a.StartDelay)).
		RepeatCount(float64(a.RepeatCount)).
		RepeatBehavior(timing.RepeatBehavior(a.RepeatBehavior)).
		EndBehavior(timing.EndBehavior(a.EndBehavior)).
		Interpolator(a.Interpolator.Interpolator)
	if a.StartReverse {
		b.StartDirection(timing.Backward)
	}
	return b
}

// Duration is a time.Duration written as "33ms" or "1m30s" in YAML.
// "infinite" means timing.InfiniteDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if strings.EqualFold(s, "infinite") {
		*d = Duration(timing.InfiniteDuration)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) String() string {
	if time.Duration(d) == timing.InfiniteDuration {
		return "infinite"
	}
	return time.Duration(d).String()
}

// RepeatCount is a positive number of cycles or "infinite".
type RepeatCount float64

func (r *RepeatCount) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if strings.EqualFold(s, "infinite") {
		*r = RepeatCount(timing.InfiniteRepeat)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("repeatCount: %w", err)
	}
	*r = RepeatCount(v)
	return nil
}

// RepeatBehavior is "loop" or "reverse" in YAML.
type RepeatBehavior timing.RepeatBehavior

func (r *RepeatBehavior) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "loop":
		*r = RepeatBehavior(timing.Loop)
	case "reverse":
		*r = RepeatBehavior(timing.Reverse)
	default:
		return fmt.Errorf("repeatBehavior: unknown value %q", s)
	}
	return nil
}

// EndBehavior is "hold" or "reset" in YAML.
type EndBehavior timing.EndBehavior

func (e *EndBehavior) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "hold":
		*e = EndBehavior(timing.Hold)
	case "reset":
		*e = EndBehavior(timing.Reset)
	default:
		return fmt.Errorf("endBehavior: unknown value %q", s)
	}
	return nil
}

// Interpolator is an interpolator expression understood by
// interpolate.Parse, such as "InOutQuad" or "spline 0.25 0.1 0.25 1".
type Interpolator struct {
	Expr string
	interpolate.Interpolator
}

func (i *Interpolator) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := interpolate.Parse(s)
	if err != nil {
		return err
	}
	i.Expr = s
	i.Interpolator = v
	return nil
}

// Colour is a colourful.Color written as a hex string in YAML.
type Colour colorful.Color

func (c *Colour) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := colorful.Hex(s)
	if err != nil {
		return err
	}
	*c = Colour(v)
	return nil
}

func mustHex(s string) Colour {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return Colour(c)
}
