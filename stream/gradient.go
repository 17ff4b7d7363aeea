package stream

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/keyframes"
)

// GradientStop places a hue at a position along a gradient.
type GradientStop struct {
	Hue float64 `yaml:"hue"`
	Pos float64 `yaml:"pos"`
}

// RainbowStops is the default Christmas tree rainbow.
var RainbowStops = []GradientStop{
	{0.0, 0.0},
	{6.0, 0.04},   // Pink
	{87.0, 0.14},  // Red
	{88.0, 0.28},  // Orange
	{98.0, 0.42},  // Yellow
	{180.0, 0.56}, // Green
	{190.0, 0.70}, // Turquiose
	{320.0, 0.84}, // Blue
	{328.0, 0.91}, // Violet
	{360.0, 1.0},  // Pink wrap
}

// A Gradient interpolates hue along key frames. The first and last stops
// are pinned to positions 0 and 1.
type Gradient struct {
	hues *keyframes.KeyFrames[float64]
}

// NewGradient builds a gradient from at least two stops in increasing
// position order.
func NewGradient(stops []GradientStop) (*Gradient, error) {
	if len(stops) < 2 {
		return nil, errors.New("stream: gradient needs at least two stops")
	}
	b := keyframes.NewBuilder(stops[0].Hue)
	for _, s := range stops[1:] {
		b.AddFrameAt(s.Hue, s.Pos)
	}
	hues, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("stream: gradient: %w", err)
	}

	g := new(Gradient)
	g.hues = hues
	return g, nil
}

// Hue returns the hue at position t.
func (g *Gradient) Hue(t float64) float64 {
	return g.hues.Evaluate(t)
}

// GetColor gets a colour at the specified point on the gradient.
func (g *Gradient) GetColor(t, s, l float64) colorful.Color {
	return colorful.Hcl(g.Hue(t), s, l)
}
