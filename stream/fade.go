package stream

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/interpolate"
	"github.com/matt-g-everett/ledtiming/keyframes"
)

// A Fade is an Animation that washes the whole strip through a sequence of
// colours, blended in HCL space.
type Fade struct {
	pixels  int
	colours *keyframes.KeyFrames[colorful.Color]
}

// NewFade creates a fade through at least two colours, spaced evenly over
// the cycle. i shapes every segment; nil means linear.
func NewFade(pixels int, i interpolate.Interpolator, colours ...colorful.Color) (*Fade, error) {
	if len(colours) < 2 {
		return nil, fmt.Errorf("stream: fade needs at least two colours, got %d", len(colours))
	}
	kf, err := keyframes.NewBuilder(colours[0]).
		AddFrames(colours[1:]...).
		SetInterpolator(i).
		Build()
	if err != nil {
		return nil, fmt.Errorf("stream: fade: %w", err)
	}

	f := new(Fade)
	f.pixels = pixels
	f.colours = kf
	return f, nil
}

// CalculateFrame creates a new Frame instance.
func (f *Fade) CalculateFrame(fraction float64) *Frame {
	frame := NewFrame(f.pixels)
	frame.Fill(f.colours.Evaluate(fraction))
	return frame
}
