package stream

import (
	"math"
)

// A GradientTrail is an Animation that cycles a gradient along an led strip.
// One animator cycle moves the gradient one full trail length.
type GradientTrail struct {
	gradient    *Gradient
	pixels      int
	trailLength int
	saturation  float64
	luminance   float64
}

// NewGradientTrail creates an instance of a GradientTrail object.
func NewGradientTrail(gradient *Gradient, pixels, trailLength int) *GradientTrail {
	g := new(GradientTrail)
	g.gradient = gradient
	g.pixels = pixels
	g.trailLength = trailLength
	if g.trailLength < 1 {
		g.trailLength = 1
	}
	g.saturation = 1.0
	g.luminance = 0.05

	return g
}

// SetLevels changes the HCL chroma and luminance of the trail.
func (g *GradientTrail) SetLevels(saturation, luminance float64) {
	g.saturation = saturation
	g.luminance = luminance
}

// CalculateFrame renders the trail shifted by fraction of its length.
func (g *GradientTrail) CalculateFrame(fraction float64) *Frame {
	f := NewFrame(g.pixels)
	length := float64(g.trailLength)
	offset := fraction * length
	for i := 0; i < f.Len(); i++ {
		t := math.Mod(float64(i)+length-offset, length) / length
		f.pixels[i] = g.gradient.GetColor(t, g.saturation, g.luminance)
	}

	return f
}
