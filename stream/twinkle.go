package stream

import (
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/interpolate"
)

type twinkleParticle struct {
	index int
	phase float64
}

// A Twinkle is an Animation that twinkles random particles. Each particle
// pulses once per cycle at its own phase; the particles move to new random
// pixels whenever the cycle wraps.
type Twinkle struct {
	pixels       int
	numParticles int
	foreColour   colorful.Color
	backColour   colorful.Color
	pulse        *interpolate.LookupInterpolator
	rnd          *rand.Rand

	particles []twinkleParticle
	last      float64
}

// NewTwinkle creates an instance of a Twinkle object.
func NewTwinkle(pixels, numParticles int, foreColour, backColour colorful.Color) *Twinkle {
	t := new(Twinkle)
	t.pixels = pixels
	t.numParticles = numParticles
	t.foreColour = foreColour
	t.backColour = backColour
	t.pulse = interpolate.NewPulseLookup(64)
	t.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))

	return t
}

// Seed makes the particle placement repeatable.
func (t *Twinkle) Seed(seed int64) {
	t.rnd = rand.New(rand.NewSource(seed))
	t.particles = nil
}

func (t *Twinkle) scatter() {
	t.particles = t.particles[:0]
	if t.pixels == 0 {
		return
	}
	for i := 0; i < t.numParticles; i++ {
		t.particles = append(t.particles, twinkleParticle{
			index: t.rnd.Intn(t.pixels),
			phase: t.rnd.Float64(),
		})
	}
}

// CalculateFrame creates a new Frame instance.
func (t *Twinkle) CalculateFrame(fraction float64) *Frame {
	if t.particles == nil || math.Abs(fraction-t.last) > 0.5 {
		t.scatter()
	}
	t.last = fraction

	f := NewFrame(t.pixels)
	f.Fill(t.backColour)
	for _, p := range t.particles {
		gain := t.pulse.Interpolate(math.Mod(fraction+p.phase, 1))
		c := t.backColour.BlendHcl(t.foreColour, gain)
		// Overlapping particles keep the brightest.
		if _, _, l := c.Hcl(); l > luminance(f.pixels[p.index]) {
			f.pixels[p.index] = c
		}
	}

	return f
}

func luminance(c colorful.Color) float64 {
	_, _, l := c.Hcl()
	return l
}
