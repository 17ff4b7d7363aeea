package stream

import (
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Stripe is a run of pixels of one colour.
type Stripe struct {
	Colour colorful.Color
	Length int32
}

// RandomStripeGenerator makes stripes of random length, cycling through a
// palette without repeating a colour twice in a row. With no palette the
// colours are random hues.
type RandomStripeGenerator struct {
	palette   []colorful.Color
	current   int
	stripeMin int32
	stripeMax int32
	rnd       *rand.Rand
}

// NewRandomStripeGenerator creates a generator of stripes 150 to 400 pixels
// long.
func NewRandomStripeGenerator(palette []colorful.Color, rnd *rand.Rand) *RandomStripeGenerator {
	g := new(RandomStripeGenerator)
	g.palette = palette
	g.current = -1
	g.stripeMin = 150
	g.stripeMax = 400
	g.rnd = rnd
	return g
}

// CreateStripe returns the next stripe.
func (g *RandomStripeGenerator) CreateStripe() Stripe {
	var colour colorful.Color
	switch len(g.palette) {
	case 0:
		colour = colorful.Hsl(g.rnd.Float64()*360.0, 1.0, 0.2)
	case 1:
		colour = g.palette[0]
	default:
		// Choose a new colour that's different from the previous colour
		for {
			newCurrent := g.rnd.Intn(len(g.palette))
			if newCurrent != g.current {
				g.current = newCurrent
				break
			}
		}
		colour = g.palette[g.current]
	}

	stripeLength := g.rnd.Int31n(g.stripeMax-g.stripeMin) + g.stripeMin
	return Stripe{colour, stripeLength}
}

// An InfinityStripe is an Animation that scrolls an endless sequence of
// stripes along the strip. Stripes stretch towards the far end, which gives
// a sense of perspective on a tree. It scrolls pixelsPerCycle pixels for
// each full animator cycle, in whichever direction the fraction moves.
type InfinityStripe struct {
	generator      *RandomStripeGenerator
	pixels         int
	stripes        []Stripe
	current        float64
	pixelsPerCycle float64
	adjusted       bool
	last           float64
}

// NewInfinityStripe creates an instance of a InfinityStripe object.
func NewInfinityStripe(pixels int, pixelsPerCycle float64, palette []colorful.Color) *InfinityStripe {
	s := new(InfinityStripe)
	s.generator = NewRandomStripeGenerator(palette, rand.New(rand.NewSource(time.Now().UnixNano())))
	s.pixels = pixels
	s.stripes = make([]Stripe, 0, 20)
	s.pixelsPerCycle = pixelsPerCycle
	s.adjusted = true

	return s
}

// Seed makes the stripe sequence repeatable.
func (s *InfinityStripe) Seed(seed int64) {
	s.generator.rnd = rand.New(rand.NewSource(seed))
	s.stripes = s.stripes[:0]
}

// SetPerspective turns the stretching towards the far end on or off.
func (s *InfinityStripe) SetPerspective(on bool) {
	s.adjusted = on
}

func (s *InfinityStripe) addStripe() Stripe {
	stripe := s.generator.CreateStripe()
	s.stripes = append(s.stripes, stripe)
	return stripe
}

// getStripe returns the stripe covering offset and the offset where it
// ends, generating stripes as needed.
func (s *InfinityStripe) getStripe(offset float64) (Stripe, float64) {
	if len(s.stripes) == 0 {
		s.addStripe()
	}

	var length int32
	for _, stripe := range s.stripes {
		length += stripe.Length
		if offset < float64(length) {
			return stripe, float64(length)
		}
	}

	for offset >= float64(length) {
		stripe := s.addStripe()
		length += stripe.Length
	}

	lastStripe := s.stripes[len(s.stripes)-1]
	return lastStripe, float64(length)
}

// CalculateFrame creates a new Frame instance.
func (s *InfinityStripe) CalculateFrame(fraction float64) *Frame {
	delta := math.Abs(fraction - s.last)
	if delta > 0.5 {
		delta = 1 - delta
	}
	s.last = fraction
	s.current += s.pixelsPerCycle * delta

	// Cull stripes that have passed
	for len(s.stripes) > 0 && s.current >= float64(s.stripes[0].Length) {
		s.current -= float64(s.stripes[0].Length)
		s.stripes = s.stripes[1:]
	}

	f := NewFrame(s.pixels)
	numPixels := f.Len()
	adjustmentFactor := 1.0
	currentStripe, stripeEnd := s.getStripe(s.current)
	for i := 0; i < numPixels; i++ {
		if s.adjusted {
			adjustmentFactor = 1.0 + 1.4*(float64(i)/float64(numPixels))
		}

		adjustedOffset := (adjustmentFactor * float64(i)) + s.current
		if adjustedOffset >= stripeEnd {
			currentStripe, stripeEnd = s.getStripe(adjustedOffset)
		}

		f.pixels[i] = currentStripe.Colour
	}

	return f
}
