package stream

import (
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/interpolate"
)

// peakLuminance is the luminance a scintillating pixel rises to.
const peakLuminance = 0.6

type multiParticle struct {
	pulse      *interpolate.LookupInterpolator
	span       float64
	progress   float64
	running    bool
	colour     colorful.Color
	NextColour colorful.Color
}

func newMultiParticle(colour colorful.Color) *multiParticle {
	p := new(multiParticle)
	p.colour = colour
	p.NextColour = colour
	return p
}

func (p *multiParticle) increment(delta float64) {
	if !p.running {
		return
	}
	p.progress += delta / p.span
	if p.progress > 0.5 {
		p.colour = p.NextColour
	}
	if p.progress >= 1 {
		p.progress = 0
		p.running = false
	}
}

// scintillate starts a pulse lasting span of a cycle. It reports false if
// one is already running.
func (p *multiParticle) scintillate(pulse *interpolate.LookupInterpolator, span float64) bool {
	if p.running {
		return false
	}
	p.running = true
	p.pulse = pulse
	p.span = span
	p.progress = 0
	return true
}

func (p *multiParticle) currentColour() colorful.Color {
	if !p.running {
		return p.colour
	}
	gain := p.pulse.Interpolate(p.progress)
	h, c, l := p.colour.Hcl()

	// Calculate the difference to the max luminance we want
	lumDiff := peakLuminance - l

	return colorful.Hcl(h, c, l+(lumDiff*gain))
}

// A MultiTwinkle is an Animation that twinkles random pixels over a
// multi-coloured background. A twinkling pixel takes a new background
// colour from the palette as it fades back down.
type MultiTwinkle struct {
	pixels              int
	backColours         []colorful.Color
	scintillationChance int32
	particles           []*multiParticle
	pulses              map[int]*interpolate.LookupInterpolator
	rnd                 *rand.Rand
	last                float64
}

// NewMultiTwinkle creates an instance of a MultiTwinkle object. Each pixel
// starts a twinkle with probability 1/scintillationChance per frame.
func NewMultiTwinkle(pixels int, scintillationChance int32, backColours []colorful.Color) *MultiTwinkle {
	t := new(MultiTwinkle)
	t.pixels = pixels
	t.backColours = backColours
	if len(t.backColours) == 0 {
		t.backColours = []colorful.Color{{}}
	}
	t.scintillationChance = scintillationChance
	if t.scintillationChance < 1 {
		t.scintillationChance = 1
	}
	t.pulses = make(map[int]*interpolate.LookupInterpolator)
	t.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))

	return t
}

// Seed makes twinkling repeatable.
func (t *MultiTwinkle) Seed(seed int64) {
	t.rnd = rand.New(rand.NewSource(seed))
	t.particles = nil
}

func (t *MultiTwinkle) getRandomBackColour() colorful.Color {
	return t.backColours[t.rnd.Intn(len(t.backColours))]
}

// pulse returns a shared pulse table of the given length.
func (t *MultiTwinkle) pulse(length int) *interpolate.LookupInterpolator {
	l, ok := t.pulses[length]
	if !ok {
		l = interpolate.NewPulseLookup(length)
		t.pulses[length] = l
	}
	return l
}

// CalculateFrame creates a new Frame instance.
func (t *MultiTwinkle) CalculateFrame(fraction float64) *Frame {
	delta := math.Abs(fraction - t.last)
	if delta > 0.5 {
		delta = 1 - delta
	}
	t.last = fraction

	f := NewFrame(t.pixels)
	numPixels := f.Len()

	// Initialise if we need to
	if t.particles == nil {
		t.particles = make([]*multiParticle, numPixels)
		for i := 0; i < numPixels; i++ {
			t.particles[i] = newMultiParticle(t.getRandomBackColour())
		}
	}

	for i := 0; i < numPixels; i++ {
		p := t.particles[i]
		// Start scintillation by chance
		if t.rnd.Int31n(t.scintillationChance) == 0 {
			length := (t.rnd.Intn(18) + 6) * 2
			if p.scintillate(t.pulse(length), float64(length)/300) {
				p.NextColour = t.getRandomBackColour()
			}
		}

		// Always increment, it'll only affect those pixels that are scintillating
		p.increment(delta)

		f.pixels[i] = p.currentColour()
	}

	return f
}
