package stream

import (
	"container/list"
	"math"
	"math/rand"
	"time"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

type streakParticle struct {
	colour    colorful.Color
	start     float64
	current   float64
	increment float64
	length    float64
	gainRate  float64
}

func newStreakParticle(colour colorful.Color, start float64) *streakParticle {
	p := new(streakParticle)
	p.colour = colour
	p.start = start
	p.current = start
	p.increment = 0.2
	p.length = 10
	p.gainRate = 0.05
	return p
}

func (p *streakParticle) incrementPosition(numPixels, steps float64) bool {
	p.current += p.increment * steps
	if p.current > numPixels {
		return false
	} else if p.current < 0-p.length {
		return false
	}

	return true
}

func (p *streakParticle) calcEaseDistance() float64 {
	return math.Abs(p.current-p.start) * p.gainRate
}

func (p *streakParticle) isLive(easeDistance float64) bool {
	return easeDistance <= 2
}

// overallGain fades the streak in over the first unit of ease distance and
// out over the second.
func (p *streakParticle) overallGain(easeDistance float64) float64 {
	if easeDistance > 2 {
		return 0
	} else if easeDistance > 1 {
		easeDistance = 1 - (easeDistance - 1)
	}

	return ease.InOutQuad(easeDistance)
}

func (p *streakParticle) addStreak(frame *Frame) bool {
	easeDistance := p.calcEaseDistance()
	live := p.isLive(easeDistance)
	bias := p.overallGain(easeDistance)
	if live {
		start := int(math.Max(0, math.Ceil(p.current)))
		end := int(math.Min(float64(frame.Len()-1), math.Floor(p.current+p.length)))
		for i := start; i <= end; i++ {
			frame.pixels[i] = frame.pixels[i].BlendHcl(p.colour, bias)
		}
	}

	return live
}

// A Streak is an Animation that creates streaks across the tree that fade in then out.
// Streaks move in proportion to how far the fraction has advanced, so they
// keep moving forward whichever way the animator runs.
type Streak struct {
	pixels        int
	backColour    colorful.Color
	streakColour  colorful.Color
	streakChance  int32
	stepsPerCycle float64
	particles     *list.List
	rnd           *rand.Rand
	last          float64
}

// NewStreak creates an instance of a Streak object. On average one streak
// starts every streakChance frames.
func NewStreak(pixels int, streakChance int32, backColour colorful.Color) *Streak {
	s := new(Streak)
	s.pixels = pixels
	s.streakChance = streakChance
	if s.streakChance < 1 {
		s.streakChance = 1
	}
	s.backColour = backColour
	s.streakColour = colorful.Color{R: 0.45, G: -0.54, B: 0.02}
	s.stepsPerCycle = 300
	s.particles = list.New()
	s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))

	return s
}

// Seed makes streak creation repeatable.
func (s *Streak) Seed(seed int64) {
	s.rnd = rand.New(rand.NewSource(seed))
}

// Len returns the number of live streaks.
func (s *Streak) Len() int {
	return s.particles.Len()
}

func (s *Streak) steps(fraction float64) float64 {
	delta := fraction - s.last
	s.last = fraction
	if delta < -0.5 {
		// Looped back to the start of a new cycle.
		delta++
	}
	return math.Abs(delta) * s.stepsPerCycle
}

// CalculateFrame creates a new Frame instance.
func (s *Streak) CalculateFrame(fraction float64) *Frame {
	steps := s.steps(fraction)

	f := NewFrame(s.pixels)
	f.Fill(s.backColour)
	numPixels := float64(f.Len())

	toDelete := make([]*list.Element, 0, s.particles.Len())
	for e := s.particles.Front(); e != nil; e = e.Next() {
		particle, _ := e.Value.(*streakParticle)
		more := particle.incrementPosition(numPixels, steps)
		if more {
			more = particle.addStreak(f)
		}

		if !more {
			toDelete = append(toDelete, e)
		}
	}

	if s.pixels > 0 && s.rnd.Int31n(s.streakChance) == 0 {
		start := s.rnd.Float64() * numPixels
		s.particles.PushBack(newStreakParticle(s.streakColour, start))
	}

	for _, e := range toDelete {
		s.particles.Remove(e)
	}

	return f
}
