package stream

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledtiming/timing"
)

// pixelRune is drawn for every LED.
const pixelRune = '█'

// TerminalPreview is a TimingTarget that draws an animation in a terminal
// instead of sending it to a device. The strip wraps across the screen
// rows; the bottom row shows the animator status.
type TerminalPreview struct {
	timing.TimingTargetAdapter

	screen    tcell.Screen
	animation Animation
}

// NewTerminalPreview creates a preview of animation on an initialised
// screen.
func NewTerminalPreview(screen tcell.Screen, animation Animation) *TerminalPreview {
	p := new(TerminalPreview)
	p.screen = screen
	p.animation = animation
	return p
}

// TimingEvent renders and draws one frame.
func (p *TerminalPreview) TimingEvent(a *timing.Animator, fraction float64) {
	f := p.animation.CalculateFrame(fraction)
	p.Draw(f, fmt.Sprintf("%s %s %.3f", a.State(), a.Direction(), fraction))
}

func (p *TerminalPreview) End(a *timing.Animator) {
	p.Caption(fmt.Sprintf("%s (space: pause, r: reverse, n: next, s: start/stop, q: quit)", a.State()))
}

// Draw paints f, one cell per pixel, followed by caption.
func (p *TerminalPreview) Draw(f *Frame, caption string) {
	width, height := p.screen.Size()
	if width < 1 || height < 2 {
		return
	}
	p.screen.Clear()
	rows := height - 1
	for i := 0; i < f.Len() && i < width*rows; i++ {
		p.screen.SetContent(i%width, i/width, pixelRune, nil, PixelStyle(f.Pixel(i)))
	}
	p.drawText(0, height-1, caption)
	p.screen.Show()
}

// Caption replaces the status row.
func (p *TerminalPreview) Caption(caption string) {
	width, height := p.screen.Size()
	if height < 1 {
		return
	}
	for x := 0; x < width; x++ {
		p.screen.SetContent(x, height-1, ' ', nil, tcell.StyleDefault)
	}
	p.drawText(0, height-1, caption)
	p.screen.Show()
}

func (p *TerminalPreview) drawText(x, y int, s string) {
	for _, r := range s {
		p.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}

// PixelStyle returns the style that shows c.
func PixelStyle(c colorful.Color) tcell.Style {
	r, g, b := c.Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
