package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxPixels is the largest strip a frame header can describe.
const MaxPixels = math.MaxUint16

// ErrFrameFormat is returned when binary frame data is malformed.
var ErrFrameFormat = errors.New("stream: malformed frame")

// Frame represents a frame of RGB pixels to display on an ledrx device.
type Frame struct {
	pixels []colorful.Color
}

// NewFrame creates a black frame of n pixels. n is clamped to
// [0, MaxPixels].
func NewFrame(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > MaxPixels {
		n = MaxPixels
	}
	f := new(Frame)
	f.pixels = make([]colorful.Color, n)
	return f
}

// Len returns the number of pixels.
func (f *Frame) Len() int {
	return len(f.pixels)
}

// Pixel returns pixel i.
func (f *Frame) Pixel(i int) colorful.Color {
	return f.pixels[i]
}

// SetPixel sets pixel i.
func (f *Frame) SetPixel(i int, c colorful.Color) {
	f.pixels[i] = c
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c colorful.Color) {
	for i := range f.pixels {
		f.pixels[i] = c
	}
}

// InterpolateFrame merges two frames. Pixels missing from the shorter frame
// are treated as black.
func (f *Frame) InterpolateFrame(f2 *Frame, transitionPoint float64) *Frame {
	n := len(f.pixels)
	if len(f2.pixels) > n {
		n = len(f2.pixels)
	}
	out := NewFrame(n)
	for i := 0; i < n; i++ {
		out.pixels[i] = pixelAt(f, i).BlendHcl(pixelAt(f2, i), transitionPoint)
	}

	return out
}

func pixelAt(f *Frame, i int) colorful.Color {
	if i < len(f.pixels) {
		return f.pixels[i]
	}
	return colorful.Color{}
}

// MarshalBinary converts a Frame into binary data: a little-endian uint16
// pixel count followed by one RGB triplet per pixel.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 2, (len(f.pixels)*3)+2)
	binary.LittleEndian.PutUint16(data, uint16(len(f.pixels)))
	for _, p := range f.pixels {
		r, g, b := p.Clamped().RGB255()
		data = append(data, r, g, b)
	}

	return data, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("%w: %d byte header", ErrFrameFormat, len(data))
	}
	n := int(binary.LittleEndian.Uint16(data))
	if len(data) != 2+n*3 {
		return fmt.Errorf("%w: %d pixels in %d bytes", ErrFrameFormat, n, len(data))
	}
	f.pixels = make([]colorful.Color, n)
	for i := range f.pixels {
		p := data[2+i*3:]
		f.pixels[i] = colorful.Color{
			R: float64(p[0]) / 255.0,
			G: float64(p[1]) / 255.0,
			B: float64(p[2]) / 255.0,
		}
	}
	return nil
}
