package video

import (
	"image"
	"image/color"
)

const (
	Width  = 160
	Height = 144
)

// Shades of the DMG screen, indexed by the palette-mapped value 0-3.
var Palette = [4]color.RGBA{
	{0xFF, 0xFF, 0xFF, 0xFF}, // white
	{0x98, 0x98, 0x98, 0xFF}, // light grey
	{0x4C, 0x4C, 0x4C, 0xFF}, // dark grey
	{0x00, 0x00, 0x00, 0xFF}, // black
}

// FrameBuffer holds one shade (0-3) per screen pixel.
type FrameBuffer struct {
	pix [Width * Height]uint8
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func (fb *FrameBuffer) Shade(x, y int) uint8 {
	return fb.pix[y*Width+x]
}

func (fb *FrameBuffer) set(x, y int, shade uint8) {
	fb.pix[y*Width+x] = shade
}

// Pixels returns the backing slice, row-major. Callers must not keep it
// across emulation steps.
func (fb *FrameBuffer) Pixels() []uint8 {
	return fb.pix[:]
}

func (fb *FrameBuffer) Clear() {
	fb.pix = [Width * Height]uint8{}
}

// CopyRGBA writes the frame as 8-bit RGBA into dst, which must hold
// Width*Height*4 bytes.
func (fb *FrameBuffer) CopyRGBA(dst []byte) {
	for i, shade := range fb.pix {
		c := Palette[shade&0x03]
		dst[i*4] = c.R
		dst[i*4+1] = c.G
		dst[i*4+2] = c.B
		dst[i*4+3] = c.A
	}
}

// RGBA converts the frame to an image.
func (fb *FrameBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fb.CopyRGBA(img.Pix)
	return img
}
