package pixelator

import (
	"image"
	"image/color"
)

// RGB is a single pixel with three 8-bit channels and no alpha.
type RGB struct {
	R, G, B uint8
}

// Buffer is the read side of a 2D RGB pixel grid addressed from (0,0).
type Buffer interface {
	Width() int
	Height() int
	RGBAt(x, y int) RGB
}

// MutableBuffer is a Buffer that can also be written.
type MutableBuffer interface {
	Buffer
	SetRGB(x, y int, c RGB)
}

// RGBBuffer stores pixels packed as R, G, B bytes, row by row.
// The pixel at (x, y) starts at Pix[y*Stride + x*3].
type RGBBuffer struct {
	Pix    []uint8
	Stride int
	W, H   int
}

// NewRGBBuffer allocates a zeroed buffer of the given size.
func NewRGBBuffer(width, height int) *RGBBuffer {
	return &RGBBuffer{
		Pix:    make([]uint8, width*height*3),
		Stride: width * 3,
		W:      width,
		H:      height,
	}
}

func (b *RGBBuffer) Width() int  { return b.W }
func (b *RGBBuffer) Height() int { return b.H }

func (b *RGBBuffer) RGBAt(x, y int) RGB {
	i := y*b.Stride + x*3
	return RGB{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

func (b *RGBBuffer) SetRGB(x, y int, c RGB) {
	i := y*b.Stride + x*3
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
}

// ColorModel, Bounds and At make RGBBuffer an image.Image, so encoders
// can take it as is.
func (b *RGBBuffer) ColorModel() color.Model { return color.RGBAModel }

func (b *RGBBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.W, b.H) }

func (b *RGBBuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	c := b.RGBAt(x, y)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// FromImage converts a decoded image into an RGBBuffer anchored at (0,0).
// Alpha is dropped without compositing: the straight (non-premultiplied)
// channel values are kept.
func FromImage(img image.Image) *RGBBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := NewRGBBuffer(w, h)
	if w == 0 || h == 0 {
		return buf
	}

	switch src := img.(type) {
	case *RGBBuffer:
		copy(buf.Pix, src.Pix)
		return buf
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			out := buf.Pix[y*buf.Stride:]
			for x := 0; x < w; x++ {
				out[x*3] = row[x*4]
				out[x*3+1] = row[x*4+1]
				out[x*3+2] = row[x*4+2]
			}
		}
		return buf
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
				buf.SetRGB(x, y, RGB{R: v, G: v, B: v})
			}
		}
		return buf
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			buf.SetRGB(x, y, RGB{R: c.R, G: c.G, B: c.B})
		}
	}
	return buf
}
