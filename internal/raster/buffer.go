// Package raster holds the owned pixel grid every edit operates on.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

var (
	ErrOutOfBounds       = errors.New("pixel out of bounds")
	ErrInvalidDimensions = errors.New("buffer dimensions must be positive")
)

// Pixel is one non-premultiplied 8-bit ARGB sample.
type Pixel struct {
	A, R, G, B uint8
}

// Black is the opaque fill used for uncovered rotation footprints.
var Black = Pixel{A: 255}

func (p Pixel) Inverted() Pixel {
	return Pixel{A: p.A, R: 255 - p.R, G: 255 - p.G, B: 255 - p.B}
}

func (p Pixel) String() string {
	return fmt.Sprintf("argb(%d,%d,%d,%d)", p.A, p.R, p.G, p.B)
}

// Buffer is a width x height grid of pixels stored row-major. A Buffer never
// shares its storage with another Buffer.
type Buffer struct {
	width  int
	height int
	pix    []Pixel
}

// New returns a buffer of the given size filled with transparent black.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]Pixel, width*height),
	}, nil
}

// Filled returns a buffer with every pixel set to p.
func Filled(width, height int, p Pixel) (*Buffer, error) {
	b, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for i := range b.pix {
		b.pix[i] = p
	}
	return b, nil
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Pixels reports width*height.
func (b *Buffer) Pixels() int { return b.width * b.height }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Buffer) At(x, y int) (Pixel, error) {
	if !b.inBounds(x, y) {
		return Pixel{}, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return b.pix[y*b.width+x], nil
}

func (b *Buffer) Set(x, y int, p Pixel) error {
	if !b.inBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	b.pix[y*b.width+x] = p
	return nil
}

// Copy returns an independent buffer with identical dimensions and pixels.
func (b *Buffer) Copy() *Buffer {
	pix := make([]Pixel, len(b.pix))
	copy(pix, b.pix)
	return &Buffer{width: b.width, height: b.height, pix: pix}
}

func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil || b.width != other.width || b.height != other.height {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// Extract copies the pixels of r into a new r.Dx() x r.Dy() buffer. r must be
// non-empty and lie inside the buffer; callers clamp first.
func (b *Buffer) Extract(r Region) (*Buffer, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty region %s", ErrInvalidDimensions, r)
	}
	if !b.Contains(r) {
		return nil, fmt.Errorf("%w: region %s outside %dx%d", ErrOutOfBounds, r, b.width, b.height)
	}

	out, err := New(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.height; y++ {
		src := b.pix[(r.Y1+y)*b.width+r.X1 : (r.Y1+y)*b.width+r.X2]
		copy(out.pix[y*out.width:(y+1)*out.width], src)
	}
	return out, nil
}

// Fill sets every pixel of r to p. r must lie inside the buffer.
func (b *Buffer) Fill(r Region, p Pixel) error {
	if r.Empty() {
		return nil
	}
	if !b.Contains(r) {
		return fmt.Errorf("%w: region %s outside %dx%d", ErrOutOfBounds, r, b.width, b.height)
	}
	for y := r.Y1; y < r.Y2; y++ {
		row := b.pix[y*b.width+r.X1 : y*b.width+r.X2]
		for i := range row {
			row[i] = p
		}
	}
	return nil
}

// Contains reports whether r lies fully inside the buffer.
func (b *Buffer) Contains(r Region) bool {
	return r.X1 >= 0 && r.Y1 >= 0 && r.X2 <= b.width && r.Y2 <= b.height
}

// FromImage copies img into a new buffer, converting every pixel to
// non-premultiplied 8-bit ARGB. The buffer origin is img.Bounds().Min.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	b, err := New(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
		bounds = nrgba.Bounds()
	}

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			b.pix[y*b.width+x] = Pixel{A: c.A, R: c.R, G: c.G, B: c.B}
		}
	}
	return b, nil
}

// Image returns an independent *image.NRGBA with the buffer's pixels.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			p := b.pix[y*b.width+x]
			img.SetNRGBA(x, y, color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A})
		}
	}
	return img
}
