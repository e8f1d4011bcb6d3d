package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewRejectsNonPositiveDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-3, 4}} {
		if _, err := New(dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Fatalf("New(%d,%d): expected ErrInvalidDimensions, got %v", dims[0], dims[1], err)
		}
	}
}

func TestAtAndSetBoundsChecked(t *testing.T) {
	b, err := New(3, 2)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}

	want := Pixel{A: 255, R: 10, G: 20, B: 30}
	if err := b.Set(2, 1, want); err != nil {
		t.Fatalf("set in bounds: %v", err)
	}
	got, err := b.At(2, 1)
	if err != nil {
		t.Fatalf("at in bounds: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	outside := [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}}
	for _, p := range outside {
		if _, err := b.At(p[0], p[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("At(%d,%d): expected ErrOutOfBounds, got %v", p[0], p[1], err)
		}
		if err := b.Set(p[0], p[1], want); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Set(%d,%d): expected ErrOutOfBounds, got %v", p[0], p[1], err)
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	src := gradient(t, 5, 4)
	dup := src.Copy()
	if !dup.Equal(src) {
		t.Fatal("expected copy to equal source")
	}

	if err := dup.Set(1, 1, Black); err != nil {
		t.Fatalf("set on copy: %v", err)
	}
	if p, _ := src.At(1, 1); p == Black {
		t.Fatal("writing to the copy changed the source")
	}

	if err := src.Set(0, 0, Pixel{A: 1}); err != nil {
		t.Fatalf("set on source: %v", err)
	}
	if p, _ := dup.At(0, 0); p == (Pixel{A: 1}) {
		t.Fatal("writing to the source changed the copy")
	}
}

func TestExtractAndFill(t *testing.T) {
	src := gradient(t, 6, 6)

	sub, err := src.Extract(Region{X1: 1, Y1: 2, X2: 4, Y2: 3})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if sub.Width() != 3 || sub.Height() != 1 {
		t.Fatalf("expected 3x1, got %dx%d", sub.Width(), sub.Height())
	}
	want, _ := src.At(3, 2)
	if got, _ := sub.At(2, 0); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := src.Extract(Region{X1: 4, Y1: 4, X2: 7, Y2: 5}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds for region past the edge, got %v", err)
	}

	if err := src.Fill(Region{X1: 0, Y1: 0, X2: 2, Y2: 2}, Black); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if p, _ := src.At(1, 1); p != Black {
		t.Fatalf("expected black after fill, got %s", p)
	}
	if p, _ := src.At(2, 2); p == Black {
		t.Fatal("fill leaked outside its region")
	}
}

func TestImageRoundTrip(t *testing.T) {
	src := gradient(t, 4, 3)
	back, err := FromImage(src.Image())
	if err != nil {
		t.Fatalf("from image: %v", err)
	}
	if !back.Equal(src) {
		t.Fatal("expected identical pixels after NRGBA round trip")
	}
}

func TestFromImageHonorsBoundsOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 13, 22))
	img.Set(12, 21, color.RGBA{R: 200, A: 255})

	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("from image: %v", err)
	}
	if b.Width() != 3 || b.Height() != 2 {
		t.Fatalf("expected 3x2, got %dx%d", b.Width(), b.Height())
	}
	if p, _ := b.At(2, 1); p != (Pixel{A: 255, R: 200}) {
		t.Fatalf("expected translated red pixel, got %s", p)
	}
}

func TestPixelInvertedKeepsAlpha(t *testing.T) {
	p := Pixel{A: 128, R: 0, G: 100, B: 255}
	got := p.Inverted()
	if got != (Pixel{A: 128, R: 255, G: 155, B: 0}) {
		t.Fatalf("unexpected inversion %s", got)
	}
	if got.Inverted() != p {
		t.Fatal("expected inversion to be an involution")
	}
}

func gradient(t *testing.T, w, h int) *Buffer {
	t.Helper()

	b, err := New(w, h)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := b.Set(x, y, Pixel{A: 255, R: uint8(x * 40), G: uint8(y * 40), B: uint8(x + y)}); err != nil {
				t.Fatalf("seed pixel: %v", err)
			}
		}
	}
	return b
}
