package raster

import "fmt"

// Region is a rectangle with X1<=X2 and Y1<=Y2. X2 and Y2 are exclusive.
type Region struct {
	X1, Y1, X2, Y2 int
}

// NewRegion normalizes two arbitrary corner points into a Region.
func NewRegion(x1, y1, x2, y2 int) Region {
	return Region{
		X1: min(x1, x2),
		Y1: min(y1, y2),
		X2: max(x1, x2),
		Y2: max(y1, y2),
	}
}

// Clamp restricts r to a width x height grid. The result may be empty.
func (r Region) Clamp(width, height int) Region {
	return Region{
		X1: max(0, r.X1),
		Y1: max(0, r.Y1),
		X2: min(width, r.X2),
		Y2: min(height, r.Y2),
	}
}

// ClampTo clamps r against b's dimensions.
func (r Region) ClampTo(b *Buffer) Region {
	return r.Clamp(b.width, b.height)
}

func (r Region) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

func (r Region) Dx() int { return r.X2 - r.X1 }
func (r Region) Dy() int { return r.Y2 - r.Y1 }

// Has reports whether (x,y) lies inside r.
func (r Region) Has(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d) → (%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}
