// Package edit implements the region-scoped operations a pipeline folds over
// a buffer. The operation set is closed: Crop, Invert and Rotate.
package edit

import (
	"errors"
	"fmt"

	"github.com/dunamismax/pixeledit/internal/raster"
)

var (
	ErrInvalidRegion    = errors.New("region is outside the image boundaries")
	ErrInvalidAngle     = errors.New("degrees must be 90, 180, or 270")
	ErrUnknownOperation = errors.New("unknown operation")
)

type Kind int

const (
	KindCrop Kind = iota + 1
	KindInvert
	KindRotate
)

func (k Kind) String() string {
	switch k {
	case KindCrop:
		return "crop"
	case KindInvert:
		return "invert"
	case KindRotate:
		return "rotate"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operation is an immutable edit. The zero value is not a valid operation.
type Operation struct {
	kind    Kind
	region  raster.Region
	degrees int
}

// Crop keeps only the pixels between two corner points.
func Crop(x1, y1, x2, y2 int) Operation {
	return Operation{kind: KindCrop, region: raster.NewRegion(x1, y1, x2, y2)}
}

// Invert negates the red, green and blue channels between two corner points.
func Invert(x1, y1, x2, y2 int) Operation {
	return Operation{kind: KindInvert, region: raster.NewRegion(x1, y1, x2, y2)}
}

// Rotate turns the region between two corner points clockwise by 90, 180 or
// 270 degrees.
func Rotate(x1, y1, x2, y2, degrees int) (Operation, error) {
	if !ValidAngle(degrees) {
		return Operation{}, fmt.Errorf("%w: got %d", ErrInvalidAngle, degrees)
	}
	return Operation{kind: KindRotate, region: raster.NewRegion(x1, y1, x2, y2), degrees: degrees}, nil
}

func ValidAngle(degrees int) bool {
	switch degrees {
	case 90, 180, 270:
		return true
	default:
		return false
	}
}

func (o Operation) Kind() Kind            { return o.kind }
func (o Operation) Region() raster.Region { return o.region }

// Degrees is zero for operations other than Rotate.
func (o Operation) Degrees() int { return o.degrees }

// Apply returns the result of o on src. src is never modified.
func (o Operation) Apply(src *raster.Buffer) (*raster.Buffer, error) {
	if src == nil {
		return nil, errors.New("source buffer is required")
	}

	switch o.kind {
	case KindCrop:
		return applyCrop(src, o.region)
	case KindInvert:
		return applyInvert(src, o.region)
	case KindRotate:
		return applyRotate(src, o.region, o.degrees)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, o.kind)
	}
}

func (o Operation) String() string {
	switch o.kind {
	case KindCrop:
		return fmt.Sprintf("Crop %s", o.region)
	case KindInvert:
		return fmt.Sprintf("Invert %s", o.region)
	case KindRotate:
		return fmt.Sprintf("Rotate %s %d°", o.region, o.degrees)
	default:
		return fmt.Sprintf("Unknown %s", o.kind)
	}
}
