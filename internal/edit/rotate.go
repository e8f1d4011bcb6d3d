package edit

import (
	"fmt"

	"github.com/dunamismax/pixeledit/internal/raster"
)

// applyRotate rotates the clamped region clockwise and pastes the result
// centered over the region's footprint. Footprint pixels the rotated content
// does not cover become opaque black; rotated pixels landing outside the
// footprint are dropped. An empty clamped region is a no-op.
func applyRotate(src *raster.Buffer, region raster.Region, degrees int) (*raster.Buffer, error) {
	if !ValidAngle(degrees) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAngle, degrees)
	}

	out := src.Copy()

	clamped := region.ClampTo(out)
	if clamped.Empty() {
		return out, nil
	}

	patch, err := out.Extract(clamped)
	if err != nil {
		return nil, fmt.Errorf("extract rotate region: %w", err)
	}
	rotated := patch.Rotate(degrees / 90)

	if err := out.Fill(clamped, raster.Black); err != nil {
		return nil, fmt.Errorf("clear rotate region: %w", err)
	}

	pasteX := clamped.X1 + (clamped.Dx()-rotated.Width())/2
	pasteY := clamped.Y1 + (clamped.Dy()-rotated.Height())/2

	for y := 0; y < rotated.Height(); y++ {
		for x := 0; x < rotated.Width(); x++ {
			destX, destY := pasteX+x, pasteY+y
			if !clamped.Has(destX, destY) {
				continue
			}
			p, err := rotated.At(x, y)
			if err != nil {
				return nil, err
			}
			if err := out.Set(destX, destY, p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
