package edit

import "github.com/dunamismax/pixeledit/internal/raster"

// An empty clamped region yields an unmodified copy, unlike crop.
func applyInvert(src *raster.Buffer, region raster.Region) (*raster.Buffer, error) {
	out := src.Copy()

	clamped := region.ClampTo(out)
	if clamped.Empty() {
		return out, nil
	}

	for y := clamped.Y1; y < clamped.Y2; y++ {
		for x := clamped.X1; x < clamped.X2; x++ {
			p, err := out.At(x, y)
			if err != nil {
				return nil, err
			}
			if err := out.Set(x, y, p.Inverted()); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
