package edit

import (
	"fmt"

	"github.com/dunamismax/pixeledit/internal/raster"
)

func applyCrop(src *raster.Buffer, region raster.Region) (*raster.Buffer, error) {
	clamped := region.ClampTo(src)
	if clamped.Empty() {
		return nil, fmt.Errorf("%w: crop %s on %dx%d image", ErrInvalidRegion, region, src.Width(), src.Height())
	}
	return src.Extract(clamped)
}
