package pipeline

import (
	"strings"

	"github.com/dunamismax/pixeledit/internal/imageio"
	"github.com/dunamismax/pixeledit/internal/raster"
)

// Codec turns encoded bytes into buffers and back.
type Codec interface {
	Decode(data []byte) (buf *raster.Buffer, format string, err error)
	Encode(buf *raster.Buffer, format string, quality int) ([]byte, error)
}

// outputFormat prefers the requested format and falls back to the source's.
func outputFormat(requested, source string) string {
	if strings.TrimSpace(requested) != "" {
		return imageio.NormalizeFormat(requested)
	}
	return imageio.NormalizeFormat(source)
}
