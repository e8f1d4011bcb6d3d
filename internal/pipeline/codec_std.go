package pipeline

import (
	"bytes"

	"github.com/dunamismax/pixeledit/internal/imageio"
	"github.com/dunamismax/pixeledit/internal/raster"
)

type stdlibCodec struct{}

func (stdlibCodec) Decode(data []byte) (*raster.Buffer, string, error) {
	return imageio.Decode(data)
}

func (stdlibCodec) Encode(buf *raster.Buffer, format string, quality int) ([]byte, error) {
	var out bytes.Buffer
	if err := imageio.Encode(&out, buf, format, quality); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
