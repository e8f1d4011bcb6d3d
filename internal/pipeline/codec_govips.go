//go:build govips && cgo

package pipeline

import (
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/dunamismax/pixeledit/internal/imageio"
	"github.com/dunamismax/pixeledit/internal/raster"
)

// govipsCodec lets libvips handle container formats and orientation, then
// hands lossless png to the pixel core.
type govipsCodec struct {
	fallback stdlibCodec
}

func (c govipsCodec) Decode(data []byte) (*raster.Buffer, string, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", imageio.ErrDecode, err)
	}
	defer img.Close()

	if err := img.AutoRotate(); err != nil {
		return nil, "", fmt.Errorf("auto-rotate source image: %w", err)
	}

	png, _, err := img.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, "", fmt.Errorf("%w: export png: %w", imageio.ErrDecode, err)
	}

	buf, _, err := c.fallback.Decode(png)
	if err != nil {
		return nil, "", err
	}
	return buf, sourceFormat(data), nil
}

func (c govipsCodec) Encode(buf *raster.Buffer, format string, quality int) ([]byte, error) {
	format = imageio.NormalizeFormat(format)
	switch format {
	case "jpeg", "png", "webp":
	default:
		return c.fallback.Encode(buf, format, quality)
	}

	png, err := c.fallback.Encode(buf, "png", 0)
	if err != nil {
		return nil, err
	}
	img, err := vips.NewImageFromBuffer(png)
	if err != nil {
		return nil, fmt.Errorf("load rendered image: %w", err)
	}
	defer img.Close()

	return exportGovipsImage(img, format, quality)
}

func sourceFormat(input []byte) string {
	switch vips.DetermineImageType(input) {
	case vips.ImageTypeJPEG:
		return "jpeg"
	case vips.ImageTypeWEBP:
		return "webp"
	case vips.ImageTypeGIF:
		return "gif"
	case vips.ImageTypeTIFF:
		return "tiff"
	default:
		return "png"
	}
}

func exportGovipsImage(img *vips.ImageRef, format string, quality int) ([]byte, error) {
	switch format {
	case "jpeg":
		params := vips.NewJpegExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case "webp":
		params := vips.NewWebpExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	default:
		data, _, err := img.ExportPng(vips.NewPngExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	}
}
