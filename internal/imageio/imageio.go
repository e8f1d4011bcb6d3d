// Package imageio loads images into raster buffers and writes buffers back
// out, picking the output format from the file extension.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixeledit/internal/raster"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const DefaultFormat = "png"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrDecode            = errors.New("decode image")
	ErrWrite             = errors.New("write image")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Load reads and decodes the image at path.
func Load(path string) (*raster.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read input file %s: %w", path, err)
	}

	buf, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

// Decode converts encoded image bytes into a buffer and reports the source
// format name. JPEG EXIF orientation is applied so coordinates match what a
// viewer shows.
func Decode(data []byte) (*raster.Buffer, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	buf, err := raster.FromImage(img)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return buf, NormalizeFormat(format), nil
}

// Save encodes buf to path. The format follows the extension; a path without
// one is written as png.
func Save(buf *raster.Buffer, path string, quality int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := Encode(f, buf, format, quality); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Encode writes buf to w in the named format. quality applies to jpeg only;
// values outside 1..100 fall back to the encoder default.
func Encode(w io.Writer, buf *raster.Buffer, format string, quality int) error {
	if buf == nil {
		return errors.New("buffer is required")
	}

	f, err := imagingFormat(format)
	if err != nil {
		return err
	}

	opts := []imaging.EncodeOption{imaging.PNGCompressionLevel(png.DefaultCompression)}
	if quality > 0 && quality <= 100 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}

	if err := imaging.Encode(w, buf.Image(), f, opts...); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, format, err)
	}
	return nil
}

// FormatFromPath infers the output format from the file extension.
func FormatFromPath(path string) (string, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return DefaultFormat, nil
	}

	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return strings.ToLower(f.String()), nil
}

// NormalizeFormat canonicalizes a format name; unknown names map to png.
func NormalizeFormat(format string) string {
	switch format = strings.ToLower(strings.TrimSpace(format)); format {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	case "jpeg", "png", "gif", "bmp", "tiff", "webp":
		return format
	default:
		return DefaultFormat
	}
}

func ContentType(format string) string {
	switch NormalizeFormat(format) {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func imagingFormat(format string) (imaging.Format, error) {
	switch NormalizeFormat(format) {
	case "jpeg":
		return imaging.JPEG, nil
	case "gif":
		return imaging.GIF, nil
	case "bmp":
		return imaging.BMP, nil
	case "tiff":
		return imaging.TIFF, nil
	case "webp":
		return 0, fmt.Errorf("%w: webp export requires govips build tag", ErrUnsupportedFormat)
	default:
		return imaging.PNG, nil
	}
}
