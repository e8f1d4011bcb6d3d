package imageio

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/dunamismax/pixeledit/internal/raster"
)

func TestSaveLoadPNGRoundTrip(t *testing.T) {
	src := testBuffer(t, 9, 5)
	path := filepath.Join(t.TempDir(), "out.png")

	if err := Save(src, path, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Equal(src) {
		t.Fatal("expected png round trip to preserve every pixel")
	}
}

func TestSaveWithoutExtensionWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result")
	if err := Save(testBuffer(t, 4, 4), path, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := sniffFormat(t, path); got != "png" {
		t.Fatalf("expected png, got %s", got)
	}
}

func TestSaveJPEGByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.JPG")
	if err := Save(testBuffer(t, 16, 8), path, 90); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := sniffFormat(t, path); got != "jpeg" {
		t.Fatalf("expected jpeg, got %s", got)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Width() != 16 || loaded.Height() != 8 {
		t.Fatalf("expected 16x8, got %dx%d", loaded.Width(), loaded.Height())
	}
}

func TestSaveErrors(t *testing.T) {
	buf := testBuffer(t, 2, 2)
	dir := t.TempDir()

	if err := Save(buf, filepath.Join(dir, "out.xyz"), 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := Save(buf, filepath.Join(dir, "missing", "out.png"), 0); !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "nope.png")); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if _, err := Load(garbage); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestEncodeDecodeReportsFormat(t *testing.T) {
	var out bytes.Buffer
	if err := Encode(&out, testBuffer(t, 3, 3), "gif", 0); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	_, format, err := Decode(out.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "gif" {
		t.Fatalf("expected gif, got %s", format)
	}

	if err := Encode(&out, testBuffer(t, 3, 3), "webp", 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected webp export to be unsupported, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.png":        "png",
		"out.jpeg":       "jpeg",
		"out.jpg":        "jpeg",
		"scan.TIF":       "tiff",
		"icon.bmp":       "bmp",
		"anim.gif":       "gif",
		"no-extension":   "png",
		"dir.v2/outfile": "png",
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil {
			t.Fatalf("FormatFromPath(%q): %v", path, err)
		}
		if got != want {
			t.Fatalf("FormatFromPath(%q): expected %s, got %s", path, want, got)
		}
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"JPG":  "jpeg",
		"jpeg": "jpeg",
		"webp": "webp",
		"":     "png",
		"heic": "png",
	}
	for in, want := range tests {
		if got := NormalizeFormat(in); got != want {
			t.Fatalf("NormalizeFormat(%q): expected %s, got %s", in, want, got)
		}
	}
}

func testBuffer(t *testing.T, w, h int) *raster.Buffer {
	t.Helper()

	b, err := raster.New(w, h)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := raster.Pixel{A: 255, R: uint8((x * 255) / w), G: uint8((y * 255) / h), B: 140}
			if err := b.Set(x, y, p); err != nil {
				t.Fatalf("seed pixel: %v", err)
			}
		}
	}
	return b
}

func sniffFormat(t *testing.T, path string) string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config %s: %v", path, err)
	}
	return format
}
