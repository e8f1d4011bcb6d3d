package editor

import (
	"github.com/dunamismax/pixeledit/internal/imageio"
	"github.com/dunamismax/pixeledit/internal/raster"
)

// Files is the disk-backed Loader and Saver. Quality applies to jpeg output.
type Files struct {
	Quality int
}

func (Files) Load(path string) (*raster.Buffer, error) {
	return imageio.Load(path)
}

func (f Files) Save(buf *raster.Buffer, path string) error {
	return imageio.Save(buf, path, f.Quality)
}
