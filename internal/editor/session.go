// Package editor ties one loaded source image to the pipeline of edits a
// user is building for it.
package editor

import (
	"errors"
	"fmt"

	"github.com/dunamismax/pixeledit/internal/edit"
	"github.com/dunamismax/pixeledit/internal/pipeline"
	"github.com/dunamismax/pixeledit/internal/raster"
)

// Loader reads an image from disk.
type Loader interface {
	Load(path string) (*raster.Buffer, error)
}

// Saver writes a rendered buffer to disk.
type Saver interface {
	Save(buf *raster.Buffer, path string) error
}

type Session struct {
	path     string
	source   *raster.Buffer
	pipeline *pipeline.Pipeline
}

// New starts a session over an already decoded source. The session owns src
// from here on; callers must not write to it.
func New(src *raster.Buffer) (*Session, error) {
	pl, err := pipeline.New(src)
	if err != nil {
		return nil, err
	}
	return &Session{source: src, pipeline: pl}, nil
}

// Open loads path and starts a session over it.
func Open(loader Loader, path string) (*Session, error) {
	s := &Session{}
	if err := s.Load(loader, path); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the source with the image at path and starts an empty
// pipeline. On failure the current source and pipeline are kept.
func (s *Session) Load(loader Loader, path string) error {
	if loader == nil {
		return errors.New("image loader is required")
	}

	src, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	pl, err := pipeline.New(src)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	s.path = path
	s.source = src
	s.pipeline = pl
	return nil
}

func (s *Session) Add(op edit.Operation) {
	s.pipeline.Add(op)
}

func (s *Session) Clear() {
	s.pipeline.Clear()
}

func (s *Session) Len() int {
	return s.pipeline.Len()
}

// Preview lists the pending operations, numbered from 1.
func (s *Session) Preview() []string {
	return s.pipeline.Describe()
}

func (s *Session) Render() (*raster.Buffer, error) {
	return s.pipeline.Render()
}

// Commit renders the pipeline and saves the result to path. The pipeline is
// kept so the caller can retry after a failure.
func (s *Session) Commit(saver Saver, path string) (*raster.Buffer, error) {
	if saver == nil {
		return nil, errors.New("image saver is required")
	}

	out, err := s.pipeline.Render()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := saver.Save(out, path); err != nil {
		return nil, fmt.Errorf("save %s: %w", path, err)
	}
	return out, nil
}

func (s *Session) Width() int         { return s.source.Width() }
func (s *Session) Height() int        { return s.source.Height() }
func (s *Session) SourcePath() string { return s.path }
