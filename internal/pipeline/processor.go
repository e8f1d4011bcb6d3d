package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dunamismax/pixeledit/internal/domain"
)

const SourceTypeLocalFile = domain.SourceTypeLocalFile

var ErrUnsupportedSourceType = errors.New("unsupported source_type")

type Request struct {
	JobID      string
	SourceType string
	ObjectKey  string
	Steps      []domain.EditStep
	Output     domain.OutputSpec
}

type Output struct {
	Name       string `json:"name"`
	Format     string `json:"format"`
	Path       string `json:"path"`
	Bytes      int    `json:"bytes"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Operations int    `json:"operations"`
	Success    bool   `json:"success"`
}

type Result struct {
	Output       Output
	SourceBytes  int
	SourcePixels int64
}

type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

type Emitter interface {
	Emit(ctx context.Context, req Request, data []byte, format string, width, height int) (Output, error)
}

// Processor runs one render job: fetch, decode, fold the edits, encode, emit.
type Processor struct {
	fetcher Fetcher
	codec   Codec
	emitter Emitter
}

func NewLocalProcessor(outputDir string) (*Processor, error) {
	return newProcessor(LocalFileFetcher{}, LocalFileEmitter{OutputDir: outputDir})
}

func NewObjectStoreProcessor(fetcher ObjectStoreFetcher, emitter ObjectStoreEmitter) (*Processor, error) {
	return newProcessor(fetcher, emitter)
}

func newProcessor(fetcher Fetcher, emitter Emitter) (*Processor, error) {
	codec, err := newCodec()
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}

	return &Processor{
		fetcher: fetcher,
		codec:   codec,
		emitter: emitter,
	}, nil
}

func (p *Processor) Process(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.JobID) == "" {
		return Result{}, errors.New("job_id is required")
	}
	if len(req.Steps) == 0 {
		return Result{}, errors.New("steps must contain at least one edit")
	}

	ops, err := domain.Operations(req.Steps)
	if err != nil {
		return Result{}, fmt.Errorf("build stage: %w", err)
	}

	sourceBytes, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch stage: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	source, sourceFormat, err := p.codec.Decode(sourceBytes)
	if err != nil {
		return Result{}, fmt.Errorf("decode stage: %w", err)
	}

	pl, err := New(source)
	if err != nil {
		return Result{}, fmt.Errorf("build stage: %w", err)
	}
	for _, op := range ops {
		pl.Add(op)
	}

	rendered, err := pl.Render()
	if err != nil {
		return Result{}, fmt.Errorf("render stage: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	format := outputFormat(req.Output.Format, sourceFormat)
	encoded, err := p.codec.Encode(rendered, format, req.Output.Quality)
	if err != nil {
		return Result{}, fmt.Errorf("encode stage format=%s: %w", format, err)
	}

	written, err := p.emitter.Emit(ctx, req, encoded, format, rendered.Width(), rendered.Height())
	if err != nil {
		return Result{}, fmt.Errorf("emit stage: %w", err)
	}
	written.Operations = len(ops)

	return Result{
		Output:       written,
		SourceBytes:  len(sourceBytes),
		SourcePixels: int64(source.Pixels()),
	}, nil
}

type LocalFileFetcher struct{}

func (LocalFileFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if !strings.EqualFold(req.SourceType, SourceTypeLocalFile) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSourceType, req.SourceType)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(req.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", req.ObjectKey, err)
	}
	return data, nil
}

type LocalFileEmitter struct {
	OutputDir string
}

func (e LocalFileEmitter) Emit(_ context.Context, req Request, data []byte, format string, width, height int) (Output, error) {
	if strings.TrimSpace(e.OutputDir) == "" {
		return Output{}, errors.New("output directory is required")
	}

	jobDir := filepath.Join(e.OutputDir, sanitizePathToken(req.JobID))
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return Output{}, fmt.Errorf("create output dir: %w", err)
	}

	name := req.Output.NameOrDefault()
	fullPath := filepath.Join(jobDir, outputFilename(name, format))
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return Output{}, fmt.Errorf("write output file: %w", err)
	}

	return Output{
		Name:    name,
		Format:  format,
		Path:    fullPath,
		Bytes:   len(data),
		Width:   width,
		Height:  height,
		Success: true,
	}, nil
}

func outputFilename(name, format string) string {
	return fmt.Sprintf("%s.%s", sanitizePathToken(name), format)
}

func sanitizePathToken(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return "unknown"
	}

	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
