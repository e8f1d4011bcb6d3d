package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dunamismax/pixeledit/internal/config"
	"github.com/dunamismax/pixeledit/internal/editor"
	"github.com/dunamismax/pixeledit/internal/pipeline"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stderr, "[pixeledit] ", log.LstdFlags|log.Lmsgprefix)

	in := flag.String("in", "", "image to open; prompts when empty")
	out := flag.String("out", "", "path to save the result; prompts when empty")
	flag.Parse()

	if err := pipeline.Startup(); err != nil {
		logger.Fatalf("image runtime startup failed: %v", err)
	}
	defer pipeline.Shutdown()

	p := newPrompter(os.Stdin, os.Stdout)
	files := editor.Files{Quality: cfg.Editor.Quality}

	session, err := openSession(p, files, *in)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		logger.Fatalf("open image: %v", err)
	}

	app := &app{
		prompt:  p,
		files:   files,
		session: session,
		outPath: *out,
		logger:  logger,
	}
	if err := app.run(); err != nil && !errors.Is(err, io.EOF) {
		logger.Fatalf("editor failed: %v", err)
	}
}

// openSession keeps asking for a path until one loads. A path given on the
// command line is tried once before prompting.
func openSession(p *prompter, files editor.Files, path string) (*editor.Session, error) {
	for {
		if path == "" {
			var err error
			path, err = p.line("Image path: ")
			if err != nil {
				return nil, err
			}
		}
		s, err := editor.Open(files, path)
		if err == nil {
			p.printf("Loaded %s (%dx%d)\n", path, s.Width(), s.Height())
			return s, nil
		}
		p.printf("Could not open image: %v\n", err)
		path = ""
	}
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(r), out: w}
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) line(label string) (string, error) {
	p.printf("%s", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return trimLine(p.in.Text()), nil
}
