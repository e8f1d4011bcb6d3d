package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/dunamismax/pixeledit/internal/edit"
	"github.com/dunamismax/pixeledit/internal/editor"
)

const menu = `
1) Crop
2) Invert
3) Rotate
4) Show pipeline
5) Clear pipeline
6) Save and exit
7) Load another image
0) Exit without saving
`

type app struct {
	prompt  *prompter
	files   editor.Files
	session *editor.Session
	outPath string
	logger  *log.Logger
}

func (a *app) run() error {
	for {
		a.prompt.printf("%s", menu)
		choice, err := a.prompt.integer("Choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			x1, y1, x2, y2, err := a.region()
			if err != nil {
				return err
			}
			a.session.Add(edit.Crop(x1, y1, x2, y2))
		case 2:
			x1, y1, x2, y2, err := a.region()
			if err != nil {
				return err
			}
			a.session.Add(edit.Invert(x1, y1, x2, y2))
		case 3:
			x1, y1, x2, y2, err := a.region()
			if err != nil {
				return err
			}
			op, err := a.rotation(x1, y1, x2, y2)
			if err != nil {
				return err
			}
			a.session.Add(op)
		case 4:
			a.show()
		case 5:
			a.session.Clear()
			a.prompt.printf("Pipeline cleared.\n")
		case 6:
			done, err := a.save()
			if err != nil || done {
				return err
			}
		case 7:
			if err := a.reload(); err != nil {
				return err
			}
		case 0:
			return nil
		default:
			a.prompt.printf("Unknown choice %d.\n", choice)
		}
	}
}

func (a *app) region() (x1, y1, x2, y2 int, err error) {
	a.prompt.printf("Image is %dx%d.\n", a.session.Width(), a.session.Height())
	for _, c := range []struct {
		label string
		dst   *int
	}{
		{"x1: ", &x1},
		{"y1: ", &y1},
		{"x2: ", &x2},
		{"y2: ", &y2},
	} {
		if *c.dst, err = a.prompt.integer(c.label); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	return x1, y1, x2, y2, nil
}

func (a *app) rotation(x1, y1, x2, y2 int) (edit.Operation, error) {
	for {
		degrees, err := a.prompt.integer("Degrees (90, 180, 270): ")
		if err != nil {
			return edit.Operation{}, err
		}
		op, err := edit.Rotate(x1, y1, x2, y2, degrees)
		if err == nil {
			return op, nil
		}
		a.prompt.printf("%v\n", err)
	}
}

func (a *app) show() {
	lines := a.session.Preview()
	if len(lines) == 0 {
		a.prompt.printf("Pipeline is empty.\n")
		return
	}
	for _, line := range lines {
		a.prompt.printf("%s\n", line)
	}
}

// save reports done=true once the image has been written.
func (a *app) save() (bool, error) {
	path := a.outPath
	if path == "" {
		var err error
		if path, err = a.prompt.line("Output path: "); err != nil {
			return false, err
		}
	}

	out, err := a.session.Commit(a.files, path)
	if err != nil {
		a.logger.Printf("save failed path=%s: %v", path, err)
		a.prompt.printf("Save failed: %v\n", err)
		a.outPath = ""
		return false, nil
	}
	a.prompt.printf("Saved %s (%dx%d).\n", path, out.Width(), out.Height())
	return true, nil
}

func (a *app) reload() error {
	path, err := a.prompt.line("Image path: ")
	if err != nil {
		return err
	}
	if err := a.session.Load(a.files, path); err != nil {
		a.prompt.printf("Could not open image: %v\n", err)
		return nil
	}
	a.prompt.printf("Loaded %s (%dx%d)\n", path, a.session.Width(), a.session.Height())
	return nil
}

// integer re-prompts until the answer parses.
func (p *prompter) integer(label string) (int, error) {
	for {
		s, err := p.line(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		p.printf("%q is not a whole number.\n", s)
	}
}

func trimLine(s string) string {
	return strings.TrimSpace(s)
}
