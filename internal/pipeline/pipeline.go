package pipeline

import (
	"errors"
	"fmt"

	"github.com/dunamismax/pixeledit/internal/edit"
	"github.com/dunamismax/pixeledit/internal/raster"
)

// Pipeline is an ordered list of edits bound to a read-only source buffer.
// Rendering never mutates the source or the list, so Render may be called
// any number of times.
type Pipeline struct {
	source *raster.Buffer
	ops    []edit.Operation
}

func New(source *raster.Buffer) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("source buffer is required")
	}
	return &Pipeline{source: source}, nil
}

func (p *Pipeline) Add(op edit.Operation) {
	p.ops = append(p.ops, op)
}

// Clear drops every pending operation. The source is untouched.
func (p *Pipeline) Clear() {
	p.ops = nil
}

func (p *Pipeline) Len() int {
	return len(p.ops)
}

// Operations returns a copy of the pending operations in insertion order.
func (p *Pipeline) Operations() []edit.Operation {
	out := make([]edit.Operation, len(p.ops))
	copy(out, p.ops)
	return out
}

func (p *Pipeline) SourceSize() (width, height int) {
	return p.source.Width(), p.source.Height()
}

// Render folds every operation over a copy of the source in insertion order.
// A failing operation aborts the render; the pipeline itself is unchanged.
func (p *Pipeline) Render() (*raster.Buffer, error) {
	current := p.source.Copy()
	for i, op := range p.ops {
		next, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i+1, op, err)
		}
		current = next
	}
	return current, nil
}

// Describe returns one numbered line per operation.
func (p *Pipeline) Describe() []string {
	return Describe(p.ops)
}

func Describe(ops []edit.Operation) []string {
	lines := make([]string, 0, len(ops))
	for i, op := range ops {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, op))
	}
	return lines
}
