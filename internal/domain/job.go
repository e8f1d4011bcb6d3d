package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dunamismax/pixeledit/internal/edit"
)

const (
	JobStatusCreated    = "created"
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusSucceeded  = "succeeded"
	JobStatusFailed     = "failed"

	SourceTypeLocalFile   = "local_file"
	SourceTypeS3Presigned = "s3_presigned"

	ActionCrop   = "crop"
	ActionInvert = "invert"
	ActionRotate = "rotate"

	DefaultOutputName = "result"
)

var ErrInvalidAction = errors.New("invalid edit action")

type CreateJobRequest struct {
	SourceType string     `json:"source_type"`
	WebhookURL string     `json:"webhook_url,omitempty"`
	ObjectKey  string     `json:"object_key,omitempty"`
	Steps      []EditStep `json:"steps"`
	Output     OutputSpec `json:"output"`
}

// EditStep is the serialized form of one edit.Operation.
type EditStep struct {
	Action  string `json:"action"`
	X1      int    `json:"x1"`
	Y1      int    `json:"y1"`
	X2      int    `json:"x2"`
	Y2      int    `json:"y2"`
	Degrees int    `json:"degrees,omitempty"`
}

type OutputSpec struct {
	Name    string `json:"name,omitempty"`
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

type Job struct {
	ID         string
	UserID     string
	Status     string
	SourceType string
	WebhookURL string
	ObjectKey  string
	Steps      []EditStep
	Output     OutputSpec
	OutputPath string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Terminal reports whether the worker is done with the job.
func (j Job) Terminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

func (r CreateJobRequest) Validate() error {
	sourceType := strings.ToLower(strings.TrimSpace(r.SourceType))
	if sourceType == "" {
		return errors.New("source_type is required")
	}
	if sourceType != SourceTypeLocalFile && sourceType != SourceTypeS3Presigned {
		return fmt.Errorf("unsupported source_type: %s", r.SourceType)
	}
	if sourceType == SourceTypeLocalFile && strings.TrimSpace(r.ObjectKey) == "" {
		return errors.New("object_key is required for source_type=local_file")
	}
	if len(r.Steps) == 0 {
		return errors.New("steps must contain at least one edit")
	}
	for i, step := range r.Steps {
		if _, err := step.Operation(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	if r.Output.Quality < 0 || r.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 0 and 100, got %d", r.Output.Quality)
	}
	return nil
}

// Operation builds the edit the step describes. Rotate steps are validated
// by edit.Rotate.
func (s EditStep) Operation() (edit.Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s.Action)) {
	case ActionCrop:
		return edit.Crop(s.X1, s.Y1, s.X2, s.Y2), nil
	case ActionInvert:
		return edit.Invert(s.X1, s.Y1, s.X2, s.Y2), nil
	case ActionRotate:
		return edit.Rotate(s.X1, s.Y1, s.X2, s.Y2, s.Degrees)
	case "":
		return edit.Operation{}, fmt.Errorf("%w: action is required", ErrInvalidAction)
	default:
		return edit.Operation{}, fmt.Errorf("%w: %q", ErrInvalidAction, s.Action)
	}
}

// Operations converts steps in order, stopping at the first invalid one.
func Operations(steps []EditStep) ([]edit.Operation, error) {
	ops := make([]edit.Operation, 0, len(steps))
	for i, step := range steps {
		op, err := step.Operation()
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// StepFromOperation is the inverse of EditStep.Operation.
func StepFromOperation(op edit.Operation) EditStep {
	r := op.Region()
	return EditStep{
		Action:  op.Kind().String(),
		X1:      r.X1,
		Y1:      r.Y1,
		X2:      r.X2,
		Y2:      r.Y2,
		Degrees: op.Degrees(),
	}
}

func (o OutputSpec) NameOrDefault() string {
	if name := strings.TrimSpace(o.Name); name != "" {
		return name
	}
	return DefaultOutputName
}
