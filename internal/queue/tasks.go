package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dunamismax/pixeledit/internal/domain"
	"github.com/hibiken/asynq"
)

const TypeRenderImage = "image:render"

var ErrEmptyJobID = errors.New("render payload has no job id")

type RenderImagePayload struct {
	JobID       string            `json:"job_id"`
	UserID      string            `json:"user_id,omitempty"`
	SourceType  string            `json:"source_type"`
	WebhookURL  string            `json:"webhook_url,omitempty"`
	ObjectKey   string            `json:"object_key"`
	Steps       []domain.EditStep `json:"steps"`
	Output      domain.OutputSpec `json:"output"`
	RequestedAt time.Time         `json:"requested_at"`
}

// PayloadFromJob snapshots the job's edit list at enqueue time.
func PayloadFromJob(job domain.Job, requestedAt time.Time) RenderImagePayload {
	return RenderImagePayload{
		JobID:       job.ID,
		UserID:      job.UserID,
		SourceType:  job.SourceType,
		WebhookURL:  job.WebhookURL,
		ObjectKey:   job.ObjectKey,
		Steps:       append([]domain.EditStep(nil), job.Steps...),
		Output:      job.Output,
		RequestedAt: requestedAt,
	}
}

func NewRenderImageTask(payload RenderImagePayload) (*asynq.Task, error) {
	if payload.JobID == "" {
		return nil, ErrEmptyJobID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal render payload: %w", err)
	}
	return asynq.NewTask(TypeRenderImage, body), nil
}

func ParseRenderImagePayload(task *asynq.Task) (RenderImagePayload, error) {
	var payload RenderImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RenderImagePayload{}, fmt.Errorf("unmarshal render payload: %w", err)
	}
	if payload.JobID == "" {
		return RenderImagePayload{}, ErrEmptyJobID
	}
	return payload, nil
}
