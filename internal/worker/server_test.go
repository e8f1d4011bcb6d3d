package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dunamismax/pixeledit/internal/domain"
	"github.com/dunamismax/pixeledit/internal/edit"
	"github.com/dunamismax/pixeledit/internal/pipeline"
	"github.com/dunamismax/pixeledit/internal/queue"
	"github.com/dunamismax/pixeledit/internal/store"
	"github.com/dunamismax/pixeledit/internal/webhook"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestHandleRenderImageLocalFile(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "input.png")
	if err := os.WriteFile(input, encodePNG(t, 40, 30), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	s, jobs, hooks := newTestServer(t, filepath.Join(tmp, "out"))
	job := seedJob(t, jobs, domain.Job{
		ID:         "job-local",
		UserID:     "user-1",
		SourceType: domain.SourceTypeLocalFile,
		WebhookURL: "https://hooks.example.test/pixeledit",
		ObjectKey:  input,
		Steps: []domain.EditStep{
			{Action: domain.ActionCrop, X1: 0, Y1: 0, X2: 20, Y2: 10},
			{Action: domain.ActionInvert, X1: 0, Y1: 0, X2: 5, Y2: 5},
		},
		Output: domain.OutputSpec{Name: "edited", Format: "png"},
	})

	if err := s.handleRenderImage(context.Background(), renderTask(t, job)); err != nil {
		t.Fatalf("handle render: %v", err)
	}

	got, _, _ := jobs.Get(context.Background(), job.ID)
	if got.Status != domain.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (%s)", got.Status, got.Error)
	}
	want := filepath.Join(tmp, "out", "job-local", "edited.png")
	if got.OutputPath != want {
		t.Fatalf("expected output path %s, got %s", want, got.OutputPath)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	if len(hooks.events) != 1 || hooks.events[0] != webhook.EventJobCompleted {
		t.Fatalf("expected one job.completed webhook, got %v", hooks.events)
	}

	usage := jobs.UsageLogs("user-1")
	if len(usage) != 1 {
		t.Fatalf("expected one usage log, got %d", len(usage))
	}
	if usage[0].Operations != 2 || usage[0].PixelsProcessed != 40*30 {
		t.Fatalf("unexpected usage %+v", usage[0])
	}
}

func TestHandleRenderImageInvalidRegionSkipsRetry(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "input.png")
	if err := os.WriteFile(input, encodePNG(t, 10, 10), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	s, jobs, hooks := newTestServer(t, filepath.Join(tmp, "out"))
	job := seedJob(t, jobs, domain.Job{
		ID:         "job-bad",
		SourceType: domain.SourceTypeLocalFile,
		WebhookURL: "https://hooks.example.test/pixeledit",
		ObjectKey:  input,
		Steps:      []domain.EditStep{{Action: domain.ActionCrop, X1: 50, Y1: 50, X2: 60, Y2: 60}},
	})

	err := s.handleRenderImage(context.Background(), renderTask(t, job))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	got, _, _ := jobs.Get(context.Background(), job.ID)
	if got.Status != domain.JobStatusFailed || got.Error == "" {
		t.Fatalf("expected failed job with error, got %+v", got)
	}
	if len(hooks.events) != 1 || hooks.events[0] != webhook.EventJobFailed {
		t.Fatalf("expected one job.failed webhook, got %v", hooks.events)
	}
	if len(jobs.UsageLogs("anonymous")) != 0 {
		t.Fatal("failed job recorded usage")
	}
}

func TestHandleRenderImageWithoutObjectStorage(t *testing.T) {
	s, jobs, _ := newTestServer(t, t.TempDir())
	job := seedJob(t, jobs, domain.Job{
		ID:         "job-s3",
		SourceType: domain.SourceTypeS3Presigned,
		ObjectKey:  "uploads/job-s3/source",
		Steps:      []domain.EditStep{{Action: domain.ActionInvert, X2: 1, Y2: 1}},
	})

	err := s.handleRenderImage(context.Background(), renderTask(t, job))
	if !errors.Is(err, pipeline.ErrUnsupportedSourceType) || !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected non-retryable ErrUnsupportedSourceType, got %v", err)
	}
}

func TestHandleRenderImageRejectsMalformedPayload(t *testing.T) {
	s, _, _ := newTestServer(t, t.TempDir())
	err := s.handleRenderImage(context.Background(), asynq.NewTask(queue.TypeRenderImage, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestIsPermanent(t *testing.T) {
	if !isPermanent(errors.Join(errors.New("render stage"), edit.ErrInvalidAngle)) {
		t.Fatal("expected invalid angle to be permanent")
	}
	if isPermanent(errors.New("connection reset by peer")) {
		t.Fatal("expected network error to be retryable")
	}
}

func TestRecordUsageClampsNegativeBytesSaved(t *testing.T) {
	usageStore := &captureUsageStore{}
	s := &Server{
		logger:     log.New(io.Discard, "", 0),
		usageStore: usageStore,
		metrics:    newMetrics(),
		now:        time.Now,
	}

	s.recordUsage(context.Background(), queue.RenderImagePayload{JobID: "job-2"}, pipeline.Result{
		SourceBytes:  100,
		SourcePixels: 25,
		Output:       pipeline.Output{Width: 5, Height: 5, Bytes: 200, Operations: 1},
	}, 0)

	if usageStore.log.UserID != "anonymous" {
		t.Fatalf("expected anonymous user, got %q", usageStore.log.UserID)
	}
	if usageStore.log.BytesSaved != 0 {
		t.Fatalf("expected bytes_saved=0, got %d", usageStore.log.BytesSaved)
	}
	if usageStore.log.ComputeTimeMS < 1 {
		t.Fatalf("expected compute_time_ms to be at least 1, got %d", usageStore.log.ComputeTimeMS)
	}
}

func newTestServer(t *testing.T, outputDir string) (*Server, *store.MemoryJobStore, *recordingWebhooks) {
	t.Helper()

	local, err := pipeline.NewLocalProcessor(outputDir)
	if err != nil {
		t.Fatalf("new local processor: %v", err)
	}
	jobs := store.NewMemoryJobStore()
	hooks := &recordingWebhooks{}

	return &Server{
		logger:         log.New(io.Discard, "", 0),
		sem:            make(chan struct{}, 1),
		localProcessor: local,
		webhookClient:  hooks,
		jobStore:       jobs,
		usageStore:     jobs,
		metrics:        newMetrics(),
		tracer:         noop.NewTracerProvider().Tracer("test"),
		now:            time.Now,
	}, jobs, hooks
}

func seedJob(t *testing.T, jobs *store.MemoryJobStore, job domain.Job) domain.Job {
	t.Helper()

	job.Status = domain.JobStatusQueued
	if err := jobs.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func renderTask(t *testing.T, job domain.Job) *asynq.Task {
	t.Helper()

	task, err := queue.NewRenderImageTask(queue.PayloadFromJob(job, time.Now().UTC()))
	if err != nil {
		t.Fatalf("new render task: %v", err)
	}
	return task
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 5), G: uint8(y * 7), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type recordingWebhooks struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingWebhooks) Send(_ context.Context, _ string, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type captureUsageStore struct {
	called bool
	log    domain.UsageLog
}

func (s *captureUsageStore) CreateUsageLog(_ context.Context, usage domain.UsageLog) error {
	s.called = true
	s.log = usage
	return nil
}
