package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dunamismax/pixeledit/internal/config"
	"github.com/dunamismax/pixeledit/internal/domain"
	"github.com/dunamismax/pixeledit/internal/edit"
	"github.com/dunamismax/pixeledit/internal/imageio"
	"github.com/dunamismax/pixeledit/internal/pipeline"
	"github.com/dunamismax/pixeledit/internal/queue"
	"github.com/dunamismax/pixeledit/internal/storage"
	"github.com/dunamismax/pixeledit/internal/store"
	"github.com/dunamismax/pixeledit/internal/webhook"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	logger          *log.Logger
	server          *asynq.Server
	sem             chan struct{}
	localProcessor  processor
	objectProcessor processor
	webhookClient   webhookSender
	jobStore        store.JobStore
	usageStore      store.UsageStore
	metrics         *metrics
	tracer          trace.Tracer
	now             func() time.Time
}

type processor interface {
	Process(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type webhookSender interface {
	Send(ctx context.Context, endpoint, event string, payload any) error
}

type objectStorage interface {
	pipeline.ObjectReader
	pipeline.ObjectWriter
}

// Deps are the worker's collaborators. Storage may be nil, in which case
// presigned-upload jobs fail without retrying.
type Deps struct {
	Storage  objectStorage
	Webhooks webhookSender
	Jobs     store.JobStore
	Usage    store.UsageStore
}

func NewServer(logger *log.Logger, queueCfg config.QueueConfig, workerCfg config.WorkerConfig, deps Deps) (*Server, error) {
	localProcessor, err := pipeline.NewLocalProcessor(workerCfg.LocalOutputDir)
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline processor: %w", err)
	}

	var objectProcessor processor
	if deps.Storage != nil {
		objectProcessor, err = pipeline.NewObjectStoreProcessor(
			pipeline.ObjectStoreFetcher{Storage: deps.Storage},
			pipeline.ObjectStoreEmitter{Storage: deps.Storage, OutputPrefix: "outputs"},
		)
		if err != nil {
			return nil, fmt.Errorf("initialize object-store processor: %w", err)
		}
	}

	usageStore := deps.Usage
	if usageStore == nil {
		if jobAndUsageStore, ok := deps.Jobs.(store.UsageStore); ok {
			usageStore = jobAndUsageStore
		}
	}

	s := &Server{
		logger: logger,
		server: asynq.NewServer(
			queueCfg.RedisClientOpt(),
			asynq.Config{
				Concurrency: workerCfg.Concurrency,
				Queues: map[string]int{
					queueCfg.Name: 1,
				},
				LogLevel: asynq.InfoLevel,
				ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
					retried, _ := asynq.GetRetryCount(ctx)
					maxRetry, _ := asynq.GetMaxRetry(ctx)
					logger.Printf("task failed type=%s retry=%d/%d err=%v", task.Type(), retried, maxRetry, err)
				}),
			},
		),
		sem:             make(chan struct{}, max(1, workerCfg.MaxActiveJobs)),
		localProcessor:  localProcessor,
		objectProcessor: objectProcessor,
		webhookClient:   deps.Webhooks,
		jobStore:        deps.Jobs,
		usageStore:      usageStore,
		metrics:         newMetrics(),
		tracer:          otel.Tracer("pixeledit/worker"),
		now:             time.Now,
	}
	return s, nil
}

func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeRenderImage, s.handleRenderImage)
	return s.server.Run(mux)
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.Handler()
}

func (s *Server) handleRenderImage(ctx context.Context, task *asynq.Task) error {
	startedAt := s.now()
	outcome := domain.JobStatusFailed

	payload, err := queue.ParseRenderImagePayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx, span := s.tracer.Start(ctx, "worker.render_image", trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(
		attribute.String("job.id", payload.JobID),
		attribute.String("job.source_type", payload.SourceType),
		attribute.Int("job.steps", len(payload.Steps)),
	)
	defer span.End()
	defer func() {
		s.metrics.jobDuration.WithLabelValues(payload.SourceType, outcome).Observe(time.Since(startedAt).Seconds())
		s.metrics.jobsTotal.WithLabelValues(payload.SourceType, outcome).Inc()
	}()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.metrics.activeJobs.Inc()
	defer func() {
		<-s.sem
		s.metrics.activeJobs.Dec()
	}()

	s.logger.Printf(
		"rendering job_id=%s source_type=%s steps=%d object_key=%s",
		payload.JobID,
		payload.SourceType,
		len(payload.Steps),
		payload.ObjectKey,
	)

	s.updateJobStatus(ctx, payload.JobID, domain.JobStatusProcessing)

	result, err := s.process(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")

		permanent := isPermanent(err)
		if permanent || finalAttempt(ctx) {
			s.finishJob(ctx, payload.JobID, domain.JobStatusFailed, "", err.Error())
			s.dispatchWebhook(ctx, payload, webhook.EventJobFailed, map[string]any{
				"job_id":       payload.JobID,
				"status":       domain.JobStatusFailed,
				"source_type":  payload.SourceType,
				"object_key":   payload.ObjectKey,
				"requested_at": payload.RequestedAt,
				"failed_at":    s.now().UTC(),
				"error":        err.Error(),
			})
		}
		if permanent {
			return fmt.Errorf("render job %s: %w: %w", payload.JobID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("render job %s: %w", payload.JobID, err)
	}

	s.logger.Printf(
		"rendered job_id=%s output=%s size=%dx%d bytes=%d",
		payload.JobID,
		result.Output.Path,
		result.Output.Width,
		result.Output.Height,
		result.Output.Bytes,
	)
	s.finishJob(ctx, payload.JobID, domain.JobStatusSucceeded, result.Output.Path, "")
	s.metrics.operationsTotal.Add(float64(result.Output.Operations))
	s.recordUsage(ctx, payload, result, time.Since(startedAt))

	s.dispatchWebhook(ctx, payload, webhook.EventJobCompleted, map[string]any{
		"job_id":       payload.JobID,
		"status":       domain.JobStatusSucceeded,
		"source_type":  payload.SourceType,
		"object_key":   payload.ObjectKey,
		"requested_at": payload.RequestedAt,
		"completed_at": s.now().UTC(),
		"output":       result.Output,
	})

	outcome = domain.JobStatusSucceeded
	span.SetStatus(codes.Ok, "rendered")
	return nil
}

func (s *Server) process(ctx context.Context, payload queue.RenderImagePayload) (pipeline.Result, error) {
	request := pipeline.Request{
		JobID:      payload.JobID,
		SourceType: payload.SourceType,
		ObjectKey:  payload.ObjectKey,
		Steps:      payload.Steps,
		Output:     payload.Output,
	}

	switch payload.SourceType {
	case domain.SourceTypeLocalFile:
		return s.localProcessor.Process(ctx, request)
	case domain.SourceTypeS3Presigned:
		if s.objectProcessor == nil {
			return pipeline.Result{}, fmt.Errorf("%w: object storage is not configured", pipeline.ErrUnsupportedSourceType)
		}
		return s.objectProcessor.Process(ctx, request)
	default:
		return pipeline.Result{}, fmt.Errorf("%w: %s", pipeline.ErrUnsupportedSourceType, payload.SourceType)
	}
}

// isPermanent reports errors that the same payload would hit again on retry.
func isPermanent(err error) bool {
	for _, target := range []error{
		pipeline.ErrUnsupportedSourceType,
		domain.ErrInvalidAction,
		edit.ErrInvalidRegion,
		edit.ErrInvalidAngle,
		edit.ErrUnknownOperation,
		imageio.ErrDecode,
		imageio.ErrUnsupportedFormat,
		storage.ErrObjectNotFound,
		os.ErrNotExist,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}

func (s *Server) updateJobStatus(ctx context.Context, jobID, status string) {
	if s.jobStore == nil {
		return
	}
	if _, err := s.jobStore.UpdateStatus(ctx, jobID, status); err != nil {
		s.logger.Printf("job status update failed job_id=%s status=%s err=%v", jobID, status, err)
	}
}

func (s *Server) finishJob(ctx context.Context, jobID, status, outputPath, errMsg string) {
	if s.jobStore == nil {
		return
	}
	if _, err := s.jobStore.Finish(ctx, jobID, status, outputPath, errMsg); err != nil {
		s.logger.Printf("job finish failed job_id=%s status=%s err=%v", jobID, status, err)
	}
}

// dispatchWebhook never fails the task; the render already happened.
func (s *Server) dispatchWebhook(ctx context.Context, payload queue.RenderImagePayload, event string, body map[string]any) {
	if strings.TrimSpace(payload.WebhookURL) == "" || s.webhookClient == nil {
		return
	}

	if err := s.webhookClient.Send(ctx, payload.WebhookURL, event, body); err != nil {
		s.metrics.webhookFailures.WithLabelValues(event).Inc()
		trace.SpanFromContext(ctx).RecordError(err)
		s.logger.Printf("webhook delivery failed job_id=%s event=%s err=%v", payload.JobID, event, err)
	}
}

func (s *Server) recordUsage(ctx context.Context, payload queue.RenderImagePayload, result pipeline.Result, computeDuration time.Duration) {
	if s.usageStore == nil {
		return
	}

	usage := domain.NewUsageLog(payload.UserID, payload.JobID, domain.RenderCost{
		Operations:   result.Output.Operations,
		SourcePixels: result.SourcePixels,
		SourceBytes:  int64(result.SourceBytes),
		OutputBytes:  int64(result.Output.Bytes),
		Compute:      computeDuration,
	}, s.now())
	if err := s.usageStore.CreateUsageLog(ctx, usage); err != nil {
		s.logger.Printf("usage log write failed job_id=%s err=%v", payload.JobID, err)
		return
	}

	s.metrics.pixelsProcessedTotal.Add(float64(usage.PixelsProcessed))
	s.metrics.bytesSavedTotal.Add(float64(usage.BytesSaved))
	s.metrics.computeTimeMSTotal.Add(float64(usage.ComputeTimeMS))
}
