package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// SyncJob is an internal job request that can be run later through the queue.
type SyncJob struct {
	Name    string
	Path    string
	Season  int
	Payload map[string]any
}

type DispatchReceipt struct {
	DispatchID string    `json:"dispatch_id"`
	JobName    string    `json:"job_name"`
	RunAt      time.Time `json:"run_at"`
}

// SyncJobDispatcher defers sync jobs to the queue and keeps an audit trail
// of every dispatch transition.
type SyncJobDispatcher struct {
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewSyncJobDispatcher(queue JobQueue, dispatchRepo jobscheduler.Repository, logger *logging.Logger) *SyncJobDispatcher {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SyncJobDispatcher{
		queue:        queue,
		dispatchRepo: dispatchRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Defer enqueues job to run after delay. The dispatch id is stable within a
// one-minute bucket so duplicate requests collapse in the queue.
func (d *SyncJobDispatcher) Defer(ctx context.Context, job SyncJob, delay time.Duration) (DispatchReceipt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncJobDispatcher.Defer")
	defer span.End()

	job.Name = strings.TrimSpace(job.Name)
	job.Path = strings.TrimSpace(job.Path)
	if job.Name == "" || job.Path == "" {
		return DispatchReceipt{}, fmt.Errorf("%w: job name and path are required", ErrInvalidInput)
	}
	if delay < 0 {
		return DispatchReceipt{}, fmt.Errorf("%w: delay must be >= 0", ErrInvalidInput)
	}

	now := d.now().UTC()
	runAt := now.Add(delay)
	dispatchID := dedupKey(job.Name, fmt.Sprintf("s%d", job.Season), runAt, time.Minute)

	payload := make(map[string]any, len(job.Payload)+1)
	for key, value := range job.Payload {
		payload[key] = value
	}
	payload["dispatch_id"] = dispatchID

	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    job.Name,
		JobPath:    job.Path,
		Season:     job.Season,
		Payload:    payload,
		OccurredAt: now,
	}
	if err := d.queue.Enqueue(ctx, job.Path, payload, delay, dispatchID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		d.RecordEvent(ctx, event)
		return DispatchReceipt{}, fmt.Errorf("%w: enqueue %s: %v", ErrDependencyUnavailable, job.Name, err)
	}
	event.Status = jobscheduler.StatusQueued
	d.RecordEvent(ctx, event)

	d.logger.InfoContext(ctx, "sync job deferred", "dispatch_id", dispatchID, "job", job.Name, "delay", delay.String())
	return DispatchReceipt{DispatchID: dispatchID, JobName: job.Name, RunAt: runAt}, nil
}

// RecordEvent stores a dispatch transition. Failures are logged, never returned.
func (d *SyncJobDispatcher) RecordEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if d == nil || d.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	if event.TraceID == "" {
		event.TraceID = traceID
	}
	if event.SpanID == "" {
		event.SpanID = spanID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if err := d.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(scope) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
