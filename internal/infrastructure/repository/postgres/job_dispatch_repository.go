package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/gridiron-sync/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}
	jobPath := strings.TrimSpace(event.JobPath)
	if jobPath == "" {
		jobPath = "/unknown"
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal job dispatch payload: %w", err)
	}

	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    jobName,
		JobPath:    jobPath,
		SyncID:     optionalString(event.SyncID),
		Season:     event.Season,
		Payload:    payloadJSON,
		Status:     string(event.Status),
		LastError:  optionalString(event.ErrorMessage),
	}

	switch event.Status {
	case jobscheduler.StatusQueued:
		model.QueuedAt = &occurredAt
		model.LastError = nil
	case jobscheduler.StatusSent:
		model.SentAt = &occurredAt
		model.SentTraceID = optionalString(event.TraceID)
		model.SentSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = optionalString(event.TraceID)
		model.CompletedSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case jobscheduler.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = optionalString(event.TraceID)
		model.FailedSpanID = optionalString(event.SpanID)
	}

	query, args, err := qb.InsertModel("job_dispatches", model, `ON CONFLICT (dispatch_id)
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    job_path = EXCLUDED.job_path,
    sync_id = COALESCE(EXCLUDED.sync_id, job_dispatches.sync_id),
    season = EXCLUDED.season,
    payload = EXCLUDED.payload,
    status = EXCLUDED.status,
    queued_at = COALESCE(job_dispatches.queued_at, EXCLUDED.queued_at),
    sent_at = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_at
        ELSE job_dispatches.sent_at
    END,
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE job_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    sent_trace_id = COALESCE(EXCLUDED.sent_trace_id, job_dispatches.sent_trace_id),
    sent_span_id = COALESCE(EXCLUDED.sent_span_id, job_dispatches.sent_span_id),
    completed_trace_id = COALESCE(EXCLUDED.completed_trace_id, job_dispatches.completed_trace_id),
    completed_span_id = COALESCE(EXCLUDED.completed_span_id, job_dispatches.completed_span_id),
    failed_trace_id = COALESCE(EXCLUDED.failed_trace_id, job_dispatches.failed_trace_id),
    failed_span_id = COALESCE(EXCLUDED.failed_span_id, job_dispatches.failed_span_id)`)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}

	return nil
}

// ListByDispatchID expands the stored row into one event per recorded
// transition, oldest first.
func (r *JobDispatchRepository) ListByDispatchID(ctx context.Context, dispatchID string) ([]jobscheduler.DispatchEvent, error) {
	query, args, err := qb.Select(
		"dispatch_id",
		"job_name",
		"job_path",
		"sync_id",
		"season",
		"payload::text AS payload",
		"status",
		"queued_at",
		"sent_at",
		"completed_at",
		"failed_at",
		"last_error",
		"sent_trace_id",
		"sent_span_id",
		"completed_trace_id",
		"completed_span_id",
		"failed_trace_id",
		"failed_span_id",
	).From("job_dispatches").
		Where(qb.Eq("dispatch_id", strings.TrimSpace(dispatchID))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job dispatch query: %w", err)
	}

	var rows []jobDispatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job dispatch dispatch_id=%s: %w", dispatchID, err)
	}

	out := make([]jobscheduler.DispatchEvent, 0, len(rows)*2)
	for _, row := range rows {
		payload := make(map[string]any)
		if strings.TrimSpace(row.Payload) != "" {
			if err := jsoniter.UnmarshalFromString(row.Payload, &payload); err != nil {
				return nil, fmt.Errorf("decode job dispatch payload dispatch_id=%s: %w", row.DispatchID, err)
			}
		}
		base := jobscheduler.DispatchEvent{
			DispatchID: row.DispatchID,
			JobName:    row.JobName,
			JobPath:    row.JobPath,
			SyncID:     nullStringToString(row.SyncID),
			Season:     row.Season,
			Payload:    payload,
		}
		appendAt := func(status jobscheduler.DispatchStatus, at *time.Time, traceID, spanID, errMsg string) {
			if at == nil {
				return
			}
			event := base
			event.Status = status
			event.OccurredAt = at.UTC()
			event.TraceID = traceID
			event.SpanID = spanID
			event.ErrorMessage = errMsg
			out = append(out, event)
		}
		appendAt(jobscheduler.StatusQueued, row.QueuedAt, "", "", "")
		appendAt(jobscheduler.StatusSent, row.SentAt, nullStringToString(row.SentTraceID), nullStringToString(row.SentSpanID), "")
		appendAt(jobscheduler.StatusCompleted, row.CompletedAt, nullStringToString(row.CompletedTraceID), nullStringToString(row.CompletedSpanID), "")
		appendAt(jobscheduler.StatusFailed, row.FailedAt, nullStringToString(row.FailedTraceID), nullStringToString(row.FailedSpanID), nullStringToString(row.LastError))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
