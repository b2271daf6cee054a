package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

const (
	jobPathSyncPlayers   = "/v1/internal/jobs/sync-players"
	jobPathSyncStats     = "/v1/internal/jobs/sync-stats"
	jobPathSyncDateRange = "/v1/internal/jobs/sync-date-range"
	jobPathFullSync      = "/v1/internal/jobs/full-sync"
	jobPathCancel        = "/v1/internal/jobs/cancel"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type jobEnvelope struct {
	DispatchID   string              `json:"dispatch_id" validate:"omitempty,max=128"`
	DeferSeconds int                 `json:"defer_seconds" validate:"gte=0,lte=604800"`
	Async        bool                `json:"async"`
	Options      *syncOptionsRequest `json:"options"`
}

type syncOptionsRequest struct {
	ForceFullSync      *bool `json:"force_full_sync"`
	SkipInactives      *bool `json:"skip_inactives"`
	BatchSize          *int  `json:"batch_size" validate:"omitempty,gte=1,lte=5000"`
	DryRun             *bool `json:"dry_run"`
	MaxRetries         *int  `json:"max_retries" validate:"omitempty,gte=0,lte=10"`
	RetryDelayMs       *int  `json:"retry_delay_ms" validate:"omitempty,gte=0,lte=60000"`
	SkipInvalidRecords *bool `json:"skip_invalid_records"`
	CreateBackup       *bool `json:"create_backup"`
	ContinueOnError    *bool `json:"continue_on_error"`
}

type syncPlayersJobRequest struct {
	jobEnvelope
}

type syncStatsJobRequest struct {
	jobEnvelope
	Season int `json:"season" validate:"required,gte=1920,lte=2100"`
	Week   int `json:"week" validate:"required,gte=1,lte=30"`
}

type syncDateRangeJobRequest struct {
	jobEnvelope
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type fullSyncJobRequest struct {
	jobEnvelope
	Season int `json:"season" validate:"required,gte=1920,lte=2100"`
}

type acceptedJobDTO struct {
	DispatchID string `json:"dispatch_id"`
	JobName    string `json:"job_name"`
	Status     string `json:"status"`
}

type cancelJobDTO struct {
	Cancelled bool `json:"cancelled"`
}

// syncJob binds one internal job route to the coordinator call it runs.
type syncJob struct {
	name    string
	path    string
	season  int
	scope   string
	payload map[string]any
	run     func(ctx context.Context, opts syncrun.Options) (syncrun.Result, error)
}

func (h *Handler) RunSyncPlayersJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncPlayersJob")
	defer span.End()

	var req syncPlayersJobRequest
	if err := decodeInternalJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.serveSyncJob(ctx, w, req.jobEnvelope, syncJob{
		name:    "sync-players",
		path:    jobPathSyncPlayers,
		scope:   "roster",
		payload: map[string]any{},
		run: func(ctx context.Context, opts syncrun.Options) (syncrun.Result, error) {
			return h.coordinator.SyncPlayers(ctx, opts)
		},
	})
}

func (h *Handler) RunSyncStatsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncStatsJob")
	defer span.End()

	var req syncStatsJobRequest
	if err := decodeInternalJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.serveSyncJob(ctx, w, req.jobEnvelope, syncJob{
		name:    "sync-stats",
		path:    jobPathSyncStats,
		season:  req.Season,
		scope:   fmt.Sprintf("s%d-w%d", req.Season, req.Week),
		payload: map[string]any{"season": req.Season, "week": req.Week},
		run: func(ctx context.Context, opts syncrun.Options) (syncrun.Result, error) {
			return h.coordinator.SyncPlayerStats(ctx, req.Season, req.Week, opts)
		},
	})
}

func (h *Handler) RunSyncDateRangeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncDateRangeJob")
	defer span.End()

	var req syncDateRangeJobRequest
	if err := decodeInternalJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid start_date: %v", usecase.ErrInvalidInput, err))
		return
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid end_date: %v", usecase.ErrInvalidInput, err))
		return
	}

	h.serveSyncJob(ctx, w, req.jobEnvelope, syncJob{
		name:    "sync-date-range",
		path:    jobPathSyncDateRange,
		season:  start.Year(),
		scope:   req.StartDate + "_" + req.EndDate,
		payload: map[string]any{"start_date": req.StartDate, "end_date": req.EndDate},
		run: func(ctx context.Context, opts syncrun.Options) (syncrun.Result, error) {
			return h.coordinator.SyncPlayerStatsForDateRange(ctx, start, end, opts)
		},
	})
}

func (h *Handler) RunFullSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFullSyncJob")
	defer span.End()

	var req fullSyncJobRequest
	if err := decodeInternalJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.serveSyncJob(ctx, w, req.jobEnvelope, syncJob{
		name:    "full-sync",
		path:    jobPathFullSync,
		season:  req.Season,
		scope:   fmt.Sprintf("s%d", req.Season),
		payload: map[string]any{"season": req.Season},
		run: func(ctx context.Context, opts syncrun.Options) (syncrun.Result, error) {
			return h.coordinator.FullSync(ctx, req.Season, opts)
		},
	})
}

func (h *Handler) CancelSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelSyncJob")
	defer span.End()

	if h.coordinator == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync coordinator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	cancelled := h.coordinator.Cancel()
	h.logger.InfoContext(ctx, "sync cancel requested", "cancelled", cancelled)
	writeSuccess(ctx, w, http.StatusOK, cancelJobDTO{Cancelled: cancelled})
}

// serveSyncJob defers, starts in the background, or runs job inline
// depending on the envelope. Runs outlive the request that started them.
func (h *Handler) serveSyncJob(ctx context.Context, w http.ResponseWriter, env jobEnvelope, job syncJob) {
	if env.DeferSeconds > 0 {
		h.deferSyncJob(ctx, w, env, job)
		return
	}
	if h.coordinator == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync coordinator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	dispatchID := strings.TrimSpace(env.DispatchID)
	if dispatchID == "" {
		dispatchID = buildManualDispatchID(job.name, job.scope, h.now())
	}
	payload := buildInternalJobPayload(env, job)
	runCtx := context.WithoutCancel(ctx)
	opts := env.Options.toOptions()

	if env.Async {
		if _, running := h.coordinator.Current(); running {
			h.recordInternalJobDispatch(ctx, dispatchID, job, payload, syncrun.Result{}, usecase.ErrSyncAlreadyRunning)
			writeError(ctx, w, usecase.ErrSyncAlreadyRunning)
			return
		}
		go func() {
			result, err := job.run(runCtx, opts)
			h.recordInternalJobDispatch(runCtx, dispatchID, job, payload, result, err)
			if err != nil {
				h.logger.WarnContext(runCtx, "async sync job failed", "job", job.name, "dispatch_id", dispatchID, "error", err)
			}
		}()
		writeSuccess(ctx, w, http.StatusAccepted, acceptedJobDTO{DispatchID: dispatchID, JobName: job.name, Status: "accepted"})
		return
	}

	result, err := job.run(runCtx, opts)
	h.recordInternalJobDispatch(ctx, dispatchID, job, payload, result, err)
	if err != nil {
		if isConflict(err) {
			h.logger.InfoContext(ctx, "sync job rejected", "job", job.name, "dispatch_id", dispatchID)
		} else {
			h.logger.WarnContext(ctx, "sync job failed", "job", job.name, "dispatch_id", dispatchID, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncrun.NewReport(result))
}

func (h *Handler) deferSyncJob(ctx context.Context, w http.ResponseWriter, env jobEnvelope, job syncJob) {
	if h.dispatcher == nil {
		writeError(ctx, w, fmt.Errorf("%w: job dispatcher is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	payload := job.payload
	if opts := env.Options.toPayload(); len(opts) > 0 {
		payload["options"] = opts
	}
	receipt, err := h.dispatcher.Defer(ctx, usecase.SyncJob{
		Name:    job.name,
		Path:    job.path,
		Season:  job.season,
		Payload: payload,
	}, time.Duration(env.DeferSeconds)*time.Second)
	if err != nil {
		h.logger.WarnContext(ctx, "defer sync job failed", "job", job.name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, receipt)
}

func decodeInternalJobRequest(r *http.Request, out any) error {
	if err := decodeJSONBody(r, out); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}

var errEmptyBody = errors.New("empty request body")

func decodeJSONBody(r *http.Request, out any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", usecase.ErrInvalidInput, errEmptyBody)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) recordInternalJobDispatch(ctx context.Context, dispatchID string, job syncJob, payload map[string]any, result syncrun.Result, runErr error) {
	if h.dispatcher == nil {
		return
	}

	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    job.name,
		JobPath:    job.path,
		SyncID:     result.ID,
		Season:     job.season,
		Status:     jobscheduler.StatusCompleted,
		Payload:    payload,
		OccurredAt: h.now().UTC(),
	}
	switch {
	case runErr != nil:
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = runErr.Error()
	case result.Status == syncrun.StatusFailed:
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = fmt.Sprintf("sync %s finished with status %s", result.ID, result.Status)
	}

	h.dispatcher.RecordEvent(ctx, event)
}

func buildInternalJobPayload(env jobEnvelope, job syncJob) map[string]any {
	payload := make(map[string]any, len(job.payload)+2)
	for key, value := range job.payload {
		payload[key] = value
	}
	if opts := env.Options.toPayload(); len(opts) > 0 {
		payload["options"] = opts
	}
	if strings.TrimSpace(env.DispatchID) != "" {
		payload["dispatch_id"] = env.DispatchID
	}
	return payload
}

func buildManualDispatchID(jobName, scope string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	scope = sanitizeDispatchPart(scope)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + scope + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}

func (o *syncOptionsRequest) toOptions() syncrun.Options {
	opts := syncrun.DefaultOptions()
	if o == nil {
		return opts
	}
	if o.ForceFullSync != nil {
		opts.ForceFullSync = *o.ForceFullSync
	}
	if o.SkipInactives != nil {
		opts.SkipInactives = *o.SkipInactives
	}
	if o.BatchSize != nil {
		opts.BatchSize = *o.BatchSize
	}
	if o.DryRun != nil {
		opts.DryRun = *o.DryRun
	}
	if o.MaxRetries != nil {
		opts.MaxRetries = *o.MaxRetries
	}
	if o.RetryDelayMs != nil {
		opts.RetryDelay = time.Duration(*o.RetryDelayMs) * time.Millisecond
	}
	if o.SkipInvalidRecords != nil {
		opts.SkipInvalidRecords = *o.SkipInvalidRecords
	}
	if o.CreateBackup != nil {
		opts.CreateBackup = *o.CreateBackup
	}
	if o.ContinueOnError != nil {
		opts.ContinueOnError = *o.ContinueOnError
	}
	return opts
}

// toPayload keeps only the fields the caller set, so a deferred job
// decodes back into the same request.
func (o *syncOptionsRequest) toPayload() map[string]any {
	if o == nil {
		return nil
	}
	out := map[string]any{}
	setBool := func(key string, v *bool) {
		if v != nil {
			out[key] = *v
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			out[key] = *v
		}
	}
	setBool("force_full_sync", o.ForceFullSync)
	setBool("skip_inactives", o.SkipInactives)
	setInt("batch_size", o.BatchSize)
	setBool("dry_run", o.DryRun)
	setInt("max_retries", o.MaxRetries)
	setInt("retry_delay_ms", o.RetryDelayMs)
	setBool("skip_invalid_records", o.SkipInvalidRecords)
	setBool("create_backup", o.CreateBackup)
	setBool("continue_on_error", o.ContinueOnError)
	return out
}
