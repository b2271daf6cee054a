package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

type Handler struct {
	coordinator  *usecase.SyncCoordinator
	reports      *usecase.SyncReportService
	links        *usecase.PlayerLinkService
	dispatcher   *usecase.SyncJobDispatcher
	dispatchRepo jobscheduler.Repository
	logger       *logging.Logger
	validator    *validator.Validate
	now          func() time.Time
}

func NewHandler(
	coordinator *usecase.SyncCoordinator,
	reports *usecase.SyncReportService,
	links *usecase.PlayerLinkService,
	dispatcher *usecase.SyncJobDispatcher,
	dispatchRepo jobscheduler.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		coordinator:  coordinator,
		reports:      reports,
		links:        links,
		dispatcher:   dispatcher,
		dispatchRepo: dispatchRepo,
		logger:       logger,
		validator:    validator.New(),
		now:          time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSyncStatus reports the running sync, falling back to the last finished
// run of this process.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncStatus")
	defer span.End()

	if h.reports == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync report service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	current, running := h.reports.Current()
	out := syncStatusDTO{Running: running, Current: current}
	if !running && h.coordinator != nil {
		if last, ok := h.coordinator.Last(); ok {
			report := syncrun.NewReport(last)
			out.Last = &report
		}
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListSyncReports(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSyncReports")
	defer span.End()

	if h.reports == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync report service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.reports.ListReports(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list sync reports failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSyncReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncReport")
	defer span.End()

	if h.reports == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync report service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	syncID := strings.TrimSpace(r.PathValue("syncID"))
	report, err := h.reports.GetReport(ctx, syncID)
	if err != nil {
		h.logger.WarnContext(ctx, "get sync report failed", "sync_id", syncID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) ListPendingReviews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingReviews")
	defer span.End()

	if h.links == nil {
		writeError(ctx, w, fmt.Errorf("%w: player link service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.links.PendingReviews(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list pending reviews failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]reviewDTO, 0, len(items))
	for _, item := range items {
		out = append(out, reviewToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) LinkPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LinkPlayer")
	defer span.End()

	if h.links == nil {
		writeError(ctx, w, fmt.Errorf("%w: player link service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	candidateID, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("candidateID")), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: candidate id must be an integer", usecase.ErrInvalidInput))
		return
	}

	var req linkPlayerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.links.Link(ctx, candidateID, req.ExternalID)
	if err != nil {
		h.logger.WarnContext(ctx, "link player failed", "candidate_id", candidateID, "external_id", req.ExternalID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListDispatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDispatchEvents")
	defer span.End()

	if h.dispatchRepo == nil {
		writeError(ctx, w, fmt.Errorf("%w: job dispatch repository is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	dispatchID := strings.TrimSpace(r.PathValue("dispatchID"))
	if dispatchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: dispatch id is required", usecase.ErrInvalidInput))
		return
	}

	events, err := h.dispatchRepo.ListByDispatchID(ctx, dispatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list dispatch events failed", "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, fmt.Errorf("%w: list dispatch events: %v", usecase.ErrDependencyUnavailable, err))
		return
	}
	if len(events) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: dispatch=%s", usecase.ErrNotFound, dispatchID))
		return
	}

	out := make([]dispatchEventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, dispatchEventToDTO(event))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return limit, nil
}

type linkPlayerRequest struct {
	ExternalID string `json:"external_id" validate:"required,max=64"`
}

type syncStatusDTO struct {
	Running bool            `json:"running"`
	Current syncrun.Result  `json:"current"`
	Last    *syncrun.Report `json:"last,omitempty"`
}

type reviewDTO struct {
	SyncID       string                    `json:"sync_id"`
	ExternalID   string                    `json:"external_id"`
	ExternalName string                    `json:"external_name"`
	CandidateID  *int64                    `json:"candidate_id,omitempty"`
	Confidence   float64                   `json:"confidence_score"`
	Method       matching.Method           `json:"method"`
	Alternates   []matching.MatchCandidate `json:"alternates,omitempty"`
	CreatedAtUTC string                    `json:"created_at_utc"`
}

type dispatchEventDTO struct {
	DispatchID   string         `json:"dispatch_id"`
	JobName      string         `json:"job_name"`
	JobPath      string         `json:"job_path"`
	SyncID       string         `json:"sync_id,omitempty"`
	Season       int            `json:"season,omitempty"`
	Status       string         `json:"status"`
	Payload      map[string]any `json:"payload,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	OccurredAt   string         `json:"occurred_at"`
	TraceID      string         `json:"trace_id,omitempty"`
	SpanID       string         `json:"span_id,omitempty"`
}

func reviewToDTO(v matching.Review) reviewDTO {
	return reviewDTO{
		SyncID:       v.SyncID,
		ExternalID:   v.Result.ExternalID,
		ExternalName: v.Result.ExternalName,
		CandidateID:  v.Result.MatchedCandidateID,
		Confidence:   v.Result.ConfidenceScore,
		Method:       v.Result.Method,
		Alternates:   v.Result.Alternates,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func dispatchEventToDTO(v jobscheduler.DispatchEvent) dispatchEventDTO {
	return dispatchEventDTO{
		DispatchID:   v.DispatchID,
		JobName:      v.JobName,
		JobPath:      v.JobPath,
		SyncID:       v.SyncID,
		Season:       v.Season,
		Status:       string(v.Status),
		Payload:      v.Payload,
		ErrorMessage: v.ErrorMessage,
		OccurredAt:   v.OccurredAt.UTC().Format(time.RFC3339),
		TraceID:      v.TraceID,
		SpanID:       v.SpanID,
	}
}

func isConflict(err error) bool {
	return errors.Is(err, usecase.ErrSyncAlreadyRunning)
}
