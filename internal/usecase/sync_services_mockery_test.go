package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	jobschedulermock "github.com/riskibarqy/gridiron-sync/internal/mocks/domain/jobscheduler"
	matchingmock "github.com/riskibarqy/gridiron-sync/internal/mocks/domain/matching"
	playermock "github.com/riskibarqy/gridiron-sync/internal/mocks/domain/player"
	syncrunmock "github.com/riskibarqy/gridiron-sync/internal/mocks/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestSyncReportService_GetReportUsingMockery(t *testing.T) {
	t.Parallel()

	reports := syncrunmock.NewRepository(t)
	service := NewSyncReportService(reports, nil)

	stored := syncrun.NewReport(*syncrun.NewResult("sync-1", syncrun.TypePlayers, fixedMatchTime))
	reports.On("GetByID", mock.Anything, "sync-1").Return(stored, true, nil).Once()
	reports.On("GetByID", mock.Anything, "sync-404").Return(syncrun.Report{}, false, nil).Once()

	got, err := service.GetReport(context.Background(), " sync-1 ")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got.ID != "sync-1" {
		t.Fatalf("unexpected report id: %s", got.ID)
	}

	if _, err := service.GetReport(context.Background(), "sync-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.GetReport(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSyncReportService_ListReportsClampsLimitUsingMockery(t *testing.T) {
	t.Parallel()

	reports := syncrunmock.NewRepository(t)
	service := NewSyncReportService(reports, nil)

	reports.On("ListRecent", mock.Anything, defaultReportListLimit).Return([]syncrun.Report{}, nil).Once()
	reports.On("ListRecent", mock.Anything, maxReportListLimit).Return(nil, errors.New("db down")).Once()

	if _, err := service.ListReports(context.Background(), 0); err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if _, err := service.ListReports(context.Background(), 5000); err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestSyncReportService_CurrentIdleWithoutRun(t *testing.T) {
	t.Parallel()

	service := NewSyncReportService(syncrunmock.NewRepository(t), newSyncFixture(&fakeDataSource{}, nil, SyncCoordinatorConfig{}).coordinator)
	got, ok := service.Current()
	if ok || got.Status != syncrun.StatusIdle {
		t.Fatalf("expected idle status, got ok=%v status=%s", ok, got.Status)
	}
}

func TestPlayerLinkService_LinkUsingMockery(t *testing.T) {
	t.Parallel()

	players := playermock.NewRepository(t)
	service := NewPlayerLinkService(newTestMatcher(1), players, nil, logging.NewNop())

	players.On("LinkExternalID", mock.Anything, int64(42), "sd-42").Return(true, nil).Once()
	players.On("LinkExternalID", mock.Anything, int64(43), "sd-43").Return(false, nil).Once()

	got, err := service.Link(context.Background(), 42, " sd-42 ")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if got.Method != matching.MethodManualLink || *got.MatchedCandidateID != 42 {
		t.Fatalf("unexpected link result: %+v", got)
	}

	if _, err := service.Link(context.Background(), 43, "sd-43"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing candidate, got %v", err)
	}
	if _, err := service.Link(context.Background(), -1, "sd-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerLinkService_LinkResolvesReviewUsingMockery(t *testing.T) {
	t.Parallel()

	players := playermock.NewRepository(t)
	reviews := matchingmock.NewReviewRepository(t)
	service := NewPlayerLinkService(newTestMatcher(1), players, reviews, logging.NewNop())

	players.On("LinkExternalID", mock.Anything, int64(7), "sd-7").Return(true, nil).Once()
	reviews.On("Resolve", mock.Anything, "sd-7").Return(errors.New("db down")).Once()

	// a failed resolve does not undo the link
	if _, err := service.Link(context.Background(), 7, "sd-7"); err != nil {
		t.Fatalf("link: %v", err)
	}
}

func TestPlayerLinkService_PendingReviewsUsingMockery(t *testing.T) {
	t.Parallel()

	reviews := matchingmock.NewReviewRepository(t)
	service := NewPlayerLinkService(newTestMatcher(1), playermock.NewRepository(t), reviews, logging.NewNop())

	reviews.
		On("ListPending", mock.Anything, 50).
		Return([]matching.Review{{SyncID: "sync-1", Result: matching.MatchResult{ExternalID: "sd-9"}}}, nil).
		Once()

	got, err := service.PendingReviews(context.Background(), 0)
	if err != nil {
		t.Fatalf("pending reviews: %v", err)
	}
	if len(got) != 1 || got[0].Result.ExternalID != "sd-9" {
		t.Fatalf("unexpected reviews: %+v", got)
	}
}

type recordingQueue struct {
	err   error
	calls []string
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, _ any, _ time.Duration, deduplicationID string) error {
	q.calls = append(q.calls, path+"#"+deduplicationID)
	return q.err
}

func TestSyncJobDispatcher_DeferRecordsQueuedEventUsingMockery(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	events := jobschedulermock.NewRepository(t)
	dispatcher := NewSyncJobDispatcher(queue, events, logging.NewNop())
	dispatcher.now = func() time.Time { return time.Date(2025, 9, 7, 17, 0, 42, 0, time.UTC) }

	events.
		On("UpsertEvent", mock.Anything, mock.MatchedBy(func(event jobscheduler.DispatchEvent) bool {
			return event.Status == jobscheduler.StatusQueued && event.Season == 2025 && event.Payload["dispatch_id"] == event.DispatchID
		})).
		Return(nil).
		Once()

	receipt, err := dispatcher.Defer(context.Background(), SyncJob{
		Name:    "full-sync",
		Path:    "/v1/internal/jobs/full-sync",
		Season:  2025,
		Payload: map[string]any{"season": 2025},
	}, 30*time.Second)
	if err != nil {
		t.Fatalf("defer: %v", err)
	}

	if want := "full-sync-s2025-20250907T170100Z"; receipt.DispatchID != want {
		t.Fatalf("unexpected dispatch id: got=%q want=%q", receipt.DispatchID, want)
	}
	if len(queue.calls) != 1 || queue.calls[0] != "/v1/internal/jobs/full-sync#"+receipt.DispatchID {
		t.Fatalf("unexpected queue calls: %v", queue.calls)
	}
}

func TestSyncJobDispatcher_DeferFailureUsingMockery(t *testing.T) {
	t.Parallel()

	events := jobschedulermock.NewRepository(t)
	dispatcher := NewSyncJobDispatcher(&recordingQueue{err: errors.New("qstash 500")}, events, logging.NewNop())

	events.
		On("UpsertEvent", mock.Anything, mock.MatchedBy(func(event jobscheduler.DispatchEvent) bool {
			return event.Status == jobscheduler.StatusFailed && strings.Contains(event.ErrorMessage, "qstash 500")
		})).
		Return(nil).
		Once()

	_, err := dispatcher.Defer(context.Background(), SyncJob{Name: "sync-players", Path: "/v1/internal/jobs/sync-players"}, 0)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	if _, err := dispatcher.Defer(context.Background(), SyncJob{Name: "x"}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing path, got %v", err)
	}
}

func TestDedupKey_UsesQueueSafeFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.February, 25, 4, 25, 42, 0, time.UTC)
	got := dedupKey("sync-stats", "s2025:w3/pre", at, 5*time.Minute)

	if strings.Contains(got, ":") {
		t.Fatalf("dedup key must not contain colon, got=%q", got)
	}
	if want := "sync-stats-s2025-w3-pre-20260225T042500Z"; got != want {
		t.Fatalf("unexpected dedup key: got=%q want=%q", got, want)
	}
	if got := sanitizeDedupSegment(" \t "); got != "unknown" {
		t.Fatalf("unexpected sanitize fallback: got=%q", got)
	}
}
