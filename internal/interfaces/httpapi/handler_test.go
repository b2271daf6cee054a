package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

const testJobToken = "job-secret"

type stubSource struct {
	roster []player.ExternalPlayer
	gate   chan struct{}
}

func (s *stubSource) FetchRoster(ctx context.Context) ([]player.ExternalPlayer, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return append([]player.ExternalPlayer(nil), s.roster...), nil
}

func (s *stubSource) FetchGamesForWeek(context.Context, int, int) ([]playerstats.GameRef, error) {
	return nil, nil
}

func (s *stubSource) FetchGamesForDate(context.Context, time.Time) ([]playerstats.GameRef, error) {
	return nil, nil
}

func (s *stubSource) FetchRawStats(context.Context, string) ([]playerstats.RawStatRecord, error) {
	return nil, nil
}

type capturingQueue struct {
	mu       sync.Mutex
	paths    []string
	payloads []any
}

func (q *capturingQueue) Enqueue(_ context.Context, path string, payload any, _ time.Duration, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paths = append(q.paths, path)
	q.payloads = append(q.payloads, payload)
	return nil
}

type apiFixture struct {
	router      http.Handler
	coordinator *usecase.SyncCoordinator
	dispatches  *memory.JobDispatchRepository
	reviews     *memory.MatchReviewRepository
	queue       *capturingQueue
}

func newAPIFixture(source *stubSource) *apiFixture {
	logger := logging.NewNop()
	players := memory.NewPlayerRepository([]player.Candidate{
		{ID: 10, FirstName: "Patrick", LastName: "Mahomes", TeamAbbreviation: "KC", Position: "QB", Active: true},
		{ID: 11, FirstName: "Travis", LastName: "Kelce", TeamAbbreviation: "KC", Position: "TE", Active: true},
	})
	reports := memory.NewSyncReportRepository()
	reviews := memory.NewMatchReviewRepository()
	dispatches := memory.NewJobDispatchRepository()
	queue := &capturingQueue{}

	matcher := usecase.NewPlayerMatcher(matching.DefaultOptions(), nil, logger)
	coordinator := usecase.NewSyncCoordinator(
		source,
		usecase.NewRepositoryPersistence(players, memory.NewPlayerStatsRepository(), reports),
		matcher,
		usecase.SyncCollaborators{Reviews: reviews},
		nil,
		usecase.SyncCoordinatorConfig{},
		logger,
	)
	handler := NewHandler(
		coordinator,
		usecase.NewSyncReportService(reports, coordinator),
		usecase.NewPlayerLinkService(matcher, players, reviews, logger),
		usecase.NewSyncJobDispatcher(queue, dispatches, logger),
		dispatches,
		logger,
	)

	return &apiFixture{
		router:      NewRouter(handler, logger, RouterConfig{InternalJobToken: testJobToken}),
		coordinator: coordinator,
		dispatches:  dispatches,
		reviews:     reviews,
		queue:       queue,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, envelope
}

func testRosterSource() *stubSource {
	return &stubSource{roster: []player.ExternalPlayer{
		{ExternalID: "sd-1", FirstName: "Patrick", LastName: "Mahomes", TeamAbbreviation: "KC", Position: "QB", Active: true},
		{ExternalID: "sd-2", FirstName: "Travis", LastName: "Kelce", TeamAbbreviation: "KC", Position: "TE", Active: true},
	}}
}

func TestRunSyncPlayersJob_RunsInlineAndRecordsDispatch(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	code, body := fx.do(t, http.MethodPost, jobPathSyncPlayers, `{"dispatch_id":"d-1","options":{"retry_delay_ms":0}}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%v", code, body)
	}

	data, _ := body["data"].(map[string]any)
	if data["status"] != string(syncrun.StatusCompleted) {
		t.Fatalf("unexpected status: %v", data["status"])
	}
	if data["players_processed"] != float64(2) || data["success_rate"] != float64(100) {
		t.Fatalf("unexpected report: %v", data)
	}

	events, err := fx.dispatches.ListByDispatchID(context.Background(), "d-1")
	if err != nil {
		t.Fatalf("list dispatch events: %v", err)
	}
	if len(events) != 1 || events[0].Status != jobscheduler.StatusCompleted || events[0].SyncID != data["id"] {
		t.Fatalf("unexpected dispatch events: %+v", events)
	}
}

func TestRunSyncJob_RequiresInternalToken(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	req := httptest.NewRequest(http.MethodPost, jobPathSyncPlayers, nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRunSyncStatsJob_RejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "missing week", path: jobPathSyncStats, body: `{"season":2025}`},
		{name: "unknown field", path: jobPathSyncStats, body: `{"season":2025,"week":1,"league":"nfl"}`},
		{name: "bad batch size", path: jobPathSyncStats, body: `{"season":2025,"week":1,"options":{"batch_size":0}}`},
		{name: "bad date", path: jobPathSyncDateRange, body: `{"start_date":"2025-09-31","end_date":"2025-10-01"}`},
		{name: "empty full sync", path: jobPathFullSync, body: ``},
	}

	for _, tc := range tests {
		code, body := fx.do(t, http.MethodPost, tc.path, tc.body)
		if code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%v", tc.name, code, body)
		}
	}
}

func TestRunFullSyncJob_DeferQueuesReplayablePayload(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	code, body := fx.do(t, http.MethodPost, jobPathFullSync, `{"season":2025,"defer_seconds":120,"options":{"dry_run":true}}`)
	if code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%v", code, body)
	}

	data, _ := body["data"].(map[string]any)
	dispatchID, _ := data["dispatch_id"].(string)
	if !strings.HasPrefix(dispatchID, "full-sync-s2025-") {
		t.Fatalf("unexpected dispatch id: %q", dispatchID)
	}

	if len(fx.queue.paths) != 1 || fx.queue.paths[0] != jobPathFullSync {
		t.Fatalf("unexpected queued paths: %v", fx.queue.paths)
	}
	payload, _ := fx.queue.payloads[0].(map[string]any)
	if _, ok := payload["defer_seconds"]; ok {
		t.Fatalf("deferred payload must not defer again: %v", payload)
	}
	options, _ := payload["options"].(map[string]any)
	if payload["season"] != 2025 || options["dry_run"] != true {
		t.Fatalf("unexpected deferred payload: %v", payload)
	}

	events, _ := fx.dispatches.ListByDispatchID(context.Background(), dispatchID)
	if len(events) != 1 || events[0].Status != jobscheduler.StatusQueued {
		t.Fatalf("expected queued dispatch event, got %+v", events)
	}
}

func TestRunSyncJob_ConflictWhileRunning(t *testing.T) {
	t.Parallel()

	source := testRosterSource()
	source.gate = make(chan struct{})
	fx := newAPIFixture(source)

	code, body := fx.do(t, http.MethodPost, jobPathSyncPlayers, `{"async":true,"dispatch_id":"d-async"}`)
	if code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%v", code, body)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, running := fx.coordinator.Current(); running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("async sync never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	code, body = fx.do(t, http.MethodPost, jobPathSyncPlayers, `{}`)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 while running, got %d body=%v", code, body)
	}

	code, body = fx.do(t, http.MethodGet, "/v1/internal/sync/status", "")
	data, _ := body["data"].(map[string]any)
	if code != http.StatusOK || data["running"] != true {
		t.Fatalf("expected running status, got %d %v", code, body)
	}

	close(source.gate)
	for {
		if last, ok := fx.coordinator.Last(); ok && last.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("async sync never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCancelSyncJob_IdleReportsFalse(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	code, body := fx.do(t, http.MethodPost, jobPathCancel, "")
	data, _ := body["data"].(map[string]any)
	if code != http.StatusOK || data["cancelled"] != false {
		t.Fatalf("unexpected cancel response: %d %v", code, body)
	}
}

func TestSyncReports_ListAndGet(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	if code, body := fx.do(t, http.MethodPost, jobPathSyncPlayers, `{}`); code != http.StatusOK {
		t.Fatalf("seed sync failed: %d %v", code, body)
	}

	code, body := fx.do(t, http.MethodGet, "/v1/internal/sync/reports?limit=5", "")
	items, _ := body["data"].([]any)
	if code != http.StatusOK || len(items) != 1 {
		t.Fatalf("unexpected reports: %d %v", code, body)
	}
	syncID, _ := items[0].(map[string]any)["id"].(string)

	code, body = fx.do(t, http.MethodGet, "/v1/internal/sync/reports/"+syncID, "")
	if code != http.StatusOK {
		t.Fatalf("expected report, got %d %v", code, body)
	}

	if code, _ := fx.do(t, http.MethodGet, "/v1/internal/sync/reports/missing", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown report, got %d", code)
	}
	if code, _ := fx.do(t, http.MethodGet, "/v1/internal/sync/reports?limit=abc", ""); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", code)
	}

	code, body = fx.do(t, http.MethodGet, "/v1/internal/sync/status", "")
	data, _ := body["data"].(map[string]any)
	last, _ := data["last"].(map[string]any)
	if code != http.StatusOK || data["running"] != false || last["id"] != syncID {
		t.Fatalf("expected last run in status, got %d %v", code, body)
	}
}

func TestLinkPlayer_ManualLink(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	code, body := fx.do(t, http.MethodPost, "/v1/internal/players/11/link", `{"external_id":"sd-99"}`)
	data, _ := body["data"].(map[string]any)
	if code != http.StatusOK || data["method"] != string(matching.MethodManualLink) {
		t.Fatalf("unexpected link response: %d %v", code, body)
	}

	if code, _ := fx.do(t, http.MethodPost, "/v1/internal/players/abc/link", `{"external_id":"sd-99"}`); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad candidate id, got %d", code)
	}
	if code, _ := fx.do(t, http.MethodPost, "/v1/internal/players/999/link", `{"external_id":"sd-98"}`); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown candidate, got %d", code)
	}
	if code, _ := fx.do(t, http.MethodPost, "/v1/internal/players/11/link", ``); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", code)
	}
}

func TestListPendingReviews(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	candidateID := int64(10)
	err := fx.reviews.Save(context.Background(), matching.Review{
		SyncID:    "sync-1",
		Result:    matching.MatchResult{ExternalID: "sd-7", ExternalName: "Pat Mahomes", MatchedCandidateID: &candidateID, ConfidenceScore: 0.7},
		CreatedAt: time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}

	code, body := fx.do(t, http.MethodGet, "/v1/internal/players/reviews", "")
	items, _ := body["data"].([]any)
	if code != http.StatusOK || len(items) != 1 {
		t.Fatalf("unexpected reviews response: %d %v", code, body)
	}
	item, _ := items[0].(map[string]any)
	if item["external_id"] != "sd-7" || item["candidate_id"] != float64(10) || item["created_at_utc"] != "2025-09-07T17:00:00Z" {
		t.Fatalf("unexpected review: %v", item)
	}
}

func TestListDispatchEvents_UnknownIsNotFound(t *testing.T) {
	t.Parallel()

	fx := newAPIFixture(testRosterSource())
	if code, _ := fx.do(t, http.MethodGet, "/v1/internal/jobs/dispatches/none", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestSyncOptionsRequest_ToOptionsKeepsDefaults(t *testing.T) {
	t.Parallel()

	var nilReq *syncOptionsRequest
	if got := nilReq.toOptions(); got != syncrun.DefaultOptions() {
		t.Fatalf("nil request must yield defaults, got %+v", got)
	}

	batch, delay, dry := 25, 1500, true
	got := (&syncOptionsRequest{BatchSize: &batch, RetryDelayMs: &delay, DryRun: &dry}).toOptions()
	if got.BatchSize != 25 || got.RetryDelay != 1500*time.Millisecond || !got.DryRun || !got.ContinueOnError {
		t.Fatalf("unexpected options: %+v", got)
	}
}
