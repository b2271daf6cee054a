package sportsdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "secret-key",
		Timeout: 2 * time.Second,
		Logger:  logging.NewNop(),
	})
}

func TestClient_FetchRoster(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scores/json/Players" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get(apiKeyHeader) != "secret-key" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`[
			{"PlayerID":4314,"FirstName":"Patrick","LastName":"Mahomes","Name":"Patrick Mahomes","Team":"kc","Position":"qb","Status":"Active"},
			{"PlayerID":0,"FirstName":"Ghost"},
			{"PlayerID":19800,"FirstName":"Tom","LastName":"Brady","Team":"","Position":"QB","Status":"Retired"}
		]`))
	})

	got, err := client.FetchRoster(context.Background())
	if err != nil {
		t.Fatalf("fetch roster: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected rows without id to be dropped, got %d", len(got))
	}
	if got[0].ExternalID != "4314" || got[0].TeamAbbreviation != "KC" || got[0].Position != "QB" || !got[0].Active {
		t.Fatalf("unexpected first player: %+v", got[0])
	}
	if got[1].Active {
		t.Fatalf("retired player must be inactive")
	}
}

func TestClient_FetchGamesForDateUsesProviderFormat(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scores/json/ScoresByDate/2025-SEP-07" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"ScoreID":19001,"GameKey":"202510105","Season":2025,"Week":1,"HomeTeam":"buf","AwayTeam":"BAL","DateTime":"2025-09-07T20:20:00","Status":"Final"}]`))
	})

	got, err := client.FetchGamesForDate(context.Background(), time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch games: %v", err)
	}
	if len(got) != 1 || got[0].GameID != "19001" || got[0].HomeTeam != "BUF" || got[0].Week != 1 {
		t.Fatalf("unexpected games: %+v", got)
	}
	if got[0].KickoffAt.IsZero() {
		t.Fatalf("expected kickoff to be parsed")
	}
}

func TestClient_FetchRawStatsSplitsCategories(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats/json/PlayerGameStatsByScoreID/19001" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"PlayerID":4314,"Name":"Patrick Mahomes","Team":"KC","Position":"QB","Season":2025,"Week":1,
			 "PassingAttempts":35,"PassingCompletions":24,"PassingYards":291,"RushingAttempts":5,"RushingYards":30,"Fumbles":0,"ReceivingYards":0},
			{"Name":"No Id","PassingYards":10}
		]`))
	})

	got, err := client.FetchRawStats(context.Background(), "19001")
	if err != nil {
		t.Fatalf("fetch stats: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected passing and rushing slices, got %d: %+v", len(got), got)
	}
	if got[0].Category != playerstats.CategoryPassing || got[1].Category != playerstats.CategoryRushing {
		t.Fatalf("unexpected category order: %s %s", got[0].Category, got[1].Category)
	}
	passing := got[0]
	if passing.PlayerExternalID != "4314" || passing.GameID != "19001" || passing.FirstName != "Patrick" || passing.LastName != "Mahomes" {
		t.Fatalf("unexpected identity: %+v", passing)
	}
	if passing.Fields["passing_completions"] != 24 || passing.Fields["passing_attempts"] != 35 || len(passing.Fields) != 3 {
		t.Fatalf("unexpected passing fields: %v", passing.Fields)
	}
	if got[1].Fields["rushing_yards"] != 30 {
		t.Fatalf("unexpected rushing fields: %v", got[1].Fields)
	}
}

func TestClient_ClassifiesProviderFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "server error", status: http.StatusServiceUnavailable, wantTransient: true},
		{name: "rate limited", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "not found", status: http.StatusNotFound, wantTransient: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := client.FetchGamesForWeek(context.Background(), 2025, 1)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, usecase.ErrTransientProvider); got != tc.wantTransient {
				t.Fatalf("transient mismatch: got=%v err=%v", got, err)
			}
		})
	}
}

func TestClient_ValidatesArguments(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchGamesForWeek(context.Background(), 0, 1); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := client.FetchRawStats(context.Background(), " "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	first, last := splitName("Amon-Ra St. Brown")
	if first != "Amon-Ra" || last != "St. Brown" {
		t.Fatalf("unexpected split: %q %q", first, last)
	}
	if first, last := splitName("Pele"); first != "" || last != "Pele" {
		t.Fatalf("unexpected single-token split: %q %q", first, last)
	}
}
