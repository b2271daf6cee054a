package syncrun

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		processed int
		counts    ErrorCounts
		warnings  int
		wantRate  float64
		want      Status
	}{
		{name: "mostly failing", processed: 100, counts: ErrorCounts{DataErrors: 60}, wantRate: 40, want: StatusFailed},
		{name: "mostly fine", processed: 100, counts: ErrorCounts{DataErrors: 10}, wantRate: 90, want: StatusPartiallyCompleted},
		{name: "exactly half", processed: 10, counts: ErrorCounts{APIErrors: 5}, wantRate: 50, want: StatusFailed},
		{name: "warnings only", processed: 100, warnings: 1, wantRate: 100, want: StatusCompletedWithWarnings},
		{name: "all zero", wantRate: 100, want: StatusCompleted},
		{name: "errors with nothing processed", counts: ErrorCounts{MatchingErrors: 1}, wantRate: 100, want: StatusPartiallyCompleted},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SuccessRate(tc.processed, tc.counts); got != tc.wantRate {
				t.Fatalf("success rate mismatch: got=%v want=%v", got, tc.wantRate)
			}
			if got := DeriveStatus(tc.processed, tc.counts, tc.warnings); got != tc.want {
				t.Fatalf("status mismatch: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestResultFinish_KeepsCancelled(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	result := NewResult("sync-1", TypePlayers, start)
	result.PlayersProcessed = 20
	result.ErrorCounts.DataErrors = 15
	result.Status = StatusCancelled
	result.Finish(start.Add(3 * time.Second))

	if result.Status != StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", result.Status)
	}
	if result.PlayersProcessed != 20 || result.ErrorCounts.DataErrors != 15 {
		t.Fatalf("counters must survive cancellation: %+v", result)
	}

	report := NewReport(result.Clone())
	if report.DurationMs != 3000 {
		t.Fatalf("expected 3000ms duration, got %d", report.DurationMs)
	}
	if report.SuccessRate != 25 {
		t.Fatalf("expected 25%% success rate, got %v", report.SuccessRate)
	}
}

func TestResultMerge(t *testing.T) {
	t.Parallel()

	total := NewResult("full", TypeFull, time.Now())
	total.Merge(&Result{PlayersProcessed: 3, PlayersUpdated: 2, NewPlayersAdded: 1, Warnings: []string{"w"}})
	total.Merge(&Result{StatsProcessed: 40, StatsUpserted: 38, ErrorCounts: ErrorCounts{APIErrors: 2}, Errors: []string{"a", "b"}})
	total.Merge(nil)

	if total.Processed() != 43 {
		t.Fatalf("expected 43 processed, got %d", total.Processed())
	}
	if total.ErrorCounts.Total() != 2 || len(total.Errors) != 2 || len(total.Warnings) != 1 {
		t.Fatalf("unexpected merged result: %+v", total)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	t.Parallel()

	got := Options{DryRun: true}.WithDefaults()
	if got.BatchSize != DefaultBatchSize {
		t.Fatalf("expected default batch size, got %d", got.BatchSize)
	}
	if !got.DryRun {
		t.Fatalf("dry run flag must be kept")
	}

	defaults := DefaultOptions()
	if !defaults.SkipInvalidRecords || !defaults.ContinueOnError || defaults.RetryDelay != time.Second {
		t.Fatalf("unexpected defaults: %+v", defaults)
	}
}
