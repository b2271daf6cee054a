package usecase

import (
	"math"
	"strings"
	"testing"

	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
)

func TestStatsCombiner_LastWriteWins(t *testing.T) {
	t.Parallel()

	records := []playerstats.RawStatRecord{
		{
			PlayerExternalID: "p1", GameID: "g1", Season: 2025, Week: 1,
			FirstName: "Lamar", LastName: "Jackson", TeamAbbreviation: "BAL", Position: "QB",
			Category: playerstats.CategoryPassing,
			Fields:   map[string]float64{"passing_yards": 210, "shared_field": 1},
		},
		{
			PlayerExternalID: "p1", GameID: "g1",
			TeamAbbreviation: "XXX",
			Category:         playerstats.CategoryRushing,
			Fields:           map[string]float64{"rushing_yards": 88, "shared_field": 2},
		},
		{
			PlayerExternalID: "p1", GameID: "g1",
			Category: playerstats.CategoryPassing,
			Fields:   map[string]float64{"passing_touchdowns": 2},
		},
	}

	got, ok := NewStatsCombiner().Combine(records)
	if !ok {
		t.Fatalf("expected combined record")
	}
	if got.Fields["shared_field"] != 2 {
		t.Fatalf("expected later record to win, got %v", got.Fields["shared_field"])
	}
	if got.Fields["passing_yards"] != 210 || got.Fields["rushing_yards"] != 88 || got.Fields["passing_touchdowns"] != 2 {
		t.Fatalf("fields were not unioned: %v", got.Fields)
	}
	if got.TeamAbbreviation != "BAL" || got.Season != 2025 || got.Week != 1 {
		t.Fatalf("metadata must come from the first record: %+v", got)
	}
	if len(got.Categories) != 2 || got.Categories[0] != playerstats.CategoryPassing || got.Categories[1] != playerstats.CategoryRushing {
		t.Fatalf("unexpected categories: %v", got.Categories)
	}

	if _, ok := NewStatsCombiner().Combine(nil); ok {
		t.Fatalf("empty input must not produce a record")
	}
}

func TestStatsCombiner_GroupRawStatsKeepsOrder(t *testing.T) {
	t.Parallel()

	records := []playerstats.RawStatRecord{
		{PlayerExternalID: "p2", GameID: "g1", Category: playerstats.CategoryReceiving},
		{PlayerExternalID: "p1", GameID: "g1", Category: playerstats.CategoryPassing},
		{PlayerExternalID: "p2", GameID: "g1", Category: playerstats.CategoryFumbles},
		{PlayerExternalID: "", GameID: "g1", Category: playerstats.CategoryDefense},
		{PlayerExternalID: "p2", GameID: "g2", Category: playerstats.CategoryReturns},
	}

	groups, orphans := NewStatsCombiner().GroupRawStats(records)
	if len(groups) != 3 || len(orphans) != 1 {
		t.Fatalf("unexpected grouping: groups=%d orphans=%d", len(groups), len(orphans))
	}
	if groups[0].Key.String() != "p2@g1" || groups[1].Key.String() != "p1@g1" || groups[2].Key.String() != "p2@g2" {
		t.Fatalf("groups lost first-appearance order: %v %v %v", groups[0].Key, groups[1].Key, groups[2].Key)
	}
	if len(groups[0].Records) != 2 {
		t.Fatalf("expected two slices for p2@g1, got %d", len(groups[0].Records))
	}
}

func TestStatsValidator_Validate(t *testing.T) {
	t.Parallel()

	validator := NewStatsValidator()
	base := playerstats.CombinedStatRecord{PlayerExternalID: "p1", GameID: "g1"}

	tests := []struct {
		name      string
		fields    map[string]float64
		wantValid bool
		wantError string
		warnings  int
	}{
		{name: "no categories", fields: map[string]float64{}, wantValid: true},
		{
			name:      "clean passing line",
			fields:    map[string]float64{"passing_attempts": 35, "passing_completions": 24, "passing_yards": 280, "passing_completion_pct": 68.6, "passing_rating": 101.2},
			wantValid: true,
		},
		{
			name:      "completions exceed attempts",
			fields:    map[string]float64{"passing_attempts": 20, "passing_completions": 21},
			wantError: "passing_completions",
		},
		{
			name:      "negative counting stat",
			fields:    map[string]float64{"rushing_attempts": -1, "rushing_yards": -4},
			wantError: "rushing_attempts must be >= 0",
		},
		{
			name:      "percentage out of range",
			fields:    map[string]float64{"kicking_fg_pct": 120},
			wantError: "kicking_fg_pct",
		},
		{
			name:      "rating above maximum",
			fields:    map[string]float64{"passing_rating": 160},
			wantError: "passing_rating",
		},
		{
			name:      "NaN percentage",
			fields:    map[string]float64{"passing_completion_pct": math.NaN()},
			wantError: "passing_completion_pct must be within [0,100]",
		},
		{
			name:      "NaN rating",
			fields:    map[string]float64{"passing_rating": math.NaN()},
			wantError: "passing_rating must be within",
		},
		{
			name:      "suspicious yardage warns only",
			fields:    map[string]float64{"receiving_yards": 400, "receiving_receptions": 12, "receiving_targets": 14},
			wantValid: true,
			warnings:  1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			record := base
			record.Fields = tc.fields
			got := validator.Validate(record)
			if got.Valid != tc.wantValid {
				t.Fatalf("valid mismatch: got=%v errors=%v", got.Valid, got.Errors)
			}
			if tc.wantError != "" && !strings.Contains(strings.Join(got.Errors, "|"), tc.wantError) {
				t.Fatalf("expected error containing %q, got %v", tc.wantError, got.Errors)
			}
			if len(got.Warnings) != tc.warnings {
				t.Fatalf("warning count mismatch: got=%v", got.Warnings)
			}
		})
	}
}

func TestStatsValidator_MissingKeyIsError(t *testing.T) {
	t.Parallel()

	got := NewStatsValidator().Validate(playerstats.CombinedStatRecord{GameID: "g1"})
	if got.Valid || len(got.Errors) != 1 {
		t.Fatalf("expected one identity error, got %+v", got)
	}
}
