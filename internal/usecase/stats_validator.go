package usecase

import (
	"fmt"
	"math"

	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
)

const maxPasserRating = 158.3

type statPair struct {
	part  string
	whole string
}

type statCeiling struct {
	stat  string
	limit float64
}

type categoryRules struct {
	counting    []string
	pairs       []statPair
	percentages []string
	ratings     []string
	suspicious  []statCeiling
}

var statRules = map[playerstats.Category]categoryRules{
	playerstats.CategoryPassing: {
		counting:    []string{"attempts", "completions", "touchdowns", "interceptions", "sacks"},
		pairs:       []statPair{{part: "completions", whole: "attempts"}},
		percentages: []string{"completion_pct"},
		ratings:     []string{"rating"},
		suspicious:  []statCeiling{{stat: "yards", limit: 600}, {stat: "touchdowns", limit: 7}},
	},
	playerstats.CategoryRushing: {
		counting:   []string{"attempts", "touchdowns"},
		suspicious: []statCeiling{{stat: "yards", limit: 350}, {stat: "attempts", limit: 50}},
	},
	playerstats.CategoryReceiving: {
		counting:   []string{"targets", "receptions", "touchdowns"},
		pairs:      []statPair{{part: "receptions", whole: "targets"}},
		suspicious: []statCeiling{{stat: "yards", limit: 350}, {stat: "receptions", limit: 25}},
	},
	playerstats.CategoryDefense: {
		counting:   []string{"tackles", "solo_tackles", "assisted_tackles", "sacks", "interceptions", "passes_defended", "forced_fumbles", "touchdowns"},
		pairs:      []statPair{{part: "solo_tackles", whole: "tackles"}},
		suspicious: []statCeiling{{stat: "tackles", limit: 30}},
	},
	playerstats.CategoryKicking: {
		counting:    []string{"fg_made", "fg_attempted", "xp_made", "xp_attempted"},
		pairs:       []statPair{{part: "fg_made", whole: "fg_attempted"}, {part: "xp_made", whole: "xp_attempted"}},
		percentages: []string{"fg_pct"},
		suspicious:  []statCeiling{{stat: "longest_fg", limit: 70}},
	},
	playerstats.CategoryPunting: {
		counting:   []string{"punts", "yards", "inside_20", "touchbacks"},
		pairs:      []statPair{{part: "inside_20", whole: "punts"}},
		suspicious: []statCeiling{{stat: "longest", limit: 90}},
	},
	playerstats.CategoryReturns: {
		counting: []string{"kick_returns", "punt_returns", "touchdowns"},
	},
	playerstats.CategoryFumbles: {
		counting: []string{"fumbles", "lost", "recovered"},
		pairs:    []statPair{{part: "lost", whole: "fumbles"}},
	},
}

// StatsValidator range-checks combined stat lines.
type StatsValidator struct{}

func NewStatsValidator() *StatsValidator {
	return &StatsValidator{}
}

// Validate never fails outright; problems are reported in the result.
// Categories without any fields are skipped.
func (v *StatsValidator) Validate(record playerstats.CombinedStatRecord) playerstats.ValidationResult {
	result := playerstats.ValidationResult{Valid: true}
	if err := record.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	for _, category := range playerstats.AllCategories {
		rules, ok := statRules[category]
		if !ok {
			continue
		}
		field := func(stat string) (float64, bool) {
			return record.Field(category, stat)
		}

		for _, stat := range rules.counting {
			if value, ok := field(stat); ok && (value < 0 || math.IsNaN(value)) {
				result.Errors = append(result.Errors, fmt.Sprintf("%s must be >= 0, got %v", playerstats.FieldName(category, stat), value))
			}
		}
		for _, pair := range rules.pairs {
			part, okPart := field(pair.part)
			whole, okWhole := field(pair.whole)
			if okPart && okWhole && (part > whole || math.IsNaN(part) || math.IsNaN(whole)) {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"%s (%v) exceeds %s (%v)",
					playerstats.FieldName(category, pair.part), part,
					playerstats.FieldName(category, pair.whole), whole,
				))
			}
		}
		for _, stat := range rules.percentages {
			if value, ok := field(stat); ok && outsideRange(value, 0, 100) {
				result.Errors = append(result.Errors, fmt.Sprintf("%s must be within [0,100], got %v", playerstats.FieldName(category, stat), value))
			}
		}
		for _, stat := range rules.ratings {
			if value, ok := field(stat); ok && outsideRange(value, 0, maxPasserRating) {
				result.Errors = append(result.Errors, fmt.Sprintf("%s must be within [0,%v], got %v", playerstats.FieldName(category, stat), maxPasserRating, value))
			}
		}
		for _, ceiling := range rules.suspicious {
			if value, ok := field(ceiling.stat); ok && value > ceiling.limit {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s looks unusually high: %v", playerstats.FieldName(category, ceiling.stat), value))
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// outsideRange also rejects NaN, which fails every comparison.
func outsideRange(value, lo, hi float64) bool {
	return math.IsNaN(value) || value < lo || value > hi
}
