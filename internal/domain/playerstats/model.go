package playerstats

import (
	"fmt"
	"strings"
	"time"
)

// Category is one per-position stat section a provider emits separately.
type Category string

const (
	CategoryPassing   Category = "passing"
	CategoryRushing   Category = "rushing"
	CategoryReceiving Category = "receiving"
	CategoryDefense   Category = "defense"
	CategoryKicking   Category = "kicking"
	CategoryPunting   Category = "punting"
	CategoryReturns   Category = "returns"
	CategoryFumbles   Category = "fumbles"
)

var AllCategories = []Category{
	CategoryPassing,
	CategoryRushing,
	CategoryReceiving,
	CategoryDefense,
	CategoryKicking,
	CategoryPunting,
	CategoryReturns,
	CategoryFumbles,
}

// FieldName namespaces a stat under its category, e.g. passing_yards.
func FieldName(category Category, stat string) string {
	return string(category) + "_" + stat
}

// GameRef identifies one game on the provider side.
type GameRef struct {
	GameID    string
	Season    int
	Week      int
	HomeTeam  string
	AwayTeam  string
	KickoffAt time.Time
	Status    string
}

// RawStatRecord is a single category slice for a (player, game) pair.
type RawStatRecord struct {
	PlayerExternalID string
	GameID           string
	Season           int
	Week             int
	FirstName        string
	LastName         string
	TeamAbbreviation string
	Position         string
	Category         Category
	Fields           map[string]float64
}

func (r RawStatRecord) Key() Key {
	return Key{PlayerExternalID: r.PlayerExternalID, GameID: r.GameID}
}

// Key groups raw slices belonging to one player in one game.
type Key struct {
	PlayerExternalID string
	GameID           string
}

func (k Key) String() string {
	return k.PlayerExternalID + "@" + k.GameID
}

// CombinedStatRecord is the canonical merged stat line for a player in a game.
type CombinedStatRecord struct {
	PlayerExternalID string
	CandidateID      int64
	GameID           string
	Season           int
	Week             int
	FirstName        string
	LastName         string
	TeamAbbreviation string
	Position         string
	Categories       []Category
	Fields           map[string]float64
}

func (r CombinedStatRecord) Key() Key {
	return Key{PlayerExternalID: r.PlayerExternalID, GameID: r.GameID}
}

func (r CombinedStatRecord) HasCategory(category Category) bool {
	for _, item := range r.Categories {
		if item == category {
			return true
		}
	}
	return false
}

// Field returns a stat value and whether it was reported.
func (r CombinedStatRecord) Field(category Category, stat string) (float64, bool) {
	value, ok := r.Fields[FieldName(category, stat)]
	return value, ok
}

func (r CombinedStatRecord) Validate() error {
	if strings.TrimSpace(r.PlayerExternalID) == "" {
		return fmt.Errorf("player external id is required")
	}
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	return nil
}

// ValidationResult holds the outcome of range and sanity checks.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
