package playerstats

import "context"

// Repository persists combined per-game stat lines.
type Repository interface {
	UpsertCombined(ctx context.Context, records []CombinedStatRecord) (int, error)
	ListByGame(ctx context.Context, gameID string) ([]CombinedStatRecord, error)
}
