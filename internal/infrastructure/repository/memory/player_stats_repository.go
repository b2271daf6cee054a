package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu     sync.RWMutex
	byKey  map[playerstats.Key]playerstats.CombinedStatRecord
	byGame map[string][]playerstats.Key
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{
		byKey:  make(map[playerstats.Key]playerstats.CombinedStatRecord),
		byGame: make(map[string][]playerstats.Key),
	}
}

func (r *PlayerStatsRepository) UpsertCombined(_ context.Context, records []playerstats.CombinedStatRecord) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range records {
		key := record.Key()
		if _, exists := r.byKey[key]; !exists {
			r.byGame[record.GameID] = append(r.byGame[record.GameID], key)
		}
		r.byKey[key] = cloneCombined(record)
	}
	return len(records), nil
}

func (r *PlayerStatsRepository) ListByGame(_ context.Context, gameID string) ([]playerstats.CombinedStatRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.byGame[gameID]
	out := make([]playerstats.CombinedStatRecord, 0, len(keys))
	for _, key := range keys {
		out = append(out, cloneCombined(r.byKey[key]))
	}
	return out, nil
}

func cloneCombined(record playerstats.CombinedStatRecord) playerstats.CombinedStatRecord {
	out := record
	out.Categories = append([]playerstats.Category(nil), record.Categories...)
	out.Fields = make(map[string]float64, len(record.Fields))
	for key, value := range record.Fields {
		out.Fields[key] = value
	}
	return out
}
