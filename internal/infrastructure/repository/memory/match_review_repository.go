package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
)

type MatchReviewRepository struct {
	mu    sync.RWMutex
	items []matching.Review
	index map[string]int
}

func NewMatchReviewRepository() *MatchReviewRepository {
	return &MatchReviewRepository{
		index: make(map[string]int),
	}
}

// Save keeps one pending review per external id; a newer review replaces it.
func (r *MatchReviewRepository) Save(_ context.Context, review matching.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pos, ok := r.index[review.Result.ExternalID]; ok {
		r.items[pos] = review
		return nil
	}
	r.index[review.Result.ExternalID] = len(r.items)
	r.items = append(r.items, review)
	return nil
}

func (r *MatchReviewRepository) Resolve(_ context.Context, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[externalID]
	if !ok {
		return nil
	}
	r.items = append(r.items[:pos], r.items[pos+1:]...)
	delete(r.index, externalID)
	for i := pos; i < len(r.items); i++ {
		r.index[r.items[i].Result.ExternalID] = i
	}
	return nil
}

func (r *MatchReviewRepository) ListPending(_ context.Context, limit int) ([]matching.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matching.Review, 0, len(r.items))
	out = append(out, r.items...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
