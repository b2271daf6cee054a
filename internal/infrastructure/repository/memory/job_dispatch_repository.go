package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu     sync.RWMutex
	events map[string][]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{
		events: make(map[string][]jobscheduler.DispatchEvent),
	}
}

// UpsertEvent keeps one event per (dispatch id, status).
func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.events[event.DispatchID]
	for idx := range items {
		if items[idx].Status == event.Status {
			items[idx] = event
			return nil
		}
	}
	r.events[event.DispatchID] = append(items, event)
	return nil
}

func (r *JobDispatchRepository) ListByDispatchID(_ context.Context, dispatchID string) ([]jobscheduler.DispatchEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.events[dispatchID]
	out := make([]jobscheduler.DispatchEvent, 0, len(items))
	out = append(out, items...)
	return out, nil
}
