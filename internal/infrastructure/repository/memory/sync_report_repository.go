package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

type SyncReportRepository struct {
	mu      sync.RWMutex
	reports map[string]syncrun.Report
}

func NewSyncReportRepository() *SyncReportRepository {
	return &SyncReportRepository{
		reports: make(map[string]syncrun.Report),
	}
}

func (r *SyncReportRepository) Save(_ context.Context, report syncrun.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report.Result = report.Result.Clone()
	r.reports[report.ID] = report
	return nil
}

func (r *SyncReportRepository) GetByID(_ context.Context, id string) (syncrun.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	return report, ok, nil
}

func (r *SyncReportRepository) ListRecent(_ context.Context, limit int) ([]syncrun.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]syncrun.Report, 0, len(r.reports))
	for _, report := range r.reports {
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
