package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

const (
	defaultReportListLimit = 20
	maxReportListLimit     = 200
)

// SyncReportService answers queries about past and running syncs.
type SyncReportService struct {
	reports     syncrun.Repository
	coordinator *SyncCoordinator
}

func NewSyncReportService(reports syncrun.Repository, coordinator *SyncCoordinator) *SyncReportService {
	return &SyncReportService{
		reports:     reports,
		coordinator: coordinator,
	}
}

func (s *SyncReportService) GetReport(ctx context.Context, syncID string) (syncrun.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncReportService.GetReport")
	defer span.End()

	syncID = strings.TrimSpace(syncID)
	if syncID == "" {
		return syncrun.Report{}, fmt.Errorf("%w: sync id is required", ErrInvalidInput)
	}

	report, ok, err := s.reports.GetByID(ctx, syncID)
	if err != nil {
		return syncrun.Report{}, fmt.Errorf("get sync report: %w", err)
	}
	if !ok {
		return syncrun.Report{}, fmt.Errorf("%w: sync report=%s", ErrNotFound, syncID)
	}
	return report, nil
}

func (s *SyncReportService) ListReports(ctx context.Context, limit int) ([]syncrun.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncReportService.ListReports")
	defer span.End()

	switch {
	case limit <= 0:
		limit = defaultReportListLimit
	case limit > maxReportListLimit:
		limit = maxReportListLimit
	}

	items, err := s.reports.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync reports: %w", err)
	}
	return items, nil
}

// Current reports the running sync, or idle when none is active.
func (s *SyncReportService) Current() (syncrun.Result, bool) {
	if s.coordinator == nil {
		return syncrun.Result{Status: syncrun.StatusIdle}, false
	}
	current, ok := s.coordinator.Current()
	if !ok {
		return syncrun.Result{Status: syncrun.StatusIdle}, false
	}
	return current, true
}
