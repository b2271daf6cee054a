package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	qb "github.com/riskibarqy/gridiron-sync/internal/platform/querybuilder"
)

// SyncReportRepository stores summary columns for querying plus the full
// report as a JSON payload.
type SyncReportRepository struct {
	db *sqlx.DB
}

func NewSyncReportRepository(db *sqlx.DB) *SyncReportRepository {
	return &SyncReportRepository{db: db}
}

func (r *SyncReportRepository) Save(ctx context.Context, report syncrun.Report) error {
	syncID := strings.TrimSpace(report.ID)
	if syncID == "" {
		return fmt.Errorf("sync id is required")
	}

	model := syncReportInsertModel{
		SyncID:           syncID,
		SyncType:         string(report.Type),
		Status:           string(report.Status),
		Season:           report.Season,
		Week:             report.Week,
		StartedAt:        report.StartedAt.UTC(),
		FinishedAt:       report.FinishedAt,
		DurationMs:       report.DurationMs,
		SuccessRate:      report.SuccessRate,
		PlayersProcessed: report.PlayersProcessed,
		StatsProcessed:   report.StatsProcessed,
		DataErrors:       report.ErrorCounts.DataErrors,
		MatchingErrors:   report.ErrorCounts.MatchingErrors,
		APIErrors:        report.ErrorCounts.APIErrors,
		Payload:          encodeJSON(report),
	}

	query, args, err := qb.InsertModel("sync_reports", model, `ON CONFLICT (sync_id)
DO UPDATE SET
    status = EXCLUDED.status,
    week = EXCLUDED.week,
    finished_at = EXCLUDED.finished_at,
    duration_ms = EXCLUDED.duration_ms,
    success_rate = EXCLUDED.success_rate,
    players_processed = EXCLUDED.players_processed,
    stats_processed = EXCLUDED.stats_processed,
    data_errors = EXCLUDED.data_errors,
    matching_errors = EXCLUDED.matching_errors,
    api_errors = EXCLUDED.api_errors,
    payload = EXCLUDED.payload`)
	if err != nil {
		return fmt.Errorf("build upsert sync report query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync report sync_id=%s: %w", syncID, err)
	}

	return nil
}

func (r *SyncReportRepository) GetByID(ctx context.Context, id string) (syncrun.Report, bool, error) {
	query, args, err := qb.Select("sync_id", "payload::text AS payload").From("sync_reports").
		Where(qb.Eq("sync_id", strings.TrimSpace(id))).
		Limit(1).
		ToSQL()
	if err != nil {
		return syncrun.Report{}, false, fmt.Errorf("build get sync report query: %w", err)
	}

	var row syncReportPayloadRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncrun.Report{}, false, nil
		}
		return syncrun.Report{}, false, fmt.Errorf("get sync report sync_id=%s: %w", id, err)
	}

	report, err := decodeReport(row)
	if err != nil {
		return syncrun.Report{}, false, err
	}
	return report, true, nil
}

func (r *SyncReportRepository) ListRecent(ctx context.Context, limit int) ([]syncrun.Report, error) {
	query, args, err := qb.Select("sync_id", "payload::text AS payload").From("sync_reports").
		OrderBy("started_at DESC", "sync_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sync reports query: %w", err)
	}

	var rows []syncReportPayloadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sync reports: %w", err)
	}

	out := make([]syncrun.Report, 0, len(rows))
	for _, row := range rows {
		report, err := decodeReport(row)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

func decodeReport(row syncReportPayloadRow) (syncrun.Report, error) {
	var report syncrun.Report
	if err := decodeJSON(row.Payload, &report); err != nil {
		return syncrun.Report{}, fmt.Errorf("decode sync report sync_id=%s: %w", row.SyncID, err)
	}
	if report.ID == "" {
		report.ID = row.SyncID
	}
	return report, nil
}
