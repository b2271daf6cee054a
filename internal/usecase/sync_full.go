package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

// FullSync runs a roster sync followed by a stats sync for every week of
// the season, aggregating all of it into one result.
func (s *SyncCoordinator) FullSync(ctx context.Context, season int, opts syncrun.Options) (syncrun.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncCoordinator.FullSync", attribute.Int("sync.season", season))
	defer span.End()

	if season <= 0 {
		err := fmt.Errorf("%w: season is required for a full sync", ErrInvalidInput)
		return *s.rejected(syncrun.TypeFull, err), err
	}

	opts = opts.WithDefaults()
	run, total, err := s.start(ctx, syncrun.TypeFull, opts)
	if err != nil {
		return *total, err
	}
	total.Season = season

	players := syncrun.NewResult(total.ID, syncrun.TypePlayers, total.StartedAt)
	s.syncPlayers(run.ctx, players, opts)
	total.Merge(players)
	total.BackupLocation = players.BackupLocation

	if s.checkpoint(run.ctx, total) {
		return s.finish(ctx, run, total), nil
	}
	if players.ErrorCounts.Total() > 0 && !opts.ContinueOnError {
		total.AddWarning("stopping after roster sync errors")
		return s.finish(ctx, run, total), nil
	}

	pass := &statsPass{opts: opts}
	for week := 1; week <= s.cfg.WeeksPerSeason; week++ {
		if s.checkpoint(run.ctx, total) {
			s.logger.InfoContext(ctx, "full sync cancelled", "sync_id", total.ID, "week", week)
			break
		}

		weekResult := syncrun.NewResult(total.ID, syncrun.TypePlayerStats, s.now().UTC())
		weekErr := s.syncWeek(run.ctx, weekResult, season, week, pass)
		s.flushStats(run.ctx, weekResult, pass)
		total.Merge(weekResult)
		total.Week = week

		if errors.Is(weekErr, errStatsAborted) {
			total.AddWarning(fmt.Sprintf("stopping at week %d: invalid record with skip_invalid_records disabled", week))
			break
		}
		if weekResult.ErrorCounts.Total() > 0 && !opts.ContinueOnError {
			total.AddWarning(fmt.Sprintf("stopping at week %d after errors", week))
			break
		}
		s.logger.InfoContext(ctx, "full sync week done",
			"sync_id", total.ID,
			"week", week,
			"games", weekResult.GamesProcessed,
			"stats_processed", weekResult.StatsProcessed,
		)
	}

	s.checkpoint(run.ctx, total)
	return s.finish(ctx, run, total), nil
}
