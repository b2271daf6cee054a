package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

var errStatsAborted = errors.New("stats sync aborted on invalid record")

// statsPass carries state shared by every game of one stats run.
type statsPass struct {
	opts       syncrun.Options
	candidates []player.Candidate
	links      linkClaims
	loaded     bool
	resolved   map[string]int64
	pending    []playerstats.CombinedStatRecord
	flushes    int
}

// SyncPlayerStats syncs every game of one season week.
func (s *SyncCoordinator) SyncPlayerStats(ctx context.Context, season, week int, opts syncrun.Options) (syncrun.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncCoordinator.SyncPlayerStats",
		attribute.Int("sync.season", season),
		attribute.Int("sync.week", week),
	)
	defer span.End()

	if err := validateSeasonWeek(season, week, s.cfg.WeeksPerSeason); err != nil {
		return *s.rejected(syncrun.TypePlayerStats, err), err
	}

	opts = opts.WithDefaults()
	run, result, err := s.start(ctx, syncrun.TypePlayerStats, opts)
	if err != nil {
		return *result, err
	}
	result.Season = season
	result.Week = week

	pass := &statsPass{opts: opts}
	_ = s.syncWeek(run.ctx, result, season, week, pass)
	s.flushStats(run.ctx, result, pass)
	s.checkpoint(run.ctx, result)
	return s.finish(ctx, run, result), nil
}

// SyncPlayerStatsForDateRange syncs the games of every UTC day in
// [start, end]. Reversed bounds are swapped.
func (s *SyncCoordinator) SyncPlayerStatsForDateRange(ctx context.Context, start, end time.Time, opts syncrun.Options) (syncrun.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncCoordinator.SyncPlayerStatsForDateRange")
	defer span.End()

	days, err := enumerateDays(start, end, s.cfg.MaxRangeDays)
	if err != nil {
		return *s.rejected(syncrun.TypeDateRange, err), err
	}

	opts = opts.WithDefaults()
	run, result, err := s.start(ctx, syncrun.TypeDateRange, opts)
	if err != nil {
		return *result, err
	}
	first, last := days[0], days[len(days)-1]
	result.RangeStart = &first
	result.RangeEnd = &last

	pass := &statsPass{opts: opts}
	for _, day := range days {
		if s.checkpoint(run.ctx, result) {
			s.logger.InfoContext(ctx, "date range sync cancelled", "sync_id", result.ID, "day", day.Format(time.DateOnly))
			break
		}

		games, err := s.source.FetchGamesForDate(run.ctx, day)
		if err != nil {
			s.recordProviderFailure(run.ctx, result, "fetch games for "+day.Format(time.DateOnly), err)
			continue
		}
		if err := s.syncGames(run.ctx, result, games, pass); errors.Is(err, errStatsAborted) {
			break
		}
	}
	s.flushStats(run.ctx, result, pass)
	s.checkpoint(run.ctx, result)
	return s.finish(ctx, run, result), nil
}

func (s *SyncCoordinator) syncWeek(ctx context.Context, result *syncrun.Result, season, week int, pass *statsPass) error {
	games, err := s.source.FetchGamesForWeek(ctx, season, week)
	if err != nil {
		s.recordProviderFailure(ctx, result, fmt.Sprintf("fetch games for season %d week %d", season, week), err)
		return err
	}
	return s.syncGames(ctx, result, games, pass)
}

// syncGames processes games one at a time. It stops early on cancellation
// or when an invalid record aborts the run.
func (s *SyncCoordinator) syncGames(ctx context.Context, result *syncrun.Result, games []playerstats.GameRef, pass *statsPass) error {
	for idx, game := range games {
		if idx > 0 {
			_ = s.sleep(ctx, pass.opts.RetryDelay)
		}
		if s.checkpoint(ctx, result) {
			return ctx.Err()
		}

		raw, err := s.source.FetchRawStats(ctx, game.GameID)
		if err != nil {
			s.recordProviderFailure(ctx, result, "fetch stats for game "+game.GameID, err)
			continue
		}
		result.GamesProcessed++

		if err := s.syncGameStats(ctx, result, game, raw, pass); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncCoordinator) syncGameStats(
	ctx context.Context,
	result *syncrun.Result,
	game playerstats.GameRef,
	raw []playerstats.RawStatRecord,
	pass *statsPass,
) error {
	groups, orphans := s.combiner.GroupRawStats(raw)
	for _, orphan := range orphans {
		result.RecordsSkipped++
		s.recordFailure(ctx, result, "game "+game.GameID,
			fmt.Errorf("%w: stat slice %q without player or game id", ErrDataValidation, orphan.Category))
	}

	for _, group := range groups {
		result.StatsProcessed++
		scope := "stats " + group.Key.String()

		combined, ok := s.combiner.Combine(group.Records)
		if !ok {
			continue
		}
		if combined.Season == 0 {
			combined.Season = game.Season
		}
		if combined.Week == 0 {
			combined.Week = game.Week
		}

		validation := s.validator.Validate(combined)
		for _, warning := range validation.Warnings {
			result.AddWarning(scope + ": " + warning)
		}
		if !validation.Valid {
			s.recordFailure(ctx, result, scope, fmt.Errorf("%w: %s", ErrDataValidation, strings.Join(validation.Errors, "; ")))
			if !pass.opts.SkipInvalidRecords {
				return errStatsAborted
			}
			result.RecordsSkipped++
			continue
		}

		var (
			candidateID int64
			resolveErr  error
		)
		var catcher panics.Catcher
		catcher.Try(func() {
			candidateID, resolveErr = s.resolveStatPlayer(ctx, result, combined, pass)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			resolveErr = fmt.Errorf("%w: %v", ErrDataValidation, recovered.AsError())
		}
		if resolveErr != nil {
			result.RecordsSkipped++
			s.recordFailure(ctx, result, scope, resolveErr)
			continue
		}

		combined.CandidateID = candidateID
		pass.pending = append(pass.pending, combined)
		if len(pass.pending) >= pass.opts.BatchSize {
			s.flushStats(ctx, result, pass)
		}
	}
	return nil
}

// resolveStatPlayer finds or creates the candidate a stat line belongs to.
func (s *SyncCoordinator) resolveStatPlayer(
	ctx context.Context,
	result *syncrun.Result,
	combined playerstats.CombinedStatRecord,
	pass *statsPass,
) (int64, error) {
	if candidateID, ok := pass.resolved[combined.PlayerExternalID]; ok {
		return candidateID, nil
	}

	candidateID, ok, err := s.store.FindLinkByExternalID(ctx, combined.PlayerExternalID)
	if err != nil {
		return 0, fmt.Errorf("find link: %w", err)
	}
	if ok && !pass.opts.ForceFullSync {
		return candidateID, nil
	}
	current := int64(0)
	if ok {
		current = candidateID
	}

	if !pass.loaded {
		candidates, err := s.store.FindActiveCandidates(ctx)
		if err != nil {
			return 0, fmt.Errorf("load roster candidates: %w", err)
		}
		pass.candidates = candidates
		pass.links = newLinkClaims(candidates)
		pass.loaded = true
	}

	external := player.ExternalPlayer{
		ExternalID:       combined.PlayerExternalID,
		FirstName:        combined.FirstName,
		LastName:         combined.LastName,
		TeamAbbreviation: combined.TeamAbbreviation,
		Position:         combined.Position,
		Active:           true,
	}
	if err := external.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDataValidation, err)
	}

	match := s.matcher.Match(external, pass.candidates)
	candidateID, outcome, err := s.applyMatch(ctx, result, external, match, pass.links, current, pass.opts)
	if err != nil {
		return 0, err
	}
	switch outcome {
	case linkOutcomeUpdated:
		result.PlayersUpdated++
	case linkOutcomeCreated:
		result.NewPlayersAdded++
		if candidateID > 0 {
			pass.candidates = append(pass.candidates, player.Candidate{
				ID:               candidateID,
				ExternalID:       external.ExternalID,
				FirstName:        external.FirstName,
				LastName:         external.LastName,
				TeamAbbreviation: external.TeamAbbreviation,
				Position:         external.Position,
				Active:           true,
			})
		}
	}

	// Later games of the same pass reuse the decision. In a dry run nothing
	// was written, so the store cannot answer for it.
	if pass.resolved == nil {
		pass.resolved = make(map[string]int64)
	}
	pass.resolved[external.ExternalID] = candidateID
	return candidateID, nil
}

// flushStats upserts the pending batch. A failed batch counts every record
// in it as a data error.
func (s *SyncCoordinator) flushStats(ctx context.Context, result *syncrun.Result, pass *statsPass) {
	if len(pass.pending) == 0 {
		return
	}
	batch := pass.pending
	pass.pending = nil
	pass.flushes++

	if pass.opts.DryRun {
		result.StatsUpserted += len(batch)
		return
	}

	// Lines already processed are written even after cancellation.
	writeCtx := context.WithoutCancel(ctx)
	count, err := s.store.UpsertStats(writeCtx, batch)
	if err != nil {
		result.ErrorCounts.DataErrors += len(batch)
		result.AddError(fmt.Sprintf("upsert stats batch %d (%d records): %v", pass.flushes, len(batch), err))
		s.logger.WarnContext(ctx, "upsert stats batch failed", "sync_id", result.ID, "batch", pass.flushes, "records", len(batch), "error", err)
		return
	}
	result.StatsUpserted += count
}

func validateSeasonWeek(season, week, weeksPerSeason int) error {
	if season <= 0 {
		return fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if week < 1 || week > weeksPerSeason+4 {
		return fmt.Errorf("%w: week must be between 1 and %d", ErrInvalidInput, weeksPerSeason+4)
	}
	return nil
}

// enumerateDays lists UTC midnights from start to end inclusive.
func enumerateDays(start, end time.Time, maxDays int) ([]time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	first := truncateDay(start)
	last := truncateDay(end)
	if last.Before(first) {
		first, last = last, first
	}

	span := int(last.Sub(first).Hours()/24) + 1
	if span > maxDays {
		return nil, fmt.Errorf("%w: date range spans %d days, max is %d", ErrInvalidInput, span, maxDays)
	}

	days := make([]time.Time, 0, span)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days, nil
}

func truncateDay(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
