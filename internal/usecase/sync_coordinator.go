package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/platform/id"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/platform/resilience"
)

const (
	defaultWeeksPerSeason = 18
	defaultMaxRangeDays   = 400
)

type SyncCoordinatorConfig struct {
	WeeksPerSeason int
	MaxRangeDays   int
}

// SyncCollaborators are optional; nil fields disable the feature.
type SyncCollaborators struct {
	Reviews          matching.ReviewRepository
	Backup           RosterBackup
	Publisher        ReportPublisher
	DistributedGuard RunGuard
}

// SyncCoordinator drives roster and stats sync runs. At most one run is
// active per coordinator, and per process when one coordinator is shared.
type SyncCoordinator struct {
	source    DataSource
	store     Persistence
	matcher   *PlayerMatcher
	combiner  *StatsCombiner
	validator *StatsValidator
	extras    SyncCollaborators
	guard     *LocalRunGuard
	ids       id.Generator
	cfg       SyncCoordinatorConfig
	logger    *logging.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	active   *syncrun.Result
	cancelFn context.CancelFunc
	last     *syncrun.Result
}

func NewSyncCoordinator(
	source DataSource,
	store Persistence,
	matcher *PlayerMatcher,
	extras SyncCollaborators,
	ids id.Generator,
	cfg SyncCoordinatorConfig,
	logger *logging.Logger,
) *SyncCoordinator {
	if logger == nil {
		logger = logging.Default()
	}
	if matcher == nil {
		matcher = NewPlayerMatcher(matching.DefaultOptions(), nil, logger)
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.WeeksPerSeason <= 0 {
		cfg.WeeksPerSeason = defaultWeeksPerSeason
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = defaultMaxRangeDays
	}

	return &SyncCoordinator{
		source:    source,
		store:     store,
		matcher:   matcher,
		combiner:  NewStatsCombiner(),
		validator: NewStatsValidator(),
		extras:    extras,
		guard:     NewLocalRunGuard(),
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Current returns a snapshot of the running sync, if any.
func (s *SyncCoordinator) Current() (syncrun.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return syncrun.Result{}, false
	}
	return s.active.Clone(), true
}

// Last returns the most recently finished run in this process.
func (s *SyncCoordinator) Last() (syncrun.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return syncrun.Result{}, false
	}
	return s.last.Clone(), true
}

// Cancel asks the active run to stop at its next checkpoint.
func (s *SyncCoordinator) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelFn == nil {
		return false
	}
	s.cancelFn()
	return true
}

type activeRun struct {
	ctx     context.Context
	cancel  context.CancelFunc
	release func(context.Context) error
}

// start acquires the run guards. When another run holds them the returned
// result is already finalized as Failed. Provider calls made with the run
// context get opts.MaxRetries retries after the first attempt.
func (s *SyncCoordinator) start(ctx context.Context, runType syncrun.Type, opts syncrun.Options) (*activeRun, *syncrun.Result, error) {
	if s.source == nil || s.store == nil {
		err := fmt.Errorf("%w: sync coordinator is not fully configured", ErrDependencyUnavailable)
		return nil, s.rejected(runType, err), err
	}

	releaseLocal, ok, _ := s.guard.TryAcquire(ctx)
	if !ok {
		return nil, s.rejected(runType, ErrSyncAlreadyRunning), ErrSyncAlreadyRunning
	}
	release := releaseLocal

	if s.extras.DistributedGuard != nil {
		releaseRemote, ok, err := s.extras.DistributedGuard.TryAcquire(ctx)
		if err != nil || !ok {
			_ = releaseLocal(ctx)
			if err != nil {
				err = fmt.Errorf("%w: acquire distributed sync lock: %v", ErrDependencyUnavailable, err)
			} else {
				err = ErrSyncAlreadyRunning
			}
			return nil, s.rejected(runType, err), err
		}
		release = func(ctx context.Context) error {
			remoteErr := releaseRemote(ctx)
			localErr := releaseLocal(ctx)
			return errors.Join(remoteErr, localErr)
		}
	}

	result := syncrun.NewResult(s.newSyncID(), runType, s.now().UTC())
	runCtx := logging.ContextWithSyncID(ctx, result.ID)
	runCtx, cancel := context.WithCancel(resilience.WithMaxAttempts(runCtx, opts.MaxRetries+1))

	snapshot := result.Clone()
	s.mu.Lock()
	s.active = &snapshot
	s.cancelFn = cancel
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "sync run started", "sync_id", result.ID, "type", string(runType))
	return &activeRun{ctx: runCtx, cancel: cancel, release: release}, result, nil
}

// rejected builds the result for a run that never started.
func (s *SyncCoordinator) rejected(runType syncrun.Type, err error) *syncrun.Result {
	now := s.now().UTC()
	result := syncrun.NewResult(s.newSyncID(), runType, now)
	result.Status = syncrun.StatusFailed
	result.FinishedAt = &now
	result.Errors = []string{err.Error()}
	return result
}

// finish derives the final status, stores the report and releases the guards.
func (s *SyncCoordinator) finish(ctx context.Context, run *activeRun, result *syncrun.Result) syncrun.Result {
	if run.ctx.Err() != nil {
		result.Status = syncrun.StatusCancelled
	}

	result.Finish(s.now().UTC())
	final := result.Clone()

	s.mu.Lock()
	s.active = nil
	s.cancelFn = nil
	s.last = &final
	s.mu.Unlock()

	run.cancel()
	persistCtx := context.WithoutCancel(ctx)
	if saved, err := s.store.SaveSyncReport(persistCtx, final); err != nil || !saved {
		s.logger.ErrorContext(persistCtx, "save sync report failed", "sync_id", final.ID, "error", err)
	}
	if s.extras.Publisher != nil {
		if err := s.extras.Publisher.Publish(persistCtx, syncrun.NewReport(final)); err != nil {
			s.logger.WarnContext(persistCtx, "publish sync report failed", "sync_id", final.ID, "error", err)
		}
	}
	if err := run.release(persistCtx); err != nil {
		s.logger.WarnContext(persistCtx, "release sync lock failed", "sync_id", final.ID, "error", err)
	}

	annotateSyncSpan(ctx, final)
	s.logger.InfoContext(persistCtx, "sync run finished",
		"sync_id", final.ID,
		"type", string(final.Type),
		"status", string(final.Status),
		"players_processed", final.PlayersProcessed,
		"stats_processed", final.StatsProcessed,
		"data_errors", final.ErrorCounts.DataErrors,
		"matching_errors", final.ErrorCounts.MatchingErrors,
		"api_errors", final.ErrorCounts.APIErrors,
	)
	return final
}

// checkpoint publishes a progress snapshot and reports whether the run
// must stop.
func (s *SyncCoordinator) checkpoint(ctx context.Context, result *syncrun.Result) bool {
	snapshot := result.Clone()
	s.mu.Lock()
	s.active = &snapshot
	s.mu.Unlock()

	if ctx.Err() != nil {
		result.Status = syncrun.StatusCancelled
		return true
	}
	return false
}

func (s *SyncCoordinator) recordFailure(ctx context.Context, result *syncrun.Result, scope string, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ErrTransientProvider):
		result.ErrorCounts.APIErrors++
	case errors.Is(err, ErrMatchingAmbiguity):
		result.ErrorCounts.MatchingErrors++
	default:
		result.ErrorCounts.DataErrors++
	}
	result.AddError(scope + ": " + err.Error())
	s.logger.WarnContext(ctx, "sync item failed", "sync_id", result.ID, "scope", scope, "error", err)
}

// recordProviderFailure counts any DataSource failure as an API error.
func (s *SyncCoordinator) recordProviderFailure(ctx context.Context, result *syncrun.Result, scope string, err error) {
	if !errors.Is(err, ErrTransientProvider) {
		err = fmt.Errorf("%w: %v", ErrTransientProvider, err)
	}
	s.recordFailure(ctx, result, scope, err)
}

func (s *SyncCoordinator) newSyncID() string {
	value, err := s.ids.NewID()
	if err != nil || strings.TrimSpace(value) == "" {
		return fmt.Sprintf("sync-%d", s.now().UnixNano())
	}
	return value
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	out := make([][]T, 0, (len(items)+size-1)/max(size, 1))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
