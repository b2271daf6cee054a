package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/config"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newScheduleCommand(state *commandState) *cobra.Command {
	flags := &syncFlags{}
	var (
		spec   string
		season int
		runNow bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run a full sync on a cron schedule until interrupted",
		Long: `schedule blocks and runs a full sync for the season on every cron tick.
The spec and timezone default to SCHEDULE_SPEC and SCHEDULE_TIMEZONE.`,
		Example: `  syncctl schedule
  syncctl schedule --spec "0 6 * * 2" --run-now`,
		Args: cobra.NoArgs,
		RunE: state.run(func(cmd *cobra.Command, _ []string, svc *Services) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			schedule := svc.Config.Schedule
			if spec != "" {
				schedule.Spec = spec
			}
			job := &scheduledSync{
				runner: svc.Runner,
				logger: svc.Logger,
				season: func() int { return defaultSeason(firstPositive(season, svc.Config.Sync.Season), time.Now()) },
				opts:   opts,
			}

			scheduler, err := newScheduler(schedule, job, svc.Logger)
			if err != nil {
				return err
			}
			return runScheduler(cmd.Context(), scheduler, job, runNow, svc.Logger)
		}),
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&spec, "spec", "", "Five-field cron spec; overrides SCHEDULE_SPEC")
	cmd.Flags().IntVar(&season, "season", 0, "Season year; defaults to SYNC_SEASON or the current season")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run once immediately before waiting for the first tick")
	return cmd
}

// scheduledSync is the cron job body.
type scheduledSync struct {
	runner SyncRunner
	logger *logging.Logger
	season func() int
	opts   syncrun.Options
	ctx    context.Context
}

func (j *scheduledSync) Run() {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	season := j.season()

	result, err := j.runner.FullSync(ctx, season, j.opts)
	switch {
	case errors.Is(err, usecase.ErrSyncAlreadyRunning):
		j.logger.WarnContext(ctx, "scheduled sync skipped, another run is active", "season", season)
	case err != nil:
		j.logger.ErrorContext(ctx, "scheduled sync failed", "season", season, "error", err)
	default:
		report := syncrun.NewReport(result)
		j.logger.InfoContext(ctx, "scheduled sync finished",
			"sync_id", report.ID,
			"season", season,
			"status", report.Status,
			"duration_ms", report.DurationMs,
			"success_rate", report.SuccessRate,
		)
	}
}

func newScheduler(cfg config.ScheduleConfig, job cron.Job, logger *logging.Logger) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone %q: %w", cfg.Timezone, err)
	}

	adapter := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)
	if _, err := c.AddJob(cfg.Spec, job); err != nil {
		return nil, fmt.Errorf("parse schedule spec %q: %w", cfg.Spec, err)
	}
	return c, nil
}

func runScheduler(ctx context.Context, c *cron.Cron, job *scheduledSync, runNow bool, logger *logging.Logger) error {
	job.ctx = ctx

	c.Start()
	entries := c.Entries()
	if len(entries) > 0 {
		logger.InfoContext(ctx, "sync schedule started", "next_run", entries[0].Next.Format(time.RFC3339))
	}
	if runNow {
		go job.Run()
	}

	<-ctx.Done()
	job.runner.Cancel()

	stopped := c.Stop()
	<-stopped.Done()
	logger.InfoContext(context.Background(), "sync schedule stopped")
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
