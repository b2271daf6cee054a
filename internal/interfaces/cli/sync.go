package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// syncFlags mirrors syncrun.Options on the command line.
type syncFlags struct {
	forceFullSync      bool
	skipInactives      bool
	batchSize          int
	dryRun             bool
	maxRetries         int
	retryDelay         time.Duration
	skipInvalidRecords bool
	createBackup       bool
	continueOnError    bool
}

func (f *syncFlags) register(fs *pflag.FlagSet) {
	defaults := syncrun.DefaultOptions()
	fs.BoolVar(&f.forceFullSync, "force-full", false, "Re-match every player instead of trusting stored links")
	fs.BoolVar(&f.skipInactives, "skip-inactive", false, "Ignore inactive provider players")
	fs.IntVar(&f.batchSize, "batch-size", defaults.BatchSize, "Records per persistence batch")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Compute the run without writing roster or stat rows")
	fs.IntVar(&f.maxRetries, "max-retries", defaults.MaxRetries, "Retries per provider call on transient failures")
	fs.DurationVar(&f.retryDelay, "retry-delay", defaults.RetryDelay, "Delay between batches and games")
	fs.BoolVar(&f.skipInvalidRecords, "skip-invalid", defaults.SkipInvalidRecords, "Skip records that fail validation")
	fs.BoolVar(&f.createBackup, "backup", false, "Snapshot the roster before writing")
	fs.BoolVar(&f.continueOnError, "continue-on-error", defaults.ContinueOnError, "Keep going after a failed batch or game")
}

func (f *syncFlags) options() (syncrun.Options, error) {
	if f.batchSize < 1 || f.batchSize > 5000 {
		return syncrun.Options{}, fmt.Errorf("--batch-size must be within [1, 5000]")
	}
	if f.maxRetries < 0 || f.maxRetries > 10 {
		return syncrun.Options{}, fmt.Errorf("--max-retries must be within [0, 10]")
	}
	if f.retryDelay < 0 {
		return syncrun.Options{}, fmt.Errorf("--retry-delay cannot be negative")
	}

	return syncrun.Options{
		ForceFullSync:      f.forceFullSync,
		SkipInactives:      f.skipInactives,
		BatchSize:          f.batchSize,
		DryRun:             f.dryRun,
		MaxRetries:         f.maxRetries,
		RetryDelay:         f.retryDelay,
		SkipInvalidRecords: f.skipInvalidRecords,
		CreateBackup:       f.createBackup,
		ContinueOnError:    f.continueOnError,
	}, nil
}

func newPlayersCommand(state *commandState) *cobra.Command {
	flags := &syncFlags{}
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Sync the provider roster into roster players",
		Args:  cobra.NoArgs,
		RunE: state.run(func(cmd *cobra.Command, _ []string, svc *Services) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			result, err := svc.Runner.SyncPlayers(cmd.Context(), opts)
			return finishRun(cmd, result, err)
		}),
	}
	flags.register(cmd.Flags())
	return cmd
}

func newStatsCommand(state *commandState) *cobra.Command {
	flags := &syncFlags{}
	var season, week int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sync player stats for one week of a season",
		Example: `  syncctl stats --season 2025 --week 3
  syncctl stats --week 3 --dry-run`,
		Args: cobra.NoArgs,
		RunE: state.run(func(cmd *cobra.Command, _ []string, svc *Services) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			if season <= 0 {
				season = defaultSeason(svc.Config.Sync.Season, time.Now())
			}
			result, err := svc.Runner.SyncPlayerStats(cmd.Context(), season, week, opts)
			return finishRun(cmd, result, err)
		}),
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&season, "season", 0, "Season year; defaults to SYNC_SEASON or the current season")
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newRangeCommand(state *commandState) *cobra.Command {
	flags := &syncFlags{}
	var from, to string
	cmd := &cobra.Command{
		Use:     "range",
		Short:   "Sync player stats for every game in a date range",
		Example: `  syncctl range --from 2025-09-04 --to 2025-09-08`,
		Args:    cobra.NoArgs,
		RunE: state.run(func(cmd *cobra.Command, _ []string, svc *Services) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			start, err := parseDate("from", from)
			if err != nil {
				return err
			}
			end, err := parseDate("to", to)
			if err != nil {
				return err
			}
			result, err := svc.Runner.SyncPlayerStatsForDateRange(cmd.Context(), start, end, opts)
			return finishRun(cmd, result, err)
		}),
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newFullCommand(state *commandState) *cobra.Command {
	flags := &syncFlags{}
	var season int
	cmd := &cobra.Command{
		Use:   "full",
		Short: "Sync the roster, then every week of a season",
		Args:  cobra.NoArgs,
		RunE: state.run(func(cmd *cobra.Command, _ []string, svc *Services) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			if season <= 0 {
				season = defaultSeason(svc.Config.Sync.Season, time.Now())
			}
			result, err := svc.Runner.FullSync(cmd.Context(), season, opts)
			return finishRun(cmd, result, err)
		}),
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&season, "season", 0, "Season year; defaults to SYNC_SEASON or the current season")
	return cmd
}

// finishRun prints the report and turns a failed run into a non-zero exit.
func finishRun(cmd *cobra.Command, result syncrun.Result, err error) error {
	if err != nil {
		return err
	}
	if printErr := writeJSON(cmd.OutOrStdout(), syncrun.NewReport(result)); printErr != nil {
		return printErr
	}
	if result.Status == syncrun.StatusFailed {
		return fmt.Errorf("sync %s failed: %s", result.ID, strings.Join(result.Errors, "; "))
	}
	return nil
}

func parseDate(name, raw string) (time.Time, error) {
	value, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}
	return value, nil
}

// defaultSeason picks the configured season, else the season in play at
// now. January and February games belong to the previous year's season.
func defaultSeason(configured int, now time.Time) int {
	if configured > 0 {
		return configured
	}
	if now.Month() < time.March {
		return now.Year() - 1
	}
	return now.Year()
}
