package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/config"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/storage"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/spf13/cobra"
)

// SyncRunner is the part of the coordinator the CLI drives.
type SyncRunner interface {
	SyncPlayers(ctx context.Context, opts syncrun.Options) (syncrun.Result, error)
	SyncPlayerStats(ctx context.Context, season, week int, opts syncrun.Options) (syncrun.Result, error)
	SyncPlayerStatsForDateRange(ctx context.Context, start, end time.Time, opts syncrun.Options) (syncrun.Result, error)
	FullSync(ctx context.Context, season int, opts syncrun.Options) (syncrun.Result, error)
	Cancel() bool
}

type ReportReader interface {
	ListReports(ctx context.Context, limit int) ([]syncrun.Report, error)
	GetReport(ctx context.Context, syncID string) (syncrun.Report, error)
}

type PlayerLinker interface {
	Link(ctx context.Context, candidateID int64, externalID string) (matching.MatchResult, error)
	PendingReviews(ctx context.Context, limit int) ([]matching.Review, error)
}

type BackupReader interface {
	Load(ctx context.Context, location string) (storage.RosterSnapshot, error)
}

// Services is what a command needs after configuration is loaded. Backup
// is nil when roster backups are disabled.
type Services struct {
	Config  config.Config
	Logger  *logging.Logger
	Runner  SyncRunner
	Reports ReportReader
	Links   PlayerLinker
	Backup  BackupReader
}

// Loader builds Services and returns a cleanup func.
type Loader func(ctx context.Context) (*Services, func(context.Context) error, error)

type Options struct {
	Load Loader
	Out  io.Writer
}

type commandState struct {
	opts Options
}

func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	state := &commandState{opts: opts}

	root := &cobra.Command{
		Use:   "syncctl",
		Short: "NFL roster and stats sync",
		Long: `syncctl runs roster and player stat syncs against the configured provider
and inspects the reports they leave behind.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)

	root.AddCommand(
		newPlayersCommand(state),
		newStatsCommand(state),
		newRangeCommand(state),
		newFullCommand(state),
		newReportsCommand(state),
		newReviewsCommand(state),
		newLinkCommand(state),
		newBackupCommand(state),
		newScheduleCommand(state),
	)

	return root
}

// Execute runs the root command and reports failures on a console logger.
func Execute(ctx context.Context, opts Options) int {
	root := NewRootCommand(opts)
	if err := root.ExecuteContext(ctx); err != nil {
		logger := logging.NewConsole(logging.LevelInfo)
		logger.Error("command failed", "error", err)
		_ = logger.Sync()
		return 1
	}
	return 0
}

type commandFunc func(cmd *cobra.Command, args []string, svc *Services) error

// run loads services for a single command and releases them afterwards.
func (s *commandState) run(fn commandFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if s.opts.Load == nil {
			return fmt.Errorf("no service loader configured")
		}
		services, cleanup, err := s.opts.Load(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if cleanup == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if cerr := cleanup(ctx); cerr != nil && err == nil {
				err = fmt.Errorf("release services: %w", cerr)
			}
		}()

		return fn(cmd, args, services)
	}
}
