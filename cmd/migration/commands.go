package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/gridiron-sync/db/migrations"
	"github.com/riskibarqy/gridiron-sync/internal/config"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/spf13/cobra"
)

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

type openFunc func(dsn, dir string) (migrator, string, error)

// openMigrator reads the embedded migrations unless dir points elsewhere.
func openMigrator(dsn, dir string) (migrator, string, error) {
	if strings.TrimSpace(dir) != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("resolve migrations dir: %w", err)
		}
		source := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(source, dsn)
		if err != nil {
			return nil, "", fmt.Errorf("create migrator: %w", err)
		}
		return m, source, nil
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("create migrator: %w", err)
	}
	return m, "embedded", nil
}

type migrationState struct {
	logger *logging.Logger
	open   openFunc
	dbURL  string
	dir    string
}

func newRootCommand(logger *logging.Logger, open openFunc) *cobra.Command {
	state := &migrationState{logger: logger, open: open}

	root := &cobra.Command{
		Use:   "migration",
		Short: "Apply or inspect gridiron-sync database migrations",
		Example: `  migration up
  migration down 1
  migration version
  migration force 1760601900
  migration goto 1760601700`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&state.dbURL, "db-url", "", "Postgres URL; defaults to DB_URL")
	root.PersistentFlags().StringVar(&state.dir, "dir", "", "Migrations directory; defaults to the embedded set, or MIGRATIONS_DIR")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: state.with(func(m migrator, source string, _ []string) error {
				if err := ignoreNoChange(m.Up(), state.logger); err != nil {
					return err
				}
				state.logger.Info("migrations applied", "source", source)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations, one by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: state.with(func(m migrator, _ string, args []string) error {
				steps, err := parseSteps(args)
				if err != nil {
					return err
				}
				if err := ignoreNoChange(m.Steps(-steps), state.logger); err != nil {
					return err
				}
				state.logger.Info("migrations rolled back", "steps", steps)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied version and dirty flag",
			Args:  cobra.NoArgs,
			RunE: state.with(func(m migrator, _ string, _ []string) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					state.logger.Info("no migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				state.logger.Info("migration version", "version", version, "dirty", dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the version without running migrations, clearing a dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: state.with(func(m migrator, _ string, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if err := m.Force(version); err != nil {
					return fmt.Errorf("force version %d: %w", version, err)
				}
				state.logger.Info("migration version forced", "version", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:     "goto <version>",
			Aliases: []string{"migrate"},
			Short:   "Migrate up or down to a specific version",
			Args:    cobra.ExactArgs(1),
			RunE: state.with(func(m migrator, _ string, args []string) error {
				target, err := parseTarget(args[0])
				if err != nil {
					return err
				}
				if err := ignoreNoChange(m.Migrate(target), state.logger); err != nil {
					return err
				}
				state.logger.Info("migrated to version", "version", target)
				return nil
			}),
		},
	)
	return root
}

func (s *migrationState) with(fn func(m migrator, source string, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		dsn, err := s.resolveDSN()
		if err != nil {
			return err
		}
		dir := s.dir
		if dir == "" {
			dir = strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
		}

		m, source, err := s.open(dsn, dir)
		if err != nil {
			return err
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				s.logger.Warn("close migration source failed", "error", srcErr)
			}
			if dbErr != nil {
				s.logger.Warn("close migration db failed", "error", dbErr)
			}
		}()
		return fn(m, source, args)
	}
}

func (s *migrationState) resolveDSN() (string, error) {
	db, err := config.LoadDB()
	if err != nil {
		return "", err
	}
	if url := strings.TrimSpace(s.dbURL); url != "" {
		db.URL = url
	}
	if db.URL == "" {
		return "", fmt.Errorf("DB_URL or --db-url is required")
	}
	return db.DSN(), nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < -1 {
		return 0, fmt.Errorf("version must be >= -1")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}
