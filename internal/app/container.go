package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/gridiron-sync/external/sportsdata"
	"github.com/riskibarqy/gridiron-sync/internal/config"
	"github.com/riskibarqy/gridiron-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/identity"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/datasource"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/lock"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/publisher"
	cacherepo "github.com/riskibarqy/gridiron-sync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/gridiron-sync/internal/infrastructure/storage"
	basecache "github.com/riskibarqy/gridiron-sync/internal/platform/cache"
	"github.com/riskibarqy/gridiron-sync/internal/platform/id"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

const (
	redisPingTimeout = 5 * time.Second
	qstashTimeout    = 10 * time.Second
	backupTimeout    = 30 * time.Second
)

// Container holds the wired sync services shared by the API server and the
// CLI.
type Container struct {
	Coordinator  *usecase.SyncCoordinator
	Reports      *usecase.SyncReportService
	Links        *usecase.PlayerLinkService
	Dispatcher   *usecase.SyncJobDispatcher
	DispatchRepo jobscheduler.Repository
	Backup       *storage.RosterBackup

	logger  *logging.Logger
	closers []func(context.Context) error
}

type repositories struct {
	players    player.Repository
	stats      playerstats.Repository
	reports    syncrun.Repository
	reviews    matching.ReviewRepository
	dispatches jobscheduler.Repository
}

// NewContainer builds the sync services from configuration. Optional
// integrations stay disabled when their section is not enabled.
func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = c.Close(context.Background())
		}
	}()

	repos, err := c.buildRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	nicknames, err := loadNicknames(cfg.Matching.NicknamesFile)
	if err != nil {
		return nil, err
	}
	matcher := usecase.NewPlayerMatcher(matchingOptions(cfg.Matching), nicknames, logger)

	source := datasource.NewResilient(
		sportsdata.NewClient(sportsdata.ClientConfig{
			BaseURL: cfg.Provider.BaseURL,
			APIKey:  cfg.Provider.APIKey,
			Timeout: cfg.Provider.Timeout,
			Logger:  logger,
		}),
		datasource.Config{
			Retry:          cfg.Provider.Retry,
			CircuitBreaker: cfg.Provider.CircuitBreaker,
		},
		logger,
	)

	extras := usecase.SyncCollaborators{Reviews: repos.reviews}
	if err := c.wireRedis(ctx, cfg, &extras); err != nil {
		return nil, err
	}
	if err := c.wireBackup(cfg, &extras); err != nil {
		return nil, err
	}

	c.Coordinator = usecase.NewSyncCoordinator(
		source,
		usecase.NewRepositoryPersistence(repos.players, repos.stats, repos.reports),
		matcher,
		extras,
		id.NewUUIDGenerator(),
		usecase.SyncCoordinatorConfig{
			WeeksPerSeason: cfg.Sync.WeeksPerSeason,
			MaxRangeDays:   cfg.Sync.MaxRangeDays,
		},
		logger,
	)
	c.Reports = usecase.NewSyncReportService(repos.reports, c.Coordinator)
	c.Links = usecase.NewPlayerLinkService(matcher, repos.players, repos.reviews, logger)
	c.DispatchRepo = repos.dispatches
	c.Dispatcher = usecase.NewSyncJobDispatcher(buildJobQueue(cfg, logger), repos.dispatches, logger)

	ok = true
	return c, nil
}

// Close cancels an active run and releases connections in reverse order.
func (c *Container) Close(ctx context.Context) error {
	if c.Coordinator != nil {
		c.Coordinator.Cancel()
	}

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil

	return errors.Join(errs...)
}

func (c *Container) buildRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	var out repositories

	if strings.TrimSpace(cfg.DB.URL) == "" {
		c.logger.Warn("DB_URL empty, using in-memory repositories")

		var seed []player.Candidate
		if cfg.DB.SeedMemoryRepositories {
			seed = memory.SeedCandidates()
		}
		out = repositories{
			players:    memory.NewPlayerRepository(seed),
			stats:      memory.NewPlayerStatsRepository(),
			reports:    memory.NewSyncReportRepository(),
			reviews:    memory.NewMatchReviewRepository(),
			dispatches: memory.NewJobDispatchRepository(),
		}
	} else {
		db, err := openDB(ctx, cfg.DB, c.logger)
		if err != nil {
			return repositories{}, err
		}
		c.closers = append(c.closers, func(context.Context) error { return db.Close() })

		out = postgresRepositories(db)
	}

	if cfg.Cache.Enabled {
		store := basecache.NewStore(cfg.Cache.TTL)
		out.players = cacherepo.NewPlayerRepository(out.players, store)
		out.reports = cacherepo.NewSyncReportRepository(out.reports, store)
	}

	return out, nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		players:    postgres.NewPlayerRepository(db),
		stats:      postgres.NewPlayerStatsRepository(db),
		reports:    postgres.NewSyncReportRepository(db),
		reviews:    postgres.NewMatchReviewRepository(db),
		dispatches: postgres.NewJobDispatchRepository(db),
	}
}

func (c *Container) wireRedis(ctx context.Context, cfg config.Config, extras *usecase.SyncCollaborators) error {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c.closers = append(c.closers, func(context.Context) error { return client.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	extras.DistributedGuard = lock.NewRedisRunGuard(client, lock.RedisRunGuardConfig{
		Key: cfg.Redis.LockKey,
		TTL: cfg.Redis.LockTTL,
	}, c.logger)
	extras.Publisher = publisher.NewRedisStreamPublisher(client, publisher.RedisStreamConfig{
		Stream: cfg.Redis.ReportStream,
		MaxLen: cfg.Redis.StreamMaxLen,
	}, c.logger)

	c.logger.Info("redis enabled", "addr", cfg.Redis.Addr, "lock_key", cfg.Redis.LockKey, "stream", cfg.Redis.ReportStream)
	return nil
}

func (c *Container) wireBackup(cfg config.Config, extras *usecase.SyncCollaborators) error {
	if !cfg.Backup.Enabled {
		return nil
	}

	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Backup.Endpoint,
		AccessKey: cfg.Backup.AccessKey,
		SecretKey: cfg.Backup.SecretKey,
		Region:    cfg.Backup.Region,
		UseSSL:    cfg.Backup.UseSSL,
		Timeout:   backupTimeout,
	})
	if err != nil {
		return fmt.Errorf("build backup client: %w", err)
	}

	c.Backup = storage.NewRosterBackup(client, storage.RosterBackupConfig{
		Bucket: cfg.Backup.Bucket,
		Prefix: cfg.Backup.Prefix,
	}, c.logger)
	extras.Backup = c.Backup

	c.logger.Info("roster backup enabled", "endpoint", cfg.Backup.Endpoint, "bucket", cfg.Backup.Bucket)
	return nil
}

func buildJobQueue(cfg config.Config, logger *logging.Logger) usecase.JobQueue {
	if !cfg.QStash.Enabled {
		return usecase.NewNoopJobQueue()
	}

	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStash.BaseURL,
		Token:            cfg.QStash.Token,
		TargetBaseURL:    cfg.QStash.TargetBaseURL,
		Retries:          cfg.QStash.Retries,
		InternalJobToken: cfg.HTTP.InternalJobToken,
		Timeout:          qstashTimeout,
		CircuitBreaker:   cfg.QStash.CircuitBreaker,
	}, logger)
}

func loadNicknames(path string) (*identity.NicknameTable, error) {
	if strings.TrimSpace(path) == "" {
		return identity.DefaultNicknames(), nil
	}

	table, err := identity.LoadNicknameFile(path)
	if err != nil {
		return nil, fmt.Errorf("load nickname file: %w", err)
	}
	return table, nil
}

func matchingOptions(cfg config.MatchingConfig) matching.Options {
	opts := matching.DefaultOptions()
	opts.NameWeight = cfg.NameWeight
	opts.TeamWeight = cfg.TeamWeight
	opts.PositionWeight = cfg.PositionWeight
	opts.MinimumConfidenceThreshold = cfg.MinimumConfidenceThreshold
	opts.AutoLinkConfidenceThreshold = cfg.AutoLinkConfidenceThreshold
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}

	return opts.WithDefaults()
}
