package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

// DataSource is the upstream provider as seen by the sync coordinator.
type DataSource interface {
	FetchRoster(ctx context.Context) ([]player.ExternalPlayer, error)
	FetchGamesForWeek(ctx context.Context, season, week int) ([]playerstats.GameRef, error)
	FetchGamesForDate(ctx context.Context, date time.Time) ([]playerstats.GameRef, error)
	FetchRawStats(ctx context.Context, gameID string) ([]playerstats.RawStatRecord, error)
}

// Persistence is every write and lookup a sync run needs.
type Persistence interface {
	FindLinkByExternalID(ctx context.Context, externalID string) (int64, bool, error)
	FindActiveCandidates(ctx context.Context) ([]player.Candidate, error)
	CreateCandidate(ctx context.Context, external player.ExternalPlayer) (int64, error)
	UpdateLinkage(ctx context.Context, candidateID int64, external player.ExternalPlayer) (bool, error)
	UpsertStats(ctx context.Context, records []playerstats.CombinedStatRecord) (int, error)
	SaveSyncReport(ctx context.Context, result syncrun.Result) (bool, error)
}

// RosterBackup snapshots the roster before a run writes to it.
type RosterBackup interface {
	Backup(ctx context.Context, syncID string, candidates []player.Candidate) (string, error)
}

// ReportPublisher announces finished runs to other services.
type ReportPublisher interface {
	Publish(ctx context.Context, report syncrun.Report) error
}

type repositoryPersistence struct {
	players player.Repository
	stats   playerstats.Repository
	reports syncrun.Repository
}

// NewRepositoryPersistence composes the domain repositories into a Persistence.
func NewRepositoryPersistence(players player.Repository, stats playerstats.Repository, reports syncrun.Repository) Persistence {
	return &repositoryPersistence{
		players: players,
		stats:   stats,
		reports: reports,
	}
}

func (p *repositoryPersistence) FindLinkByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	return p.players.FindLinkByExternalID(ctx, externalID)
}

func (p *repositoryPersistence) FindActiveCandidates(ctx context.Context) ([]player.Candidate, error) {
	return p.players.ListActiveCandidates(ctx)
}

func (p *repositoryPersistence) CreateCandidate(ctx context.Context, external player.ExternalPlayer) (int64, error) {
	return p.players.Create(ctx, external)
}

func (p *repositoryPersistence) UpdateLinkage(ctx context.Context, candidateID int64, external player.ExternalPlayer) (bool, error) {
	return p.players.UpdateLinkage(ctx, candidateID, external)
}

func (p *repositoryPersistence) UpsertStats(ctx context.Context, records []playerstats.CombinedStatRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	return p.stats.UpsertCombined(ctx, records)
}

func (p *repositoryPersistence) SaveSyncReport(ctx context.Context, result syncrun.Result) (bool, error) {
	if p.reports == nil {
		return false, fmt.Errorf("%w: sync report repository is not configured", ErrDependencyUnavailable)
	}
	if err := p.reports.Save(ctx, syncrun.NewReport(result)); err != nil {
		return false, err
	}
	return true, nil
}
