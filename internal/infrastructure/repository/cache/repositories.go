package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	basecache "github.com/riskibarqy/gridiron-sync/internal/platform/cache"
)

const (
	syncReportPrefix = "sync_report:"
	rosterPrefix     = "roster:"
)

type SyncReportRepository struct {
	next  syncrun.Repository
	cache *basecache.Store
}

func NewSyncReportRepository(next syncrun.Repository, cache *basecache.Store) *SyncReportRepository {
	return &SyncReportRepository{next: next, cache: cache}
}

func (r *SyncReportRepository) Save(ctx context.Context, report syncrun.Report) error {
	if err := r.next.Save(ctx, report); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, syncReportPrefix)
	return nil
}

func (r *SyncReportRepository) GetByID(ctx context.Context, id string) (syncrun.Report, bool, error) {
	key := syncReportPrefix + "id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedSyncReportByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return syncrun.Report{}, false, err
	}

	cached, _ := v.(cachedSyncReportByID)
	return cached.value, cached.exists, nil
}

func (r *SyncReportRepository) ListRecent(ctx context.Context, limit int) ([]syncrun.Report, error) {
	key := syncReportPrefix + "list:" + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListRecent(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]syncrun.Report(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]syncrun.Report)
	return append([]syncrun.Report(nil), items...), nil
}

type cachedSyncReportByID struct {
	value  syncrun.Report
	exists bool
}

// PlayerRepository caches roster reads. Every write drops the whole roster
// namespace so a sync never matches against a stale candidate list.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) FindLinkByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	key := rosterPrefix + "link:" + externalID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		id, exists, err := r.next.FindLinkByExternalID(ctx, externalID)
		if err != nil {
			return nil, err
		}
		return cachedLink{candidateID: id, exists: exists}, nil
	})
	if err != nil {
		return 0, false, err
	}

	cached, _ := v.(cachedLink)
	return cached.candidateID, cached.exists, nil
}

func (r *PlayerRepository) ListActiveCandidates(ctx context.Context) ([]player.Candidate, error) {
	return r.listCandidates(ctx, rosterPrefix+"active", r.next.ListActiveCandidates)
}

func (r *PlayerRepository) ListAll(ctx context.Context) ([]player.Candidate, error) {
	return r.listCandidates(ctx, rosterPrefix+"all", r.next.ListAll)
}

func (r *PlayerRepository) listCandidates(ctx context.Context, key string, load func(context.Context) ([]player.Candidate, error)) ([]player.Candidate, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Candidate(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Candidate)
	return append([]player.Candidate(nil), items...), nil
}

func (r *PlayerRepository) Create(ctx context.Context, external player.ExternalPlayer) (int64, error) {
	id, err := r.next.Create(ctx, external)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, rosterPrefix)
	return id, nil
}

func (r *PlayerRepository) UpdateLinkage(ctx context.Context, candidateID int64, external player.ExternalPlayer) (bool, error) {
	ok, err := r.next.UpdateLinkage(ctx, candidateID, external)
	if err != nil {
		return false, err
	}
	r.cache.DeletePrefix(ctx, rosterPrefix)
	return ok, nil
}

func (r *PlayerRepository) LinkExternalID(ctx context.Context, candidateID int64, externalID string) (bool, error) {
	ok, err := r.next.LinkExternalID(ctx, candidateID, externalID)
	if err != nil {
		return false, err
	}
	r.cache.DeletePrefix(ctx, rosterPrefix)
	return ok, nil
}

type cachedLink struct {
	candidateID int64
	exists      bool
}
