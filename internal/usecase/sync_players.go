package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"

	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

// SyncPlayers reconciles the provider roster with local candidates.
func (s *SyncCoordinator) SyncPlayers(ctx context.Context, opts syncrun.Options) (syncrun.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncCoordinator.SyncPlayers")
	defer span.End()

	opts = opts.WithDefaults()
	run, result, err := s.start(ctx, syncrun.TypePlayers, opts)
	if err != nil {
		return *result, err
	}

	s.syncPlayers(run.ctx, result, opts)
	return s.finish(ctx, run, result), nil
}

func (s *SyncCoordinator) syncPlayers(ctx context.Context, result *syncrun.Result, opts syncrun.Options) {
	roster, err := s.source.FetchRoster(ctx)
	if err != nil {
		s.recordProviderFailure(ctx, result, "fetch roster", err)
		return
	}
	if opts.SkipInactives {
		active := roster[:0:0]
		for _, item := range roster {
			if item.Active {
				active = append(active, item)
			}
		}
		roster = active
	}

	candidates, err := s.store.FindActiveCandidates(ctx)
	if err != nil {
		s.recordFailure(ctx, result, "load roster candidates", err)
		return
	}
	s.backupRoster(ctx, result, candidates, opts)
	links := newLinkClaims(candidates)

	batches := chunk(roster, opts.BatchSize)
	for idx, batch := range batches {
		if idx > 0 {
			_ = s.sleep(ctx, opts.RetryDelay)
		}
		if s.checkpoint(ctx, result) {
			s.logger.InfoContext(ctx, "player sync cancelled", "sync_id", result.ID, "batch", idx+1, "batches", len(batches))
			return
		}

		s.syncPlayerBatch(ctx, result, batch, candidates, links, opts)
		s.logger.DebugContext(ctx, "player batch synced",
			"sync_id", result.ID,
			"batch", idx+1,
			"batches", len(batches),
			"players_processed", result.PlayersProcessed,
		)
	}
	s.checkpoint(ctx, result)
}

func (s *SyncCoordinator) syncPlayerBatch(
	ctx context.Context,
	result *syncrun.Result,
	batch []player.ExternalPlayer,
	candidates []player.Candidate,
	links linkClaims,
	opts syncrun.Options,
) {
	linked := make(map[int]int64, len(batch))
	stored := make(map[int]int64)
	pending := make([]player.ExternalPlayer, 0, len(batch))
	pendingIdx := make([]int, 0, len(batch))
	invalid := make(map[int]error)

	for idx, external := range batch {
		if err := external.Validate(); err != nil {
			invalid[idx] = fmt.Errorf("%w: %v", ErrDataValidation, err)
			continue
		}
		candidateID, ok, err := s.store.FindLinkByExternalID(ctx, external.ExternalID)
		if err != nil {
			invalid[idx] = fmt.Errorf("find link: %w", err)
			continue
		}
		if ok && !opts.ForceFullSync {
			linked[idx] = candidateID
			continue
		}
		if ok {
			stored[idx] = candidateID
		}
		pending = append(pending, external)
		pendingIdx = append(pendingIdx, idx)
	}

	matches := make(map[int]matching.MatchResult, len(pending))
	if len(pending) > 0 {
		results, err := s.matcher.BatchMatch(ctx, pending, candidates)
		if err != nil {
			// Fall back to matching inline; scoring is pure so the outcome is the same.
			s.logger.WarnContext(ctx, "batch match failed, matching sequentially", "sync_id", result.ID, "error", err)
			results = make([]matching.MatchResult, len(pending))
			for i, external := range pending {
				results[i] = s.matcher.Match(external, candidates)
			}
		}
		for i, idx := range pendingIdx {
			matches[idx] = results[i]
		}
	}

	for idx, external := range batch {
		result.PlayersProcessed++
		scope := "player " + external.ExternalID

		if err, ok := invalid[idx]; ok {
			s.recordFailure(ctx, result, scope, err)
			continue
		}

		var catcher panics.Catcher
		catcher.Try(func() {
			if candidateID, ok := linked[idx]; ok {
				err := s.refreshLink(ctx, candidateID, external, opts)
				if err != nil {
					s.recordFailure(ctx, result, scope, err)
					return
				}
				result.PlayersUpdated++
				return
			}

			match := matches[idx]
			_, outcome, err := s.applyMatch(ctx, result, external, match, links, stored[idx], opts)
			if err != nil {
				s.recordFailure(ctx, result, scope, err)
				return
			}
			switch outcome {
			case linkOutcomeUpdated:
				result.PlayersUpdated++
			case linkOutcomeCreated:
				result.NewPlayersAdded++
			}
		})
		if recovered := catcher.Recovered(); recovered != nil {
			s.recordFailure(ctx, result, scope, fmt.Errorf("%w: %v", ErrDataValidation, recovered.AsError()))
		}
	}
}

type linkOutcome int

const (
	linkOutcomeUpdated linkOutcome = iota + 1
	linkOutcomeCreated
)

func (s *SyncCoordinator) refreshLink(ctx context.Context, candidateID int64, external player.ExternalPlayer, opts syncrun.Options) error {
	if opts.DryRun {
		return nil
	}
	updated, err := s.store.UpdateLinkage(ctx, candidateID, external)
	if err != nil {
		return fmt.Errorf("update linkage for candidate %d: %w", candidateID, err)
	}
	if !updated {
		return fmt.Errorf("%w: candidate %d not found", ErrDataValidation, candidateID)
	}
	return nil
}

// applyMatch turns a match decision into a write. current is the candidate
// the external is already linked to, or 0. Flagged matches, matches that
// would take over another external's candidate and re-matches that disagree
// with the stored link produce an ErrMatchingAmbiguity and an unmatched
// entry instead of a link.
func (s *SyncCoordinator) applyMatch(
	ctx context.Context,
	result *syncrun.Result,
	external player.ExternalPlayer,
	match matching.MatchResult,
	links linkClaims,
	current int64,
	opts syncrun.Options,
) (int64, linkOutcome, error) {
	if current > 0 {
		if match.MatchedCandidateID != nil && *match.MatchedCandidateID != current {
			detail := fmt.Sprintf("re-match picked candidate %d but external is linked to %d", *match.MatchedCandidateID, current)
			return 0, 0, s.flagForReview(ctx, result, match, "stored_link_disagrees", detail, opts)
		}
		if err := s.refreshLink(ctx, current, external, opts); err != nil {
			return 0, 0, err
		}
		return current, linkOutcomeUpdated, nil
	}

	if match.MatchedCandidateID == nil {
		if opts.DryRun {
			return 0, linkOutcomeCreated, nil
		}
		candidateID, err := s.store.CreateCandidate(ctx, external)
		if err != nil {
			return 0, 0, fmt.Errorf("create candidate: %w", err)
		}
		links.claim(candidateID, external.ExternalID)
		return candidateID, linkOutcomeCreated, nil
	}

	if match.RequiresManualReview {
		detail := fmt.Sprintf("best score %.2f via %s needs review", match.ConfidenceScore, match.Method)
		return 0, 0, s.flagForReview(ctx, result, match, string(match.Method), detail, opts)
	}

	candidateID := *match.MatchedCandidateID
	if owner, taken := links.heldByOther(candidateID, external.ExternalID); taken {
		detail := fmt.Sprintf("candidate %d is already linked to %s", candidateID, owner)
		return 0, 0, s.flagForReview(ctx, result, match, "candidate_linked_elsewhere", detail, opts)
	}
	if err := s.refreshLink(ctx, candidateID, external, opts); err != nil {
		return 0, 0, err
	}
	links.claim(candidateID, external.ExternalID)
	return candidateID, linkOutcomeUpdated, nil
}

func (s *SyncCoordinator) flagForReview(
	ctx context.Context,
	result *syncrun.Result,
	match matching.MatchResult,
	reason string,
	detail string,
	opts syncrun.Options,
) error {
	result.ManualReviewCount++
	result.UnmatchedPlayers = append(result.UnmatchedPlayers, syncrun.UnmatchedPlayer{
		ExternalID:   match.ExternalID,
		ExternalName: match.ExternalName,
		BestScore:    match.ConfidenceScore,
		Reason:       reason,
	})
	s.queueReview(ctx, result.ID, match, opts)
	return fmt.Errorf("%w: %s", ErrMatchingAmbiguity, detail)
}

// linkClaims tracks which external id owns each candidate during one run.
type linkClaims map[int64]string

func newLinkClaims(candidates []player.Candidate) linkClaims {
	claims := make(linkClaims, len(candidates))
	for _, item := range candidates {
		claims.claim(item.ID, item.ExternalID)
	}
	return claims
}

func (c linkClaims) claim(candidateID int64, externalID string) {
	if c == nil || candidateID <= 0 || externalID == "" {
		return
	}
	c[candidateID] = externalID
}

func (c linkClaims) heldByOther(candidateID int64, externalID string) (string, bool) {
	owner := c[candidateID]
	return owner, owner != "" && owner != externalID
}

func (s *SyncCoordinator) queueReview(ctx context.Context, syncID string, match matching.MatchResult, opts syncrun.Options) {
	if s.extras.Reviews == nil || opts.DryRun {
		return
	}
	err := s.extras.Reviews.Save(ctx, matching.Review{
		SyncID:    syncID,
		Result:    match,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "queue manual review failed", "sync_id", syncID, "external_id", match.ExternalID, "error", err)
	}
}

func (s *SyncCoordinator) backupRoster(ctx context.Context, result *syncrun.Result, candidates []player.Candidate, opts syncrun.Options) {
	if !opts.CreateBackup || opts.DryRun {
		return
	}
	if s.extras.Backup == nil {
		result.AddWarning("roster backup requested but no backup store is configured")
		return
	}

	location, err := s.extras.Backup.Backup(ctx, result.ID, candidates)
	if err != nil {
		result.AddWarning("roster backup failed: " + err.Error())
		s.logger.WarnContext(ctx, "roster backup failed", "sync_id", result.ID, "error", err)
		return
	}
	result.BackupLocation = location
}
