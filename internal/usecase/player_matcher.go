package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/identity"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

// PlayerMatcher resolves external players against roster candidates.
type PlayerMatcher struct {
	opts   matching.Options
	scorer *CandidateScorer
	logger *logging.Logger
	now    func() time.Time
}

func NewPlayerMatcher(opts matching.Options, nicknames *identity.NicknameTable, logger *logging.Logger) *PlayerMatcher {
	if logger == nil {
		logger = logging.Default()
	}
	opts = opts.WithDefaults()

	return &PlayerMatcher{
		opts:   opts,
		scorer: NewCandidateScorer(opts, nicknames),
		logger: logger,
		now:    time.Now,
	}
}

func (m *PlayerMatcher) Options() matching.Options {
	return m.opts
}

// Match scores every candidate and picks the best one. An empty candidate
// set yields NoMatch.
func (m *PlayerMatcher) Match(external player.ExternalPlayer, candidates []player.Candidate) matching.MatchResult {
	result := matching.MatchResult{
		ExternalID:   strings.TrimSpace(external.ExternalID),
		ExternalName: external.FullName(),
		Method:       matching.MethodNoMatch,
		MatchedAt:    m.now().UTC(),
	}
	if len(candidates) == 0 {
		return result
	}

	scores := make([]CandidateScore, 0, len(candidates))
	for _, candidate := range candidates {
		scores = append(scores, m.scorer.Score(external, candidate))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return scores[i].Candidate.ID < scores[j].Candidate.ID
	})

	limit := m.opts.MaxAlternateCandidates
	if limit > len(scores) {
		limit = len(scores)
	}
	result.Alternates = make([]matching.MatchCandidate, 0, limit)
	for _, item := range scores[:limit] {
		result.Alternates = append(result.Alternates, matching.MatchCandidate{
			CandidateID: item.Candidate.ID,
			Name:        item.Candidate.FullName(),
			Team:        item.Candidate.TeamAbbreviation,
			Position:    item.Candidate.Position,
			Score:       item.Total,
			Reasons:     item.Reasons,
		})
	}

	best := scores[0]
	result.ConfidenceScore = best.Total
	result.Reasons = best.Reasons
	result.RequiresManualReview = best.Total < m.opts.AutoLinkConfidenceThreshold
	if len(scores) > 1 && best.Total-scores[1].Total < m.opts.ManualReviewThreshold {
		result.RequiresManualReview = true
	}

	if best.Total < m.opts.MinimumConfidenceThreshold {
		result.Method = matching.MethodNoMatch
		return result
	}

	candidateID := best.Candidate.ID
	result.MatchedCandidateID = &candidateID
	result.Method = matchMethod(best)
	return result
}

// BatchMatch matches every external in parallel. Results keep input order
// and do not depend on the worker count.
func (m *PlayerMatcher) BatchMatch(ctx context.Context, externals []player.ExternalPlayer, candidates []player.Candidate) ([]matching.MatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerMatcher.BatchMatch")
	defer span.End()

	results := make([]matching.MatchResult, len(externals))
	if len(externals) == 0 {
		return results, nil
	}

	workerCount := m.opts.Workers
	if workerCount > len(externals) {
		workerCount = len(externals)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create match worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for idx := range externals {
		if err := ctx.Err(); err != nil {
			workers.Wait()
			return nil, err
		}

		idx := idx
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[idx] = m.Match(externals[idx], candidates)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit match task to worker pool: %w", err)
		}
	}
	workers.Wait()

	m.logger.DebugContext(ctx, "batch match finished", "externals", len(externals), "candidates", len(candidates), "workers", workerCount)
	return results, nil
}

// LinkManually records an operator decision that bypasses scoring.
func (m *PlayerMatcher) LinkManually(candidateID int64, externalID string) (matching.MatchResult, error) {
	externalID = strings.TrimSpace(externalID)
	if candidateID <= 0 {
		return matching.MatchResult{}, fmt.Errorf("%w: candidate id must be > 0", ErrInvalidInput)
	}
	if externalID == "" {
		return matching.MatchResult{}, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}

	return matching.MatchResult{
		ExternalID:         externalID,
		MatchedCandidateID: &candidateID,
		ConfidenceScore:    1,
		Method:             matching.MethodManualLink,
		Reasons:            []string{"manual link"},
		MatchedAt:          m.now().UTC(),
	}, nil
}

func matchMethod(score CandidateScore) matching.Method {
	switch {
	case score.NameEvidence == nameEvidenceExact && score.TeamMatch:
		return matching.MethodExactNameAndTeam
	case score.NameEvidence == nameEvidenceExact && score.PositionScore >= 1:
		return matching.MethodExactNameAndPosition
	case score.NameEvidence != nameEvidenceNone && score.NameEvidence != nameEvidenceExact && score.TeamMatch:
		return matching.MethodFuzzyNameAndTeam
	case score.NameEvidence == nameEvidencePhonetic:
		return matching.MethodPhoneticMatch
	case score.NameEvidence == nameEvidenceNickname:
		return matching.MethodNameVariation
	case score.NameEvidence == nameEvidenceOverlap || score.NameEvidence == nameEvidenceExact:
		return matching.MethodFuzzyNameOnly
	default:
		return matching.MethodNone
	}
}
