package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

// PlayerLinkService applies operator decisions to the roster.
type PlayerLinkService struct {
	matcher *PlayerMatcher
	players player.Repository
	reviews matching.ReviewRepository
	logger  *logging.Logger
}

func NewPlayerLinkService(matcher *PlayerMatcher, players player.Repository, reviews matching.ReviewRepository, logger *logging.Logger) *PlayerLinkService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerLinkService{
		matcher: matcher,
		players: players,
		reviews: reviews,
		logger:  logger,
	}
}

// Link binds externalID to an existing candidate regardless of score.
func (s *PlayerLinkService) Link(ctx context.Context, candidateID int64, externalID string) (matching.MatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLinkService.Link")
	defer span.End()

	result, err := s.matcher.LinkManually(candidateID, externalID)
	if err != nil {
		return matching.MatchResult{}, err
	}

	linked, err := s.players.LinkExternalID(ctx, candidateID, result.ExternalID)
	if err != nil {
		return matching.MatchResult{}, fmt.Errorf("link external id: %w", err)
	}
	if !linked {
		return matching.MatchResult{}, fmt.Errorf("%w: candidate=%d", ErrNotFound, candidateID)
	}

	if s.reviews != nil {
		if err := s.reviews.Resolve(ctx, result.ExternalID); err != nil {
			s.logger.WarnContext(ctx, "resolve match review failed", "external_id", result.ExternalID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "player linked manually", "candidate_id", candidateID, "external_id", result.ExternalID)
	return result, nil
}

func (s *PlayerLinkService) PendingReviews(ctx context.Context, limit int) ([]matching.Review, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLinkService.PendingReviews")
	defer span.End()

	if s.reviews == nil {
		return []matching.Review{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	items, err := s.reviews.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}
	return items, nil
}
