package matching

import "context"

// ReviewRepository stores matches flagged for manual review.
type ReviewRepository interface {
	Save(ctx context.Context, review Review) error
	ListPending(ctx context.Context, limit int) ([]Review, error)
	// Resolve closes the open review for externalID, if any.
	Resolve(ctx context.Context, externalID string) error
}
