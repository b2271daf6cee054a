package player

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	FindLinkByExternalID(ctx context.Context, externalID string) (int64, bool, error)
	ListActiveCandidates(ctx context.Context) ([]Candidate, error)
	ListAll(ctx context.Context) ([]Candidate, error)
	Create(ctx context.Context, external ExternalPlayer) (int64, error)
	UpdateLinkage(ctx context.Context, candidateID int64, external ExternalPlayer) (bool, error)
	LinkExternalID(ctx context.Context, candidateID int64, externalID string) (bool, error)
}
