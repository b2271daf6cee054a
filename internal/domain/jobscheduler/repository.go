package jobscheduler

import "context"

type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	ListByDispatchID(ctx context.Context, dispatchID string) ([]DispatchEvent, error)
}
