package syncrun

import "context"

type Repository interface {
	Save(ctx context.Context, report Report) error
	GetByID(ctx context.Context, id string) (Report, bool, error)
	ListRecent(ctx context.Context, limit int) ([]Report, error)
}
