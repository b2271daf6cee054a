package usecase

import (
	"context"
	"sync"
)

// RunGuard grants at most one active sync run. TryAcquire never blocks:
// it returns ok=false when another holder exists.
type RunGuard interface {
	TryAcquire(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// LocalRunGuard is the in-process guard.
type LocalRunGuard struct {
	mu sync.Mutex
}

func NewLocalRunGuard() *LocalRunGuard {
	return &LocalRunGuard{}
}

func (g *LocalRunGuard) TryAcquire(context.Context) (func(context.Context) error, bool, error) {
	if !g.mu.TryLock() {
		return nil, false, nil
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(g.mu.Unlock)
		return nil
	}, true, nil
}
