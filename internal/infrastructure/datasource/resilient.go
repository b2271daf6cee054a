package datasource

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/platform/resilience"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

type Config struct {
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Resilient wraps a DataSource with retries on transient failures, a
// circuit breaker and deduplication of identical in-flight calls.
type Resilient struct {
	next           usecase.DataSource
	retry          resilience.RetryConfig
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	logger         *logging.Logger
	sleep          func(ctx context.Context, d time.Duration) error
}

var _ usecase.DataSource = (*Resilient)(nil)

func NewResilient(next usecase.DataSource, cfg Config, logger *logging.Logger) *Resilient {
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	breaker := resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("provider circuit breaker state changed", "from", string(from), "to", string(to))
	})

	return &Resilient{
		next:           next,
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
		logger:         logger,
	}
}

func (r *Resilient) FetchRoster(ctx context.Context) ([]player.ExternalPlayer, error) {
	return call(ctx, r, "roster", r.next.FetchRoster)
}

func (r *Resilient) FetchGamesForWeek(ctx context.Context, season, week int) ([]playerstats.GameRef, error) {
	key := "games:week:" + strconv.Itoa(season) + ":" + strconv.Itoa(week)
	return call(ctx, r, key, func(ctx context.Context) ([]playerstats.GameRef, error) {
		return r.next.FetchGamesForWeek(ctx, season, week)
	})
}

func (r *Resilient) FetchGamesForDate(ctx context.Context, date time.Time) ([]playerstats.GameRef, error) {
	key := "games:date:" + date.Format("2006-01-02")
	return call(ctx, r, key, func(ctx context.Context) ([]playerstats.GameRef, error) {
		return r.next.FetchGamesForDate(ctx, date)
	})
}

func (r *Resilient) FetchRawStats(ctx context.Context, gameID string) ([]playerstats.RawStatRecord, error) {
	return call(ctx, r, "stats:"+gameID, func(ctx context.Context) ([]playerstats.RawStatRecord, error) {
		return r.next.FetchRawStats(ctx, gameID)
	})
}

func (r *Resilient) BreakerState() resilience.CircuitState {
	return r.breaker.State()
}

func call[T any](ctx context.Context, r *Resilient, key string, fn func(context.Context) ([]T, error)) ([]T, error) {
	out, err, shared := r.flight.Do(key, func() (any, error) {
		var items []T
		err := r.retryLoop(ctx, key, func(ctx context.Context) error {
			var callErr error
			items, callErr = fn(ctx)
			return callErr
		})
		return items, err
	})
	if shared {
		r.logger.DebugContext(ctx, "provider call coalesced", "key", key)
	}
	if err != nil {
		return nil, err
	}

	items, _ := out.([]T)
	if shared {
		return append([]T(nil), items...), nil
	}
	return items, nil
}

func (r *Resilient) retryLoop(ctx context.Context, key string, fn func(context.Context) error) error {
	attempt := 0
	guarded := func(ctx context.Context) error {
		attempt++
		if !r.circuitEnabled {
			return fn(ctx)
		}
		err := r.breaker.Execute(func() error { return fn(ctx) }, isTransient)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			r.logger.WarnContext(ctx, "provider circuit breaker rejected request", "key", key, "state", r.breaker.State())
			return fmt.Errorf("%w: %w", usecase.ErrTransientProvider, err)
		}
		return err
	}

	retryable := func(err error) bool {
		if !isTransient(err) || errors.Is(err, resilience.ErrCircuitOpen) {
			return false
		}
		r.logger.WarnContext(ctx, "provider call failed, retrying", "key", key, "attempt", attempt, "error", err)
		return true
	}

	cfg := r.retry
	if attempts, ok := resilience.MaxAttemptsFromContext(ctx); ok {
		cfg.MaxAttempts = attempts
	}
	if r.sleep != nil {
		return resilience.RetryWithSleep(ctx, cfg, retryable, guarded, r.sleep)
	}
	return resilience.Retry(ctx, cfg, retryable, guarded)
}

func isTransient(err error) bool {
	return errors.Is(err, usecase.ErrTransientProvider)
}
