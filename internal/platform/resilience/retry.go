package resilience

import (
	"context"
	"time"
)

// Retry runs fn until it succeeds, retryable reports false, attempts run
// out or ctx is done. The last error is returned.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, fn func(ctx context.Context) error) error {
	return RetryWithSleep(ctx, cfg, retryable, fn, sleepContext)
}

// RetryWithSleep is Retry with an injected wait between attempts.
func RetryWithSleep(
	ctx context.Context,
	cfg RetryConfig,
	retryable func(error) bool,
	fn func(ctx context.Context) error,
	sleep func(ctx context.Context, d time.Duration) error,
) error {
	cfg = NormalizeRetryConfig(cfg)

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts || (retryable != nil && !retryable(err)) {
			return err
		}
		if sleepErr := sleep(ctx, backoffFor(cfg, attempt)); sleepErr != nil {
			return err
		}
	}
	return err
}

func backoffFor(cfg RetryConfig, attempt int) time.Duration {
	wait := time.Duration(attempt) * cfg.Backoff
	if wait > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return wait
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
