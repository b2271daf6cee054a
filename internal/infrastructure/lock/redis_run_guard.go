package lock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

const (
	defaultLockKey = "gridiron-sync:run-lock"
	defaultLockTTL = 10 * time.Minute
)

// Compare-and-delete so a holder whose lease expired cannot release the
// lock a newer holder acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Client is the subset of go-redis the guard needs.
type Client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

type RedisRunGuardConfig struct {
	Key string
	TTL time.Duration
}

// RedisRunGuard extends the single-run rule across processes with a
// SET NX PX lease that is refreshed while the run holds it.
type RedisRunGuard struct {
	client Client
	key    string
	ttl    time.Duration
	logger *logging.Logger
}

var _ usecase.RunGuard = (*RedisRunGuard)(nil)

func NewRedisRunGuard(client Client, cfg RedisRunGuardConfig, logger *logging.Logger) *RedisRunGuard {
	if logger == nil {
		logger = logging.Default()
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = defaultLockKey
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RedisRunGuard{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

func (g *RedisRunGuard) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	acquired, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire run lock key=%s: %w", g.key, err)
	}
	if !acquired {
		g.logger.InfoContext(ctx, "run lock held elsewhere", "key", g.key)
		return nil, false, nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go g.keepAlive(context.WithoutCancel(ctx), token, stop, done)

	var once sync.Once
	var releaseErr error
	release := func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
			_, err := releaseScript.Run(ctx, g.client, []string{g.key}, token).Int64()
			if err != nil {
				releaseErr = fmt.Errorf("release run lock key=%s: %w", g.key, err)
			}
		})
		return releaseErr
	}
	return release, true, nil
}

func (g *RedisRunGuard) keepAlive(ctx context.Context, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			held, err := refreshScript.Run(ctx, g.client, []string{g.key}, token, g.ttl.Milliseconds()).Int64()
			if err != nil {
				g.logger.WarnContext(ctx, "refresh run lock failed", "key", g.key, "error", err)
				continue
			}
			if held == 0 {
				g.logger.WarnContext(ctx, "run lock lease lost", "key", g.key)
				return
			}
		}
	}
}
