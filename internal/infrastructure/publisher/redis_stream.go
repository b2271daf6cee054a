package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
)

const (
	defaultStream = "sync.reports.nfl"
	defaultMaxLen = 1000
)

// StreamAdder is the subset of go-redis the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type RedisStreamConfig struct {
	Stream string
	MaxLen int64
}

// RedisStreamPublisher appends finished sync reports to a Redis stream.
type RedisStreamPublisher struct {
	client StreamAdder
	stream string
	maxLen int64
	logger *logging.Logger
	now    func() time.Time
}

var _ usecase.ReportPublisher = (*RedisStreamPublisher)(nil)

func NewRedisStreamPublisher(client StreamAdder, cfg RedisStreamConfig, logger *logging.Logger) *RedisStreamPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = defaultStream
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}

	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
		now:    time.Now,
	}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, report syncrun.Report) error {
	data, err := sonic.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal sync report: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"sync_id":   report.ID,
			"type":      string(report.Type),
			"status":    string(report.Status),
			"data":      string(data),
			"timestamp": p.now().Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish sync report stream=%s: %w", p.stream, err)
	}

	p.logger.DebugContext(ctx, "sync report published", "stream", p.stream, "entry_id", id, "sync_id", report.ID)
	return nil
}
