package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

type recordingStream struct {
	args []*redis.XAddArgs
	err  error
}

func (r *recordingStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	r.args = append(r.args, a)
	if r.err != nil {
		return redis.NewStringResult("", r.err)
	}
	return redis.NewStringResult("1757264400000-0", nil)
}

func TestRedisStreamPublisher_Publish(t *testing.T) {
	t.Parallel()

	stream := &recordingStream{}
	publisher := NewRedisStreamPublisher(stream, RedisStreamConfig{}, logging.NewNop())
	publisher.now = func() time.Time { return time.Unix(1757264400, 0) }

	result := syncrun.NewResult("sync-1", syncrun.TypePlayers, time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC))
	result.PlayersProcessed = 3
	result.Finish(time.Date(2025, 9, 7, 17, 0, 5, 0, time.UTC))

	if err := publisher.Publish(context.Background(), syncrun.NewReport(*result)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(stream.args) != 1 {
		t.Fatalf("expected one XADD, got %d", len(stream.args))
	}

	args := stream.args[0]
	if args.Stream != defaultStream || args.MaxLen != defaultMaxLen || !args.Approx {
		t.Fatalf("unexpected stream args: %+v", args)
	}
	values := args.Values.(map[string]any)
	if values["sync_id"] != "sync-1" || values["status"] != string(syncrun.StatusCompleted) || values["timestamp"] != int64(1757264400) {
		t.Fatalf("unexpected values: %v", values)
	}

	var decoded syncrun.Report
	if err := sonic.UnmarshalString(values["data"].(string), &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.PlayersProcessed != 3 || decoded.DurationMs != 5000 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestRedisStreamPublisher_PropagatesError(t *testing.T) {
	t.Parallel()

	publisher := NewRedisStreamPublisher(&recordingStream{err: errors.New("READONLY")}, RedisStreamConfig{Stream: "custom"}, logging.NewNop())
	err := publisher.Publish(context.Background(), syncrun.Report{})
	if err == nil {
		t.Fatalf("expected error")
	}
}
