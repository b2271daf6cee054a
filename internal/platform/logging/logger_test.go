package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestLogger_ContextSyncID(t *testing.T) {
	logger, logs := newObserved()
	ctx := ContextWithSyncID(context.Background(), "sync-42")

	logger.InfoContext(ctx, "player batch synced", "batch", 2)
	logger.WarnContext(ctx, "sync item failed", "sync_id", "sync-42", "error", errors.New("boom"))
	logger.Info("no context")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["sync_id"]; got != "sync-42" {
		t.Fatalf("expected sync_id from context, got %v", got)
	}

	count := 0
	for _, field := range entries[1].Context {
		if field.Key == "sync_id" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("explicit sync_id must not be duplicated, got %d fields", count)
	}
	if _, ok := entries[2].ContextMap()["sync_id"]; ok {
		t.Fatalf("plain calls must not carry a sync_id")
	}
}

func TestLogger_OddArgsAndNilReceiver(t *testing.T) {
	logger, logs := newObserved()
	logger.Debug("dangling", "key")

	fields := logs.All()[0].ContextMap()
	if v, ok := fields["key"]; !ok || v != nil {
		t.Fatalf("expected dangling key with nil value, got %v", fields)
	}

	var missing *Logger
	missing.Info("falls back to default")
	if _, ok := SyncIDFromContext(context.Background()); ok {
		t.Fatalf("expected no sync id on background context")
	}
}
