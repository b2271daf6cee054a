package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

var usecaseTracer = otel.Tracer("gridiron-sync/internal/usecase")

// startUsecaseSpan only opens child spans. CLI runs and cron ticks have no
// traced parent and get a no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// annotateSyncSpan records the outcome of a finished run on the span in ctx.
func annotateSyncSpan(ctx context.Context, result syncrun.Result) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String("sync.id", result.ID),
		attribute.String("sync.type", string(result.Type)),
		attribute.String("sync.status", string(result.Status)),
		attribute.Int("sync.players_processed", result.PlayersProcessed),
		attribute.Int("sync.stats_processed", result.StatsProcessed),
		attribute.Int("sync.data_errors", result.ErrorCounts.DataErrors),
		attribute.Int("sync.matching_errors", result.ErrorCounts.MatchingErrors),
		attribute.Int("sync.api_errors", result.ErrorCounts.APIErrors),
	)
	if result.Status == syncrun.StatusFailed {
		span.SetStatus(codes.Error, "sync failed")
	}
}
