package observability

import (
	"testing"

	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("http request", []any{"method", "GET", "path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipUptraceLog("http request", []any{"path", "/v1/internal/sync/status"}) {
		t.Fatalf("did not expect non-health log to be skipped")
	}
	if shouldSkipUptraceLog("qstash publish request", []any{"path", "/healthz"}) {
		t.Fatalf("did not expect non-http_request event to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"sync_id", "sync-20250907", "attempt", 2, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "sync_id" || attrs[0].Value.AsString() != "sync-20250907" {
		t.Fatalf("unexpected sync_id attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"passing_yards": 312,
		"home":          true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}

func TestToOTelLogValue_NamedKindsAndStructs(t *testing.T) {
	if v := toOTelLogValue(syncrun.StatusPartiallyCompleted, 0); v.Kind() != otellog.KindString || v.AsString() != "partially_completed" {
		t.Fatalf("named string should stay a string, got %s %v", v.Kind(), v)
	}

	counts := toOTelLogValue(syncrun.ErrorCounts{DataErrors: 2, APIErrors: 1}, 0)
	if counts.Kind() != otellog.KindMap {
		t.Fatalf("struct should become a map, got %s", counts.Kind())
	}
	found := false
	for _, kv := range counts.AsMap() {
		if kv.Key == "data_errors" {
			found = true
			if kv.Value.AsInt64() != 2 {
				t.Fatalf("unexpected data_errors value: %v", kv.Value)
			}
		}
	}
	if !found {
		t.Fatalf("expected json tag keys in struct map: %+v", counts.AsMap())
	}

	fields := toOTelLogValue(map[string]float64{"rushing_yards": 88, "passing_yards": 312}, 0).AsMap()
	if len(fields) != 2 || fields[0].Key != "passing_yards" {
		t.Fatalf("map keys should be sorted: %+v", fields)
	}
}

func TestShouldSkipUptraceLog_Docs(t *testing.T) {
	if !shouldSkipUptraceLog("http request", []any{"path", "/docs/"}) {
		t.Fatalf("expected docs traffic to be skipped")
	}
	if !shouldSkipUptraceLog("http request", []any{"path", "/openapi.yaml"}) {
		t.Fatalf("expected openapi fetch to be skipped")
	}
}
