package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

func TestDocsRoutesFollowSwaggerFlag(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil, nil, nil, nil, nil, logging.NewNop())

	enabled := NewRouter(handler, logging.NewNop(), RouterConfig{SwaggerEnabled: true})
	rec := httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("openapi status: got %d want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "X-Internal-Job-Token") {
		t.Fatalf("openapi document should declare the job token scheme")
	}

	rec = httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "persistAuthorization") {
		t.Fatalf("unexpected docs response: %d %q", rec.Code, rec.Body.String())
	}

	disabled := NewRouter(handler, logging.NewNop(), RouterConfig{})
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("docs should be hidden when swagger is disabled, got %d", rec.Code)
	}
}
