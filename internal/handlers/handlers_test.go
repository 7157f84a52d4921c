package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abrezinsky/moviecup/internal/handlers"
	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/websocket"
)

func TestNewForTesting(t *testing.T) {
	hub := websocket.New(logger.Discard(), nil)
	h := handlers.NewForTesting(handlers.Services{}, hub)

	if h.Auth == nil {
		t.Fatal("expected auth to be set")
	}
	if _, ok := h.Auth.Login("test-password"); !ok {
		t.Error("expected the test password to be accepted")
	}
	if h.Hub != hub {
		t.Error("expected hub to be injected")
	}
	if h.Metrics != nil || h.Health != nil {
		t.Error("expected no metrics or health checker")
	}
	if h.Log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging to be disabled")
	}
}

func TestRouter_WithoutMetrics(t *testing.T) {
	h := handlers.NewForTesting(handlers.Services{}, websocket.New(logger.Discard(), nil))
	router := h.Router()

	rec := doRequest(router, http.MethodGet, "/metrics")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without metrics, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealth_WithDatabase(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/healthz", nil, false)
	var health handlers.HealthResponse
	decodeBody(t, rec, &health)
	if health.Status != "ok" || health.Database != "ok" {
		t.Errorf("unexpected health: %+v", health)
	}

	setup.repo.Close()
	rec = setup.do(t, http.MethodGet, "/healthz", nil, false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with closed database, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	setup := newTestSetup(t)

	setup.do(t, http.MethodGet, "/api/bracket-sizes", nil, false)
	setup.start(t, 4)

	rec := setup.do(t, http.MethodGet, "/metrics", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `route="/api/bracket-sizes"`) {
		t.Error("expected request metrics labelled by route pattern")
	}
	if !strings.Contains(body, "moviecup_pool_builds_total") {
		t.Error("expected pool build metrics")
	}
}

func doRequest(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
