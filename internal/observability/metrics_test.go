package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	body := scrape(t, NewMetrics())
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go collector output, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/dashboard")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "salesdash_http_requests_total{code=\"418\",route=\"/dashboard\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "salesdash_http_request_duration_seconds_bucket{route=\"/dashboard\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestDashboardObservations(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCache("daily", true)
	metrics.ObserveCache("daily", false)
	metrics.ObserveCache("daily", false)
	metrics.ObserveViewModelBuild("orders", 3*time.Millisecond)
	metrics.ObserveExport("csv", nil)
	metrics.ObserveExport("pdf", errors.New("gotenberg down"))

	body := scrape(t, metrics)
	for _, want := range []string{
		`salesdash_cache_lookups_total{result="hit",section="daily"} 1`,
		`salesdash_cache_lookups_total{result="miss",section="daily"} 2`,
		`salesdash_vm_build_duration_seconds_count{metric="orders"} 1`,
		`salesdash_exports_total{format="csv",status="success"} 1`,
		`salesdash_exports_total{format="pdf",status="failure"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in scrape output", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCache("x", true)
	m.ObserveViewModelBuild("x", time.Second)
	m.ObserveExport("x", nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if m.Middleware(next) == nil {
		t.Fatalf("expected passthrough handler")
	}
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
