package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salesdash/salesdash/internal/analytics"
	"github.com/salesdash/salesdash/internal/analytics/export"
	"github.com/salesdash/salesdash/internal/analytics/svg"
	"github.com/salesdash/salesdash/internal/view"
)

type stubPDF struct {
	data []byte
	err  error
	last export.DashboardPayload
}

func (s *stubPDF) RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error) {
	s.last = payload
	if s.data == nil {
		content := bytes.Repeat([]byte("PDF"), 400)
		s.data = append([]byte("%PDF-1.4\n"), content...)
	}
	return s.data, s.err
}

type stubPNG struct {
	err    error
	metric analytics.Dimension
}

func (s *stubPNG) RenderDaily(w io.Writer, records []analytics.DailyRecord, d analytics.Dimension) error {
	s.metric = d
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte("\x89PNG"))
	return err
}

type stubMetrics struct {
	builds  int32
	exports map[string]error
}

func (s *stubMetrics) ObserveViewModelBuild(metric string, d time.Duration) {
	atomic.AddInt32(&s.builds, 1)
}

func (s *stubMetrics) ObserveExport(format string, err error) {
	s.exports[format] = err
}

type failingService struct {
	*analytics.Service
}

func (f failingService) GetFunnel(ctx context.Context) ([]analytics.FunnelStage, error) {
	return nil, errors.New("funnel unavailable")
}

type slowService struct {
	*analytics.Service
}

func (s slowService) GetFunnel(ctx context.Context) ([]analytics.FunnelStage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newService(d analytics.Dataset) *analytics.Service {
	source, err := analytics.NewStaticSource(d)
	if err != nil {
		panic(err)
	}
	return analytics.NewService(source, nil, analytics.DefaultSalesTarget)
}

func newTestHandler(t *testing.T, service DashboardService) *Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	if service == nil {
		service = newService(analytics.SampleDataset())
	}
	handler := NewHandler(nil, service, templates, svg.Renderer{}, &stubPDF{}, &stubPNG{})
	handler.WithNow(func() time.Time { return time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC) })
	return handler
}

func TestDashboardSuccess(t *testing.T) {
	handler := newTestHandler(t, nil)
	metrics := &stubMetrics{exports: map[string]error{}}
	handler.WithMetrics(metrics)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"E-commerce Аналитика",
		"Динамика за 30 дней",
		"+40%",
		"План продаж",
		"93%",
		"Общая конверсия: 3.65%",
		"Данные обновлены: 30 декабря 2024 | Демонстрационный дашборд",
		"<svg",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in response", want)
		}
	}
	if !strings.Contains(body, `class="tab tab-active" href="/dashboard?metric=revenue"`) {
		t.Fatalf("expected revenue tab to be active")
	}
	if atomic.LoadInt32(&metrics.builds) != 1 {
		t.Fatalf("expected one view model build, got %d", metrics.builds)
	}
}

func TestDashboardSwitchesMetric(t *testing.T) {
	handler := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/dashboard?metric=orders", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `class="tab tab-active" href="/dashboard?metric=orders"`) {
		t.Fatalf("expected orders tab to be active")
	}
	if strings.Contains(body, `class="tab tab-active" href="/dashboard?metric=revenue"`) {
		t.Fatalf("revenue tab should not be active")
	}
	if !strings.Contains(body, "Динамика за 30 дней: Заказы") {
		t.Fatalf("expected orders chart title")
	}
}

func TestDashboardEmptyDatasetShowsPlaceholders(t *testing.T) {
	handler := newTestHandler(t, newService(analytics.Dataset{Title: "Пусто", UpdatedAt: "вчера"}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Count(body, emptyChart) != 6 {
		t.Fatalf("expected six empty chart placeholders, got %d", strings.Count(body, emptyChart))
	}
	if strings.Contains(body, "NaN") {
		t.Fatalf("empty dataset must not render NaN")
	}
	if !strings.Contains(body, "Общая конверсия: 0.00%") {
		t.Fatalf("expected zero overall conversion")
	}
}

func TestInvalidMetricReturnsBadRequest(t *testing.T) {
	handler := newTestHandler(t, nil)
	for _, target := range []string{"/dashboard?metric=profit", "/dashboard/export.csv?metric=x", "/dashboard/chart.png?metric=1"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		switch {
		case strings.Contains(target, "csv"):
			handler.handleCSV(rr, req)
		case strings.Contains(target, "png"):
			handler.handlePNG(rr, req)
		default:
			handler.handleDashboard(rr, req)
		}
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "revenue, orders, visitors") {
			t.Fatalf("%s: expected allowed metrics in body", target)
		}
	}
}

func TestDashboardServiceError(t *testing.T) {
	handler := newTestHandler(t, failingService{newService(analytics.SampleDataset())})
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestCSVExport(t *testing.T) {
	handler := newTestHandler(t, nil)
	metrics := &stubMetrics{exports: map[string]error{}}
	handler.WithMetrics(metrics)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv?metric=visitors", nil)
	rr := httptest.NewRecorder()
	handler.handleCSV(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "sales-dashboard-visitors.csv") {
		t.Fatalf("unexpected disposition %s", cd)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Active Metric,visitors") {
		t.Fatalf("expected active metric row in CSV")
	}
	if !strings.Contains(body, "Region,Revenue,Orders") {
		t.Fatalf("expected regions section in CSV")
	}
	if _, ok := metrics.exports["csv"]; !ok {
		t.Fatalf("expected csv export to be observed")
	}
}

func TestPDFExport(t *testing.T) {
	pdf := &stubPDF{}
	handler := newTestHandler(t, nil)
	handler.pdf = pdf
	handler.newID = func() string { return "export-1" }

	req := httptest.NewRequest(http.MethodGet, "/dashboard/pdf?metric=orders", nil)
	rr := httptest.NewRecorder()
	handler.handlePDF(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if rr.Header().Get("X-Export-ID") != "export-1" {
		t.Fatalf("expected export id header")
	}
	if rr.Body.Len() <= 1024 {
		t.Fatalf("expected pdf body >1KB, got %d bytes", rr.Body.Len())
	}
	if pdf.last.Metric != analytics.DimensionOrders || len(pdf.last.Dataset.Daily) != 30 {
		t.Fatalf("unexpected payload %#v", pdf.last.Metric)
	}
	if pdf.last.Summary.TotalOrders != 2002 {
		t.Fatalf("expected summary in payload, got %d orders", pdf.last.Summary.TotalOrders)
	}
}

func TestPDFExportUnavailable(t *testing.T) {
	handler := newTestHandler(t, nil)
	handler.pdf = nil
	rr := httptest.NewRecorder()
	handler.handlePDF(rr, httptest.NewRequest(http.MethodGet, "/dashboard/pdf", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	handler.pdf = &stubPDF{err: errors.New("gotenberg down")}
	rr = httptest.NewRecorder()
	handler.handlePDF(rr, httptest.NewRequest(http.MethodGet, "/dashboard/pdf", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestPNGExport(t *testing.T) {
	png := &stubPNG{}
	handler := newTestHandler(t, nil)
	handler.png = png

	rr := httptest.NewRecorder()
	handler.handlePNG(rr, httptest.NewRequest(http.MethodGet, "/dashboard/chart.png?metric=visitors", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected content type %s", rr.Header().Get("Content-Type"))
	}
	if png.metric != analytics.DimensionVisitors {
		t.Fatalf("expected visitors metric, got %s", png.metric)
	}

	handler.png = &stubPNG{err: export.ErrNoData}
	rr = httptest.NewRecorder()
	handler.handlePNG(rr, httptest.NewRequest(http.MethodGet, "/dashboard/chart.png", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty chart, got %d", rr.Code)
	}
}

func TestMountRoutes(t *testing.T) {
	handler := newTestHandler(t, nil)
	router := chi.NewRouter()
	handler.MountRoutes(router)

	for _, target := range []string{"/dashboard", "/dashboard/export.csv", "/dashboard/pdf", "/dashboard/chart.png"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rr.Code)
		}
	}
}

func TestExportRateLimit(t *testing.T) {
	handler := newTestHandler(t, nil)
	router := chi.NewRouter()
	handler.MountRoutes(router)

	var last int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", last)
	}
}

func TestDashboardHonoursConfiguredTimeout(t *testing.T) {
	handler := newTestHandler(t, slowService{newService(analytics.SampleDataset())})
	handler.WithTimeout(20 * time.Millisecond)
	if handler.timeout != 20*time.Millisecond {
		t.Fatalf("expected timeout override, got %s", handler.timeout)
	}
	handler.WithTimeout(0)
	if handler.timeout != 20*time.Millisecond {
		t.Fatalf("non-positive timeout should be ignored, got %s", handler.timeout)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	start := time.Now()
	handler.handleDashboard(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after timeout, got %d", rr.Code)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("handler ignored its timeout, took %s", elapsed)
	}
}
