package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/salesdash/salesdash/internal/analytics"
	"github.com/salesdash/salesdash/internal/analytics/export"
	"github.com/salesdash/salesdash/internal/analytics/svg"
	"github.com/salesdash/salesdash/internal/analytics/ui"
	"github.com/salesdash/salesdash/internal/view"
)

const defaultRequestTimeout = 2 * time.Second

// pdfTimeout covers a Gotenberg round trip, which runs well past the page budget.
const pdfTimeout = 30 * time.Second

const emptyChart = "Нет данных"

// DashboardPath is where the dashboard page is mounted.
const DashboardPath = "/dashboard"

// DashboardService defines the data contract used by the handler.
type DashboardService interface {
	GetMeta(ctx context.Context) (analytics.DatasetMeta, error)
	GetDataset(ctx context.Context) (analytics.Dataset, error)
	GetKPISummary(ctx context.Context) (analytics.KPISummary, error)
	GetDailySeries(ctx context.Context) ([]analytics.DailyRecord, error)
	GetCategoryBreakdown(ctx context.Context) ([]analytics.CategoryRecord, error)
	GetTopProducts(ctx context.Context) ([]analytics.ProductRecord, error)
	GetFunnel(ctx context.Context) ([]analytics.FunnelStage, error)
	GetTrafficSources(ctx context.Context) ([]analytics.TrafficSource, error)
	GetRegions(ctx context.Context) ([]analytics.RegionRecord, error)
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// PNGService renders the daily chart as an image.
type PNGService interface {
	RenderDaily(w io.Writer, records []analytics.DailyRecord, d analytics.Dimension) error
}

// MetricsRecorder receives build and export observations.
type MetricsRecorder interface {
	ObserveViewModelBuild(metric string, d time.Duration)
	ObserveExport(format string, err error)
}

// Handler coordinates HTTP requests for the sales dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	charts    ui.ChartRenderer
	pdf       PDFService
	png       PNGService
	metrics   MetricsRecorder
	bufPool   sync.Pool
	vmGroup   singleflight.Group
	now       func() time.Time
	newID     func() string
	timeout   time.Duration
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, charts ui.ChartRenderer, pdf PDFService, png PNGService) *Handler {
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		charts:    charts,
		pdf:       pdf,
		png:       png,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		timeout:   defaultRequestTimeout,
	}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithTimeout bounds page, CSV and PNG requests. Non-positive values keep the
// default.
func (h *Handler) WithTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// WithMetrics attaches a metrics recorder.
func (h *Handler) WithMetrics(m MetricsRecorder) {
	h.metrics = m
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err, _ := h.singleflightBuild(ctx, "dashboard:"+filters.Metric.String(), func(ctx context.Context) (interface{}, error) {
		start := h.now()
		data, err := h.loadDashboardData(ctx)
		if err != nil {
			return nil, fmt.Errorf("load dashboard: %w", err)
		}
		vm, err := h.buildViewModel(ctx, filters, data)
		if err != nil {
			return nil, fmt.Errorf("render charts: %w", err)
		}
		if h.metrics != nil {
			h.metrics.ObserveViewModelBuild(filters.Metric.String(), h.now().Sub(start))
		}
		return vm, nil
	})
	if err != nil {
		h.handleServerError(w, "build dashboard", err)
		return
	}
	vm := result.(ui.DashboardViewModel)

	viewData := view.TemplateData{
		Title:       vm.Title,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	buf := h.getBuffer()
	defer h.putBuffer(buf)
	if err := h.templates.RenderTo(buf, "pages/dashboard.html", viewData); err != nil {
		h.handleServerError(w, "render template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream dashboard", err)
	}
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, dataset, err := h.loadExportData(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	buf := h.getBuffer()
	defer h.putBuffer(buf)
	err = export.WriteDashboardCSV(buf, summary, filters.Metric, dataset)
	h.observeExport("csv", err)
	if err != nil {
		h.handleServerError(w, "write csv", err)
		return
	}

	h.writeAttachment(w, "text/csv; charset=utf-8", fmt.Sprintf("sales-dashboard-%s.csv", filters.Metric), buf.Bytes())
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		http.Error(w, "PDF export unavailable", http.StatusServiceUnavailable)
		return
	}
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()

	summary, dataset, err := h.loadExportData(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	payload := export.DashboardPayload{
		ExportID:    h.newID(),
		GeneratedAt: h.now(),
		Metric:      filters.Metric,
		Summary:     summary,
		Dataset:     dataset,
	}
	pdfBytes, err := h.pdf.RenderDashboard(ctx, payload)
	h.observeExport("pdf", err)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}

	w.Header().Set("X-Export-ID", payload.ExportID)
	h.writeAttachment(w, "application/pdf", "sales-dashboard.pdf", pdfBytes)
}

func (h *Handler) handlePNG(w http.ResponseWriter, r *http.Request) {
	if h.png == nil {
		http.Error(w, "PNG export unavailable", http.StatusServiceUnavailable)
		return
	}
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	daily, err := h.service.GetDailySeries(ctx)
	if err != nil {
		h.handleServerError(w, "load daily series", err)
		return
	}

	buf := h.getBuffer()
	defer h.putBuffer(buf)
	err = h.png.RenderDaily(buf, daily, filters.Metric)
	h.observeExport("png", err)
	if errors.Is(err, export.ErrNoData) {
		http.Error(w, emptyChart, http.StatusNotFound)
		return
	}
	if err != nil {
		h.handleServerError(w, "render png", err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream png", err)
	}
}

func (h *Handler) parseFilters(r *http.Request) (ui.DashboardFilters, error) {
	metric, err := analytics.ParseDimension(r.URL.Query().Get("metric"))
	if err != nil {
		return ui.DashboardFilters{}, validationError{field: "metric", err: err}
	}
	return ui.DashboardFilters{Metric: metric}, nil
}

type dashboardData struct {
	meta       analytics.DatasetMeta
	summary    analytics.KPISummary
	daily      []analytics.DailyRecord
	categories []analytics.CategoryRecord
	products   []analytics.ProductRecord
	funnel     []analytics.FunnelStage
	traffic    []analytics.TrafficSource
	regions    []analytics.RegionRecord
}

func (h *Handler) loadDashboardData(ctx context.Context) (dashboardData, error) {
	var data dashboardData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.meta, err = h.service.GetMeta(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.summary, err = h.service.GetKPISummary(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.daily, err = h.service.GetDailySeries(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.categories, err = h.service.GetCategoryBreakdown(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.products, err = h.service.GetTopProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.funnel, err = h.service.GetFunnel(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.traffic, err = h.service.GetTrafficSources(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.regions, err = h.service.GetRegions(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

func (h *Handler) loadExportData(ctx context.Context) (analytics.KPISummary, analytics.Dataset, error) {
	var (
		summary analytics.KPISummary
		dataset analytics.Dataset
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = h.service.GetKPISummary(ctx)
		return err
	})
	g.Go(func() (err error) {
		dataset, err = h.service.GetDataset(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.KPISummary{}, analytics.Dataset{}, err
	}
	return summary, dataset, nil
}

func (h *Handler) buildViewModel(ctx context.Context, filters ui.DashboardFilters, data dashboardData) (ui.DashboardViewModel, error) {
	if h.charts == nil {
		return ui.DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}
	metric := filters.Metric
	vm := ui.DashboardViewModel{
		Filters:           filters,
		Title:             data.meta.Title,
		Subtitle:          data.meta.Subtitle,
		UpdatedAt:         data.meta.UpdatedAt,
		KPI:               data.summary,
		Cards:             ui.BuildCards(data.summary),
		Target:            ui.BuildTargetCard(data.summary),
		Tabs:              ui.BuildTabs(data.summary, metric, DashboardPath),
		ActiveLabel:       metric.Config().Label,
		Daily:             ui.ToDailyPoints(data.daily, metric),
		Categories:        ui.ToCategorySlices(data.categories),
		CategoryTotal:     analytics.FormatMillions(analytics.CategoryTotal(data.categories), 1),
		Products:          ui.ToProductRows(data.products),
		Funnel:            ui.ToFunnelRows(data.funnel),
		OverallConversion: analytics.OverallConversion(data.funnel),
		Traffic:           ui.ToTrafficRows(data.traffic),
		Regions:           ui.ToRegionRows(data.regions),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		vm.DailySVG, err = h.renderDaily(vm.Daily, metric)
		return err
	})
	g.Go(func() (err error) {
		vm.CategorySVG, err = h.renderCategories(vm.Categories, vm.CategoryTotal)
		return err
	})
	g.Go(func() (err error) {
		vm.ProductsSVG, err = h.renderProducts(vm.Products)
		return err
	})
	g.Go(func() (err error) {
		vm.FunnelSVG, err = h.renderFunnel(vm.Funnel)
		return err
	})
	g.Go(func() (err error) {
		vm.TrafficSVG, err = h.renderTraffic(vm.Traffic)
		return err
	})
	g.Go(func() (err error) {
		vm.RegionsSVG, err = h.renderRegions(vm.Regions)
		return err
	})
	if err := g.Wait(); err != nil {
		return ui.DashboardViewModel{}, err
	}
	return vm, nil
}

func (h *Handler) renderDaily(points []ui.DailyPoint, metric analytics.Dimension) (template.HTML, error) {
	if len(points) == 0 {
		return svg.Empty(svg.DefaultWidth, 300, emptyChart), nil
	}
	series := make([]float64, 0, len(points))
	labels := make([]string, 0, len(points))
	titles := make([]string, 0, len(points))
	for _, p := range points {
		series = append(series, float64(p.Value))
		labels = append(labels, p.Date)
		titles = append(titles, p.Tooltip)
	}
	cfg := metric.Config()
	return h.charts.Line(svg.DefaultWidth, 300, series, labels, svg.LineOpts{
		Title:         "Динамика за 30 дней: " + cfg.Label,
		Description:   "Дневные значения метрики " + cfg.Label,
		StrokeColor:   cfg.Color,
		Gradient:      true,
		PointTitles:   titles,
		LabelEvery:    3,
		TickFormatter: func(v float64) string { return analytics.FormatAxisTick(metric, v) },
	})
}

func (h *Handler) renderCategories(slices []ui.CategorySlice, total string) (template.HTML, error) {
	if len(slices) == 0 {
		return svg.Empty(360, svg.DefaultHeight, emptyChart), nil
	}
	values := make([]float64, 0, len(slices))
	labels := make([]string, 0, len(slices))
	titles := make([]string, 0, len(slices))
	colors := make([]string, 0, len(slices))
	for _, s := range slices {
		values = append(values, float64(s.Value))
		labels = append(labels, s.Name)
		titles = append(titles, s.Tooltip)
		colors = append(colors, s.Color)
	}
	return h.charts.Pie(360, svg.DefaultHeight, values, labels, svg.PieOpts{
		Title:        "Продажи по категориям",
		Description:  "Распределение выручки",
		Colors:       colors,
		InnerRadius:  0.6,
		CenterLabel:  total,
		CenterDetail: "Всего",
		SliceTitles:  titles,
	})
}

func (h *Handler) renderProducts(rows []ui.ProductRow) (template.HTML, error) {
	if len(rows) == 0 {
		return svg.Empty(svg.DefaultWidth, svg.DefaultHeight, emptyChart), nil
	}
	values := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	valueLabels := make([]string, 0, len(rows))
	titles := make([]string, 0, len(rows))
	for _, p := range rows {
		values = append(values, float64(p.Revenue))
		labels = append(labels, p.Name)
		valueLabels = append(valueLabels, p.Label)
		titles = append(titles, p.Tooltip)
	}
	return h.charts.HBars(svg.DefaultWidth, 0, values, labels, svg.HBarOpts{
		Title:       "Топ-10 товаров",
		Description: "По выручке за период",
		Color:       svg.Palette[0],
		ValueLabels: valueLabels,
		BarTitles:   titles,
	})
}

func (h *Handler) renderFunnel(rows []ui.FunnelRow) (template.HTML, error) {
	if len(rows) == 0 {
		return svg.Empty(svg.DefaultWidth, svg.DefaultHeight, emptyChart), nil
	}
	values := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	valueLabels := make([]string, 0, len(rows))
	titles := make([]string, 0, len(rows))
	colors := make([]string, 0, len(rows))
	for _, f := range rows {
		values = append(values, float64(f.Value))
		labels = append(labels, f.Label)
		valueLabels = append(valueLabels, analytics.FormatGrouped(f.Value))
		titles = append(titles, f.Tooltip)
		colors = append(colors, f.Color)
	}
	return h.charts.HBars(svg.DefaultWidth, 0, values, labels, svg.HBarOpts{
		Title:       "Воронка конверсии",
		Description: "От посетителя до покупки",
		Colors:      colors,
		LabelWidth:  170,
		ValueLabels: valueLabels,
		BarTitles:   titles,
	})
}

func (h *Handler) renderTraffic(rows []ui.TrafficRow) (template.HTML, error) {
	if len(rows) == 0 {
		return svg.Empty(360, svg.DefaultHeight, emptyChart), nil
	}
	values := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	legend := make([]string, 0, len(rows))
	titles := make([]string, 0, len(rows))
	colors := make([]string, 0, len(rows))
	for _, t := range rows {
		values = append(values, float64(t.Visitors))
		labels = append(labels, t.Name)
		legend = append(legend, fmt.Sprintf("%s %s%%", t.Name, t.Share))
		titles = append(titles, t.Tooltip)
		colors = append(colors, t.Color)
	}
	return h.charts.Pie(360, svg.DefaultHeight, values, labels, svg.PieOpts{
		Title:        "Источники трафика",
		Description:  "Откуда приходят посетители",
		Colors:       colors,
		SliceTitles:  titles,
		LegendLabels: legend,
	})
}

func (h *Handler) renderRegions(rows []ui.RegionRow) (template.HTML, error) {
	if len(rows) == 0 {
		return svg.Empty(svg.DefaultWidth, svg.DefaultHeight, emptyChart), nil
	}
	values := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	valueLabels := make([]string, 0, len(rows))
	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, float64(r.Revenue))
		labels = append(labels, r.Region)
		valueLabels = append(valueLabels, r.Label)
		titles = append(titles, r.Tooltip)
	}
	return h.charts.Bars(svg.DefaultWidth, 280, values, labels, svg.BarOpts{
		Title:       "Продажи по регионам",
		Description: "Топ городов по выручке",
		Color:       svg.Palette[0],
		ValueLabels: valueLabels,
		BarTitles:   titles,
		TickFormatter: func(v float64) string {
			return analytics.FormatMillions(int64(v), 1)
		},
	})
}

func (h *Handler) singleflightBuild(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := h.vmGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

func (h *Handler) writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(body); err != nil {
		h.logError("stream "+filename, err)
	}
}

func (h *Handler) getBuffer() *bytes.Buffer {
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (h *Handler) putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	h.bufPool.Put(buf)
}

func (h *Handler) observeExport(format string, err error) {
	if h.metrics != nil {
		h.metrics.ObserveExport(format, err)
	}
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		http.Error(w, "Неизвестная метрика: допустимы "+allowedMetrics(), http.StatusBadRequest)
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
	err   error
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", v.field, v.err)
}

func (v validationError) Unwrap() error {
	return v.err
}

func allowedMetrics() string {
	dims := analytics.Dimensions()
	names := make([]string, 0, len(dims))
	for _, d := range dims {
		names = append(names, d.String())
	}
	return strings.Join(names, ", ")
}

// HandleDashboardForTest exposes the dashboard handler for tests.
func (h *Handler) HandleDashboardForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDashboard(w, r)
}

// HandlePDFForTest exposes the PDF handler for tests.
func (h *Handler) HandlePDFForTest(w http.ResponseWriter, r *http.Request) { h.handlePDF(w, r) }

// HandleCSVForTest exposes the CSV handler for tests.
func (h *Handler) HandleCSVForTest(w http.ResponseWriter, r *http.Request) { h.handleCSV(w, r) }

// HandlePNGForTest exposes the PNG handler for tests.
func (h *Handler) HandlePNGForTest(w http.ResponseWriter, r *http.Request) { h.handlePNG(w, r) }
