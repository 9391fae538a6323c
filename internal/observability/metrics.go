package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the dashboard server.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	vmBuild         *prometheus.HistogramVec
	exports         *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP, cache and export collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesdash_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salesdash_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesdash_cache_lookups_total",
		Help: "Dashboard cache lookups by section and result.",
	}, []string{"section", "result"})
	vmBuild := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salesdash_vm_build_duration_seconds",
		Help:    "Time spent building the dashboard view model per metric.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"metric"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesdash_exports_total",
		Help: "Dashboard exports by format and status.",
	}, []string{"format", "status"})
	registry.MustRegister(
		requests, duration, cache, vmBuild, exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		cacheLookups:    cache,
		vmBuild:         vmBuild,
		exports:         exports,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveCache counts a cache lookup for the section.
func (m *Metrics) ObserveCache(section string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(section, result).Inc()
}

// ObserveViewModelBuild records how long a dashboard view model took to build.
func (m *Metrics) ObserveViewModelBuild(metric string, d time.Duration) {
	if m == nil {
		return
	}
	m.vmBuild.WithLabelValues(metric).Observe(d.Seconds())
}

// ObserveExport counts an export attempt.
func (m *Metrics) ObserveExport(format string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.exports.WithLabelValues(format, status).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer exposes the registry for tests and pushers.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
