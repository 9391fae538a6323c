package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	analytichttp "github.com/salesdash/salesdash/internal/analytics/http"
	"github.com/salesdash/salesdash/internal/observability"
	"github.com/salesdash/salesdash/internal/platform/httpx"
	"github.com/salesdash/salesdash/internal/view"
	"github.com/salesdash/salesdash/jobs"
	"github.com/salesdash/salesdash/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	log := logger(params.Logger)

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  log,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		target := analytichttp.DashboardPath
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})

	if params.AnalyticsHandler != nil {
		params.AnalyticsHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		log.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if params.Templates == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		data := view.TemplateData{Title: "Страница не найдена", CurrentPath: r.URL.Path}
		if err := params.Templates.RenderTo(w, "pages/not_found.html", data); err != nil {
			log.Error("render not found", slog.Any("error", err))
		}
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in the browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
