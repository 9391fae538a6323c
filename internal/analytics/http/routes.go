package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get(DashboardPath, h.handleDashboard)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get(DashboardPath+"/pdf", h.handlePDF)
		gr.Get(DashboardPath+"/export.csv", h.handleCSV)
		gr.Get(DashboardPath+"/chart.png", h.handlePNG)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
