package analytichttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/agritrack/agritrack/internal/shared"
)

// MountRoutes registers the analytics endpoints. Reports are expensive
// to compute on a cache miss, so they carry a tighter per-user limit
// than the rest of the API.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(30, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/dashboard", h.handleDashboard)
		gr.Get("/crops", h.handleCrops)
		gr.Get("/financial", h.handleFinancial)
		gr.Get("/yield", h.handleYield)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if caller, ok := shared.IdentityFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(caller.UserID, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
