package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	analytichttp "github.com/agritrack/agritrack/internal/analytics/http"
	"github.com/agritrack/agritrack/internal/auth"
	"github.com/agritrack/agritrack/internal/crops"
	"github.com/agritrack/agritrack/internal/farms"
	"github.com/agritrack/agritrack/internal/inventory"
	"github.com/agritrack/agritrack/internal/observability"
	"github.com/agritrack/agritrack/internal/shared"
	"github.com/agritrack/agritrack/internal/users"
	"github.com/agritrack/agritrack/internal/weather"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	FarmsHandler     *farms.Handler
	CropsHandler     *crops.Handler
	InventoryHandler *inventory.Handler
	WeatherHandler   *weather.Handler
	UsersHandler     *users.Handler
	AnalyticsHandler *analytichttp.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with AgriTrack defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth)
		r.Route("/farms", params.FarmsHandler.MountRoutes)
		r.Route("/crops", params.CropsHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/weather", params.WeatherHandler.MountRoutes)
		r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
	})

	return r
}
