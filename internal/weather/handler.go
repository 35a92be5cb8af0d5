package weather

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agritrack/agritrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the weather proxy.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the weather handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers weather routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/current", h.handleCurrent)
	r.Get("/forecast", h.handleForecast)
	r.Get("/alerts", h.handleAlerts)
	r.Get("/historical", h.handleHistorical)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "weather provider is not configured")
	case errors.Is(err, ErrProvider):
		h.logger.Warn(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "weather provider request failed")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// coords pulls and validates the lat/lon query parameters.
func coords(r *http.Request) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func invalidCoords(w http.ResponseWriter) {
	httpx.Problem(w, http.StatusBadRequest, "Invalid Coordinates", "lat and lon query parameters are required")
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coords(r)
	if !ok {
		invalidCoords(w)
		return
	}
	report, err := h.service.Current(r.Context(), lat, lon)
	if err != nil {
		h.respondErr(w, "current weather", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coords(r)
	if !ok {
		invalidCoords(w)
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	forecast, err := h.service.Forecast(r.Context(), lat, lon, days)
	if err != nil {
		h.respondErr(w, "weather forecast", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"forecast": forecast})
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coords(r)
	if !ok {
		invalidCoords(w)
		return
	}
	alerts, err := h.service.Alerts(r.Context(), lat, lon)
	if err != nil {
		h.respondErr(w, "weather alerts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) handleHistorical(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coords(r)
	if !ok {
		invalidCoords(w)
		return
	}
	var from, to time.Time
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "start_date must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "end_date must be YYYY-MM-DD")
			return
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	snaps, err := h.service.Historical(r.Context(), lat, lon, from, to)
	if err != nil {
		h.respondErr(w, "historical weather", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}
