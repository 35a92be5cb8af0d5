package analytichttp

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agritrack/agritrack/internal/analytics"
	"github.com/agritrack/agritrack/internal/platform/httpx"
	"github.com/agritrack/agritrack/internal/shared"
)

// Handler exposes the analytics read models over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
}

// NewHandler constructs the analytics handler.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// farmIDParam parses the optional farm_id query parameter. Malformed
// values are ignored, keeping the unfiltered scope.
func farmIDParam(r *http.Request) *int64 {
	raw := r.URL.Query().Get("farm_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	report, err := h.service.Dashboard(r.Context(), caller, r.URL.Query().Get("timeframe"))
	if err != nil {
		h.fail(w, "dashboard analytics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleCrops(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	report, err := h.service.Crops(r.Context(), caller, r.URL.Query().Get("timeframe"), farmIDParam(r))
	if err != nil {
		h.fail(w, "crop analytics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleFinancial(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	report, err := h.service.Financial(r.Context(), caller, r.URL.Query().Get("timeframe"), farmIDParam(r))
	if err != nil {
		h.fail(w, "financial analytics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleYield(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()
	report, err := h.service.Yield(r.Context(), caller, q.Get("timeframe"), farmIDParam(r), q.Get("crop_type"))
	if err != nil {
		h.fail(w, "yield analytics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Any storage or cache failure surfaces as a generic 500. The reports
// have no partial-result mode.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
