package crops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agritrack/agritrack/internal/platform/httpx"
	"github.com/agritrack/agritrack/internal/shared"
)

// Handler wires HTTP endpoints for the crops module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the crops handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers crop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/expenses", h.handleAddExpense)
	r.Post("/{id}/fertilizers", h.handleAddFertilizer)
	r.Post("/{id}/pesticides", h.handleAddPesticide)
	r.Post("/{id}/monitoring", h.handleAddObservation)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "crop not found")
	case errors.Is(err, shared.ErrAccessDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func cropID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()

	var farmID *int64
	if raw := q.Get("farm_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "farm_id must be an integer")
			return
		}
		farmID = &id
	}

	crops, err := h.service.List(r.Context(), caller, farmID, q.Get("status"))
	if err != nil {
		h.respondErr(w, "list crops", err)
		return
	}
	if crops == nil {
		crops = []Crop{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": len(crops), "crops": crops})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := cropID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "crop id must be an integer")
		return
	}
	crop, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.respondErr(w, "get crop", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"crop": crop})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	var req CreateCropRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	crop, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "farm not found")
			return
		}
		h.respondErr(w, "create crop", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"crop": crop})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := cropID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "crop id must be an integer")
		return
	}
	var req UpdateCropRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	crop, err := h.service.Update(r.Context(), caller, id, req)
	if err != nil {
		h.respondErr(w, "update crop", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"crop": crop})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := cropID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "crop id must be an integer")
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondErr(w, "delete crop", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "crop deleted"})
}

func (h *Handler) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := cropID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "crop id must be an integer")
		return
	}
	var req AddExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	crop, err := h.service.AddExpense(r.Context(), caller, id, req)
	if err != nil {
		h.respondErr(w, "add expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"crop": crop})
}

func (h *Handler) handleAddFertilizer(w http.ResponseWriter, r *http.Request) {
	h.handleAddApplication(w, r, h.service.AddFertilizer, "add fertilizer")
}

func (h *Handler) handleAddPesticide(w http.ResponseWriter, r *http.Request) {
	h.handleAddApplication(w, r, h.service.AddPesticide, "add pesticide")
}

func (h *Handler) handleAddApplication(w http.ResponseWriter, r *http.Request,
	add func(ctx context.Context, caller shared.Identity, cropID int64, req AddApplicationRequest) (*Crop, error), op string) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := cropID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "crop id must be an integer")
		return
	}
	var req AddApplicationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	crop, err := add(r.Context(), caller, id, req)
	if err != nil {
		h.respondErr(w, op, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"crop": crop})
}

func (h *Handler) handleAddObservation(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := cropID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "crop id must be an integer")
		return
	}
	var req AddObservationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	crop, err := h.service.AddObservation(r.Context(), caller, id, req)
	if err != nil {
		h.respondErr(w, "add observation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"crop": crop})
}
