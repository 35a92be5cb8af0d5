package farms

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agritrack/agritrack/internal/platform/httpx"
	"github.com/agritrack/agritrack/internal/shared"
)

// Handler wires HTTP endpoints for the farms module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the farms handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers farm routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/fields", h.handleAddField)
	r.Put("/{id}/fields/{fieldID}", h.handleUpdateField)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "farm not found")
	case errors.Is(err, shared.ErrAccessDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied")
	case errors.Is(err, ErrActiveCrops):
		httpx.Problem(w, http.StatusBadRequest, "Domain Rule Violation", "farm has crops in active status")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	farms, pagination, err := h.service.List(r.Context(), caller, q.Get("search"), page, perPage)
	if err != nil {
		h.respondErr(w, "list farms", err)
		return
	}
	if farms == nil {
		farms = []Farm{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"farms": farms, "pagination": pagination})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "farm id must be an integer")
		return
	}
	farm, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.respondErr(w, "get farm", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"farm": farm})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	var req CreateFarmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	farm, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		h.respondErr(w, "create farm", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"farm": farm})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "farm id must be an integer")
		return
	}
	var req UpdateFarmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	farm, err := h.service.Update(r.Context(), caller, id, req)
	if err != nil {
		h.respondErr(w, "update farm", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"farm": farm})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "farm id must be an integer")
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondErr(w, "delete farm", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "farm deleted"})
}

func (h *Handler) handleAddField(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "farm id must be an integer")
		return
	}
	var req FieldRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	farm, err := h.service.AddField(r.Context(), caller, id, req)
	if err != nil {
		h.respondErr(w, "add field", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"farm": farm})
}

func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	caller, _ := shared.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "farm id must be an integer")
		return
	}
	fieldID, err := idParam(r, "fieldID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "field id must be an integer")
		return
	}
	var req FieldRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	farm, err := h.service.UpdateField(r.Context(), caller, id, fieldID, req)
	if err != nil {
		h.respondErr(w, "update field", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"farm": farm})
}
