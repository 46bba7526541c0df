package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/app"
	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
	"github.com/dwikikusuma/fulfillment/internal/settings"
)

// Handler exposes the engine's operations to the admin UI. No wire contract
// beyond plain JSON; the UI owns rendering.
type Handler struct {
	engine   *app.Engine
	settings settings.Store
	log      *slog.Logger
}

func New(engine *app.Engine, store settings.Store, log *slog.Logger) *Handler {
	return &Handler{engine: engine, settings: store, log: log}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/orders", func(r chi.Router) {
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
		r.Post("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.deleteOrder)
		r.Post("/bulk", h.runBulk)
	})

	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.putSettings)

	return r
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func (h *Handler) writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrOrderNotDeletable):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrUnknownOrderStatus):
		writeError(w, http.StatusUnprocessableEntity, "unknown_status", err.Error())
	default:
		h.log.Error("operation failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "operation failed")
	}
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.writeOpError(w, err)
		return
	}

	res, err := h.engine.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	OrderIDs []string `json:"order_ids"`
	Op       string   `json:"op"`
}

func (h *Handler) runBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.OrderIDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing_fields", "order_ids is required")
		return
	}

	op, err := app.ParseBulkOp(req.Op)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown_operation", err.Error())
		return
	}

	res, err := h.engine.RunBulk(r.Context(), req.OrderIDs, op)
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.log.Error("load settings", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// putSettings merges the body over the stored settings: fields the caller
// omits keep their current values instead of resetting to zero.
func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.log.Error("load settings", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load settings")
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_settings", err.Error())
		return
	}
	if err := h.settings.Save(r.Context(), s); err != nil {
		h.log.Error("save settings", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
