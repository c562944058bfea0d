package usuarios

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler handles HTTP requests for staff accounts.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("usuarios: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /usuarios.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list usuarios", "error", err)
		http.Error(w, "failed to list usuarios", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /usuarios/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := usuarioID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUsuarioNotFound) {
			http.Error(w, "usuario not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get usuario", "id", id, "error", err)
		http.Error(w, "failed to get usuario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Create handles POST /usuarios.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsuario):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrUsernameTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to create usuario", "error", err)
			http.Error(w, "failed to create usuario", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Update handles PATCH /usuarios/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := usuarioID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Update(r.Context(), middleware.UserID(r.Context()), id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsuarioNotFound):
			http.Error(w, "usuario not found", http.StatusNotFound)
		case errors.Is(err, ErrSelfRoleChange), errors.Is(err, ErrSelfDeactivation):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, ErrInvalidUsuario):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to update usuario", "id", id, "error", err)
			http.Error(w, "failed to update usuario", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /usuarios/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := usuarioID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		switch {
		case errors.Is(err, ErrUsuarioNotFound):
			http.Error(w, "usuario not found", http.StatusNotFound)
		case errors.Is(err, ErrSelfDeletion):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("failed to delete usuario", "id", id, "error", err)
			http.Error(w, "failed to delete usuario", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func usuarioID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
