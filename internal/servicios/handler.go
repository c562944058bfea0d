package servicios

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler handles HTTP requests for the service catalog.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new services handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /servicios?activo=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.List(r.Context(), r.URL.Query().Get("activo") == "true")
	if err != nil {
		h.logger.Error("failed to list servicios", "error", err)
		http.Error(w, "failed to list servicios", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /servicios/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrServicioNotFound) {
			http.Error(w, "servicio not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get servicio", "id", id, "error", err)
		http.Error(w, "failed to get servicio", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Create handles POST /servicios.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.repo.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidServicio) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create servicio", "error", err)
		http.Error(w, "failed to create servicio", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// Update handles PATCH /servicios/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrServicioNotFound) {
			http.Error(w, "servicio not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update servicio", "id", id, "error", err)
		http.Error(w, "failed to update servicio", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
