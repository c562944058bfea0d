package podologos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler handles HTTP requests for podiatrists.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new podiatrists handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /podologos?activo=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.List(r.Context(), r.URL.Query().Get("activo") == "true")
	if err != nil {
		h.logger.Error("failed to list podologos", "error", err)
		http.Error(w, "failed to list podologos", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /podologos/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPodologoNotFound) {
			http.Error(w, "podologo not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get podologo", "id", id, "error", err)
		http.Error(w, "failed to get podologo", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /podologos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidNombre) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create podologo", "error", err)
		http.Error(w, "failed to create podologo", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PATCH /podologos/{id}.
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

	p, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrPodologoNotFound) {
			http.Error(w, "podologo not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update podologo", "id", id, "error", err)
		http.Error(w, "failed to update podologo", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
