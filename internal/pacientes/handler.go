package pacientes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler handles HTTP requests for patients.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new patients handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /pacientes?activo=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	soloActivos := r.URL.Query().Get("activo") == "true"

	out, err := h.repo.List(r.Context(), soloActivos)
	if err != nil {
		h.logger.Error("failed to list pacientes", "error", err)
		http.Error(w, "failed to list pacientes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /pacientes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPacienteNotFound) {
			http.Error(w, "paciente not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get paciente", "id", id, "error", err)
		http.Error(w, "failed to get paciente", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /pacientes.
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
		h.logger.Error("failed to create paciente", "error", err)
		http.Error(w, "failed to create paciente", http.StatusInternalServerError)
		return
	}

	h.logger.Info("paciente created", "id", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PATCH /pacientes/{id}.
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
		if errors.Is(err, ErrPacienteNotFound) {
			http.Error(w, "paciente not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update paciente", "id", id, "error", err)
		http.Error(w, "failed to update paciente", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
