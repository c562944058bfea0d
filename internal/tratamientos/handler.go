package tratamientos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler handles HTTP requests for treatment plans.
type Handler struct {
	repo   Repository
	audit  auditoria.Recorder
	logger *logging.Logger
}

func NewHandler(repo Repository, audit auditoria.Recorder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, audit: audit, logger: logger}
}

// List handles GET /tratamientos?paciente_id=&estado=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var pacienteID int64
	if raw := r.URL.Query().Get("paciente_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid paciente_id", http.StatusBadRequest)
			return
		}
		pacienteID = v
	}
	estado := Estado(r.URL.Query().Get("estado"))
	if estado != "" && !estado.Valid() {
		http.Error(w, "invalid estado", http.StatusBadRequest)
		return
	}

	out, err := h.repo.List(r.Context(), pacienteID, estado)
	if err != nil {
		h.logger.Error("failed to list tratamientos", "error", err)
		http.Error(w, "failed to list tratamientos", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /tratamientos/{id}, evoluciones included.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := tratamientoID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tr, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTratamientoNotFound) {
			http.Error(w, "tratamiento not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get tratamiento", "id", id, "error", err)
		http.Error(w, "failed to get tratamiento", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// Create handles POST /tratamientos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tr, err := h.repo.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidTratamiento) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create tratamiento", "error", err)
		http.Error(w, "failed to create tratamiento", http.StatusInternalServerError)
		return
	}
	h.record(r, auditoria.ActionCreate, tr.ID)
	writeJSON(w, http.StatusCreated, tr)
}

// Update handles PATCH /tratamientos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := tratamientoID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if in.Estado != nil && !in.Estado.Valid() {
		http.Error(w, "invalid estado", http.StatusBadRequest)
		return
	}

	tr, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrTratamientoNotFound) {
			http.Error(w, "tratamiento not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update tratamiento", "id", id, "error", err)
		http.Error(w, "failed to update tratamiento", http.StatusInternalServerError)
		return
	}
	h.record(r, auditoria.ActionUpdate, id)
	writeJSON(w, http.StatusOK, tr)
}

// AddEvolucion handles POST /tratamientos/{id}/evoluciones.
func (h *Handler) AddEvolucion(w http.ResponseWriter, r *http.Request) {
	id, err := tratamientoID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var in EvolucionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, err := h.repo.AddEvolucion(r.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrTratamientoNotFound):
			http.Error(w, "tratamiento not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidEvolucion):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to add evolucion", "tratamiento_id", id, "error", err)
			http.Error(w, "failed to add evolucion", http.StatusInternalServerError)
		}
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), auditoria.Entry{
			ActorID:  middleware.UserID(r.Context()),
			Action:   auditoria.ActionCreate,
			Entity:   auditoria.EntityEvolucion,
			EntityID: e.ID,
		})
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) record(r *http.Request, action auditoria.Action, id int64) {
	if h.audit == nil {
		return
	}
	h.audit.Record(r.Context(), auditoria.Entry{
		ActorID:  middleware.UserID(r.Context()),
		Action:   action,
		Entity:   auditoria.EntityTratamiento,
		EntityID: id,
	})
}

func tratamientoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
