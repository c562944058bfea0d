package prospectos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// PacienteCreator is the slice of the patients repository conversion needs.
type PacienteCreator interface {
	Create(ctx context.Context, in pacientes.CreateInput) (*pacientes.Paciente, error)
}

// Handler handles HTTP requests for prospects, including conversion into
// patients.
type Handler struct {
	repo      Repository
	pacientes PacienteCreator
	audit     auditoria.Recorder
	logger    *logging.Logger
}

func NewHandler(repo Repository, pc PacienteCreator, audit auditoria.Recorder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, pacientes: pc, audit: audit, logger: logger}
}

// List handles GET /prospectos?estado=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	estado := Estado(r.URL.Query().Get("estado"))
	if estado != "" && !estado.Valid() {
		http.Error(w, "invalid estado", http.StatusBadRequest)
		return
	}

	out, err := h.repo.List(r.Context(), estado)
	if err != nil {
		h.logger.Error("failed to list prospectos", "error", err)
		http.Error(w, "failed to list prospectos", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /prospectos/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := prospectoID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProspectoNotFound) {
			http.Error(w, "prospecto not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get prospecto", "id", id, "error", err)
		http.Error(w, "failed to get prospecto", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /prospectos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidProspecto) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create prospecto", "error", err)
		http.Error(w, "failed to create prospecto", http.StatusInternalServerError)
		return
	}
	h.record(r, auditoria.ActionCreate, p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PATCH /prospectos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := prospectoID(r)
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

	p, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrProspectoNotFound) {
			http.Error(w, "prospecto not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update prospecto", "id", id, "error", err)
		http.Error(w, "failed to update prospecto", http.StatusInternalServerError)
		return
	}
	h.record(r, auditoria.ActionUpdate, id)
	writeJSON(w, http.StatusOK, p)
}

// Convert handles POST /prospectos/{id}/convert: it creates a patient
// record from the prospect's contact data and links the two.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := prospectoID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if h.pacientes == nil {
		http.Error(w, "conversion not available", http.StatusServiceUnavailable)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProspectoNotFound) {
			http.Error(w, "prospecto not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get prospecto", "id", id, "error", err)
		http.Error(w, "failed to convert prospecto", http.StatusInternalServerError)
		return
	}
	if p.Estado == EstadoConvertido {
		http.Error(w, ErrAlreadyConverted.Error(), http.StatusConflict)
		return
	}

	// Conversion accepts an optional body overriding the patient fields;
	// the prospect's contact data is the fallback.
	in := pacientes.CreateInput{
		Nombres:  p.Nombre,
		Telefono: p.Telefono,
		Email:    p.Email,
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in)
	}
	if in.Apellidos == "" {
		// The prospect form captures one free-form name; split nothing,
		// let reception fix it later.
		in.Apellidos = "(pendiente)"
	}

	paciente, err := h.pacientes.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("failed to create paciente from prospecto", "prospecto_id", id, "error", err)
		http.Error(w, "failed to convert prospecto", http.StatusInternalServerError)
		return
	}

	converted, err := h.repo.MarkConverted(r.Context(), id, paciente.ID)
	if err != nil {
		if errors.Is(err, ErrAlreadyConverted) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to mark prospecto converted", "prospecto_id", id, "error", err)
		http.Error(w, "failed to convert prospecto", http.StatusInternalServerError)
		return
	}

	h.record(r, auditoria.ActionUpdate, id)
	h.logger.Info("prospecto converted", "prospecto_id", id, "paciente_id", paciente.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"prospecto": converted,
		"paciente":  paciente,
	})
}

func (h *Handler) record(r *http.Request, action auditoria.Action, id int64) {
	if h.audit == nil {
		return
	}
	h.audit.Record(r.Context(), auditoria.Entry{
		ActorID:  middleware.UserID(r.Context()),
		Action:   action,
		Entity:   auditoria.EntityProspecto,
		EntityID: id,
	})
}

func prospectoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
