package citas

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler handles HTTP requests for appointments.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new appointments handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("citas: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /citas with estado, podologo_id, paciente_id,
// fecha_inicio, fecha_fin, page and per_page query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.logger.Error("failed to list citas", "error", err)
		http.Error(w, "failed to list citas", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Calendar handles GET /citas/calendar?fecha_inicio=...&fecha_fin=...
// Both bounds are required and inclusive.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	from, err := parseTime(r.URL.Query().Get("fecha_inicio"))
	if err != nil || from == nil {
		http.Error(w, "fecha_inicio is required (RFC 3339)", http.StatusBadRequest)
		return
	}
	to, err := parseTime(r.URL.Query().Get("fecha_fin"))
	if err != nil || to == nil {
		http.Error(w, "fecha_fin is required (RFC 3339)", http.StatusBadRequest)
		return
	}

	out, err := h.svc.Calendar(r.Context(), *from, *to)
	if err != nil {
		h.logger.Error("failed to load calendar", "error", err)
		http.Error(w, "failed to load calendar", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Agenda handles GET /citas/agenda?fecha=... and returns the weekly
// Sunday-to-Saturday grid containing the given date (default today).
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	ref := time.Now()
	if raw := r.URL.Query().Get("fecha"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			http.Error(w, "invalid fecha", http.StatusBadRequest)
			return
		}
		ref = *t
	}

	days, err := h.svc.Agenda(r.Context(), ref)
	if err != nil {
		h.logger.Error("failed to build agenda", "error", err)
		http.Error(w, "failed to build agenda", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week_start": WeekStart(ref),
		"hours":      AgendaHours(),
		"days":       days,
	})
}

// Get handles GET /citas/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := citaID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCitaNotFound) {
			http.Error(w, "cita not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get cita", "id", id, "error", err)
		http.Error(w, "failed to get cita", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create handles POST /citas.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	in.CreatedBy = middleware.UserID(r.Context())

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidCita) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create cita", "error", err)
		http.Error(w, "failed to create cita", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update handles PATCH /citas/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := citaID(r)
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

	c, err := h.svc.Update(r.Context(), middleware.UserID(r.Context()), id, in)
	if err != nil {
		if errors.Is(err, ErrCitaNotFound) {
			http.Error(w, "cita not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update cita", "id", id, "error", err)
		http.Error(w, "failed to update cita", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Reschedule handles POST /citas/{id}/reschedule with body
// {"nueva_fecha_hora": "..."}.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := citaID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var body struct {
		NuevaFechaHora time.Time `json:"nueva_fecha_hora"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NuevaFechaHora.IsZero() {
		http.Error(w, "nueva_fecha_hora is required", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Reschedule(r.Context(), middleware.UserID(r.Context()), id, body.NuevaFechaHora)
	if err != nil {
		if errors.Is(err, ErrCitaNotFound) {
			http.Error(w, "cita not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to reschedule cita", "id", id, "error", err)
		http.Error(w, "failed to reschedule cita", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Cancel handles DELETE /citas/{id}. The cita is marked cancelado, never
// removed.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := citaID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Cancel(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, ErrCitaNotFound) {
			http.Error(w, "cita not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to cancel cita", "id", id, "error", err)
		http.Error(w, "failed to cancel cita", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func citaID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func filtersFromQuery(r *http.Request) (Filters, error) {
	q := r.URL.Query()
	f := Filters{Estado: Estado(q.Get("estado"))}
	if f.Estado != "" && !f.Estado.Valid() {
		return Filters{}, errors.New("invalid estado")
	}

	for param, dst := range map[string]*int64{
		"podologo_id": &f.PodologoID,
		"paciente_id": &f.PacienteID,
	} {
		if raw := q.Get(param); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Filters{}, errors.New("invalid " + param)
			}
			*dst = v
		}
	}

	var err error
	if f.FechaInicio, err = parseTime(q.Get("fecha_inicio")); err != nil {
		return Filters{}, errors.New("invalid fecha_inicio")
	}
	if f.FechaFin, err = parseTime(q.Get("fecha_fin")); err != nil {
		return Filters{}, errors.New("invalid fecha_fin")
	}

	if raw := q.Get("page"); raw != "" {
		f.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("per_page"); raw != "" {
		f.PerPage, _ = strconv.Atoi(raw)
	}
	return f, nil
}

// parseTime accepts RFC 3339 timestamps and bare dates.
func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
