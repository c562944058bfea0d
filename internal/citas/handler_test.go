package citas

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/internal/rbac"
)

func newTestRouter(t *testing.T) (*chi.Mux, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	h := NewHandler(NewService(repo, nil, nil, nil), nil)

	r := chi.NewRouter()
	r.Get("/citas", h.List)
	r.Get("/citas/calendar", h.Calendar)
	r.Get("/citas/agenda", h.Agenda)
	r.Post("/citas", h.Create)
	r.Get("/citas/{id}", h.Get)
	r.Patch("/citas/{id}", h.Update)
	r.Delete("/citas/{id}", h.Cancel)
	r.Post("/citas/{id}/reschedule", h.Reschedule)
	return r, repo
}

func authed(req *http.Request, userID int64) *http.Request {
	return req.WithContext(middleware.WithClaims(req.Context(), middleware.SessionClaims{
		UserID: userID, Username: "recepcion1", Rol: rbac.RoleRecepcion,
	}))
}

func TestHandlerCreateAndGet(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"paciente_id":1,"podologo_id":2,"fecha_hora":"2026-03-02T09:00:00Z","motivo":"primera visita"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/citas", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}
	var created Cita
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Estado != EstadoPendiente {
		t.Fatalf("expected default estado pendiente, got %q", created.Estado)
	}
	if created.CreatedBy != 7 {
		t.Fatalf("expected created_by stamped from session, got %d", created.CreatedBy)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestHandlerCreateMissingReferences(t *testing.T) {
	router, _ := newTestRouter(t)

	req := authed(httptest.NewRequest(http.MethodPost, "/citas", strings.NewReader(`{"motivo":"x"}`)), 7)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandlerListRejectsBadEstado(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas?estado=agendado", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandlerListFilters(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoPendiente},
		{ID: 2, PacienteID: 2, PodologoID: 2, FechaHora: mustTime(t, "2026-03-02T10:00:00Z"), Estado: EstadoConfirmado},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas?estado=pendiente&podologo_id=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	var out []Cita
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("expected only cita 1, got %+v", out)
	}
}

func TestHandlerCalendarRequiresBounds(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas/calendar?fecha_inicio=2026-03-01", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d without fecha_fin, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandlerCalendarAcceptsBareDates(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoCancelado},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/citas/calendar?fecha_inicio=2026-03-01&fecha_fin=2026-03-07T23:59:59Z", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}
	var out []Cita
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("cancelled cita must appear on the calendar, got %d", len(out))
	}
}

func TestHandlerCancelReturnsCancelledCita(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoConfirmado},
	})

	req := authed(httptest.NewRequest(http.MethodDelete, "/citas/1", nil), 7)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	var out Cita
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Estado != EstadoCancelado {
		t.Fatalf("expected estado cancelado, got %q", out.Estado)
	}
}

func TestHandlerRescheduleRequiresTimestamp(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoPendiente},
	})

	req := authed(httptest.NewRequest(http.MethodPost, "/citas/1/reschedule", strings.NewReader(`{}`)), 7)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandlerReschedule(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoConfirmado, Motivo: "control"},
	})

	body := `{"nueva_fecha_hora":"2026-03-05T16:00:00Z"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/citas/1/reschedule", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}
	var out Cita
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.FechaHora.Equal(mustTime(t, "2026-03-05T16:00:00Z")) {
		t.Fatalf("expected moved timestamp, got %v", out.FechaHora)
	}
	if out.Estado != EstadoConfirmado || out.Motivo != "control" {
		t.Fatal("reschedule must leave the rest of the cita alone")
	}
}

func TestHandlerGetUnknownID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas/99", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandlerUpdateRejectsBadEstado(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.Seed([]Cita{
		{ID: 1, PacienteID: 1, PodologoID: 1, FechaHora: mustTime(t, "2026-03-02T09:00:00Z"), Estado: EstadoPendiente},
	})

	req := authed(httptest.NewRequest(http.MethodPatch, "/citas/1", strings.NewReader(`{"estado":"agendado"}`)), 7)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
