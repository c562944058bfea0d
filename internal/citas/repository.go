package citas

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository is the persistence boundary for appointments.
type Repository interface {
	List(ctx context.Context, f Filters) ([]Cita, error)
	// CalendarRange returns every cita whose start time falls inside the
	// inclusive [from, to] window, regardless of estado.
	CalendarRange(ctx context.Context, from, to time.Time) ([]Cita, error)
	GetByID(ctx context.Context, id int64) (Cita, error)
	Create(ctx context.Context, c Cita) (Cita, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Cita, error)
	// Reschedule moves only the start time; every other field is preserved.
	Reschedule(ctx context.Context, id int64, fechaHora time.Time) (Cita, error)
	// Cancel marks the cita cancelado. The record remains retrievable.
	Cancel(ctx context.Context, id int64) (Cita, error)
}

// InMemoryRepository keeps appointments in a map guarded by a RWMutex.
// Used in tests and when the service runs without a database.
type InMemoryRepository struct {
	mu     sync.RWMutex
	citas  map[int64]Cita
	nextID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{citas: make(map[int64]Cita), nextID: 1}
}

// Seed loads fixtures, assigning ids past the highest seeded one.
func (r *InMemoryRepository) Seed(citas []Cita) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range citas {
		r.citas[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
}

func (r *InMemoryRepository) List(_ context.Context, f Filters) ([]Cita, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Cita, 0, len(r.citas))
	for _, c := range r.citas {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaHora.Equal(out[j].FechaHora) {
			return out[i].FechaHora.Before(out[j].FechaHora)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) CalendarRange(ctx context.Context, from, to time.Time) ([]Cita, error) {
	return r.List(ctx, Filters{FechaInicio: &from, FechaFin: &to})
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Cita, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.citas[id]
	if !ok {
		return Cita{}, ErrCitaNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) Create(_ context.Context, c Cita) (Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.citas[c.ID] = c
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, in UpdateInput) (Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.citas[id]
	if !ok {
		return Cita{}, ErrCitaNotFound
	}
	if in.PacienteID != nil {
		c.PacienteID = *in.PacienteID
		c.Paciente = nil
	}
	if in.PodologoID != nil {
		c.PodologoID = *in.PodologoID
		c.Podologo = nil
	}
	if in.ServicioID != nil {
		c.ServicioID = in.ServicioID
		c.Servicio = nil
	}
	if in.FechaHora != nil {
		c.FechaHora = *in.FechaHora
	}
	if in.DuracionMinutos != nil {
		c.DuracionMinutos = *in.DuracionMinutos
	}
	if in.Estado != nil {
		c.Estado = *in.Estado
	}
	if in.Motivo != nil {
		c.Motivo = *in.Motivo
	}
	if in.Sala != nil {
		c.Sala = *in.Sala
	}
	r.citas[id] = c
	return c, nil
}

func (r *InMemoryRepository) Reschedule(_ context.Context, id int64, fechaHora time.Time) (Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.citas[id]
	if !ok {
		return Cita{}, ErrCitaNotFound
	}
	c.FechaHora = fechaHora
	r.citas[id] = c
	return c, nil
}

func (r *InMemoryRepository) Cancel(_ context.Context, id int64) (Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.citas[id]
	if !ok {
		return Cita{}, ErrCitaNotFound
	}
	c.Estado = EstadoCancelado
	r.citas[id] = c
	return c, nil
}
