package servicios

import (
	"context"
	"sort"
	"sync"
)

// Repository defines service-catalog storage.
type Repository interface {
	List(ctx context.Context, soloActivos bool) ([]Servicio, error)
	Get(ctx context.Context, id int64) (*Servicio, error)
	Create(ctx context.Context, in CreateInput) (*Servicio, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Servicio, error)
}

// InMemoryRepository keeps the service catalog in memory.
type InMemoryRepository struct {
	mu        sync.RWMutex
	servicios map[int64]Servicio
	nextID    int64
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{servicios: make(map[int64]Servicio), nextID: 1}
}

func (r *InMemoryRepository) List(ctx context.Context, soloActivos bool) ([]Servicio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Servicio, 0, len(r.servicios))
	for _, s := range r.servicios {
		if soloActivos && !s.Activo {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*Servicio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.servicios[id]
	if !ok {
		return nil, ErrServicioNotFound
	}
	return &s, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, in CreateInput) (*Servicio, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := Servicio{
		ID:              r.nextID,
		Nombre:          in.Nombre,
		Descripcion:     in.Descripcion,
		DuracionMinutos: in.DuracionMinutos,
		Precio:          in.Precio,
		Activo:          true,
	}
	r.nextID++
	r.servicios[s.ID] = s
	return &s, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int64, in UpdateInput) (*Servicio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.servicios[id]
	if !ok {
		return nil, ErrServicioNotFound
	}
	if in.Nombre != nil {
		s.Nombre = *in.Nombre
	}
	if in.Descripcion != nil {
		s.Descripcion = *in.Descripcion
	}
	if in.DuracionMinutos != nil {
		s.DuracionMinutos = *in.DuracionMinutos
	}
	if in.Precio != nil {
		s.Precio = *in.Precio
	}
	if in.Activo != nil {
		s.Activo = *in.Activo
	}
	r.servicios[id] = s
	return &s, nil
}

// Seed inserts a service as-is, used to hydrate from snapshots.
func (r *InMemoryRepository) Seed(s Servicio) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servicios[s.ID] = s
	if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}
}
