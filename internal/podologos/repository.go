package podologos

import (
	"context"
	"sort"
	"sync"
)

// Repository defines podiatrist storage.
type Repository interface {
	List(ctx context.Context, soloActivos bool) ([]Podologo, error)
	Get(ctx context.Context, id int64) (*Podologo, error)
	Create(ctx context.Context, in CreateInput) (*Podologo, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Podologo, error)
}

// InMemoryRepository keeps podiatrists in memory.
type InMemoryRepository struct {
	mu        sync.RWMutex
	podologos map[int64]Podologo
	nextID    int64
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{podologos: make(map[int64]Podologo), nextID: 1}
}

func (r *InMemoryRepository) List(ctx context.Context, soloActivos bool) ([]Podologo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Podologo, 0, len(r.podologos))
	for _, p := range r.podologos {
		if soloActivos && !p.Activo {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*Podologo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.podologos[id]
	if !ok {
		return nil, ErrPodologoNotFound
	}
	return &p, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, in CreateInput) (*Podologo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := Podologo{
		ID:             r.nextID,
		Nombres:        in.Nombres,
		Apellidos:      in.Apellidos,
		Especialidad:   in.Especialidad,
		Disponibilidad: in.Disponibilidad,
		Contacto:       in.Contacto,
		Activo:         true,
	}
	r.nextID++
	r.podologos[p.ID] = p
	return &p, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int64, in UpdateInput) (*Podologo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.podologos[id]
	if !ok {
		return nil, ErrPodologoNotFound
	}
	if in.Nombres != nil {
		p.Nombres = *in.Nombres
	}
	if in.Apellidos != nil {
		p.Apellidos = *in.Apellidos
	}
	if in.Especialidad != nil {
		p.Especialidad = *in.Especialidad
	}
	if in.Disponibilidad != nil {
		p.Disponibilidad = in.Disponibilidad
	}
	if in.Contacto != nil {
		p.Contacto = *in.Contacto
	}
	if in.Activo != nil {
		p.Activo = *in.Activo
	}
	r.podologos[id] = p
	return &p, nil
}

// Seed inserts a podiatrist as-is, used to hydrate from snapshots.
func (r *InMemoryRepository) Seed(p Podologo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.podologos[p.ID] = p
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}
