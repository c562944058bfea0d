package prospectos

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository is the persistence boundary for prospects.
type Repository interface {
	List(ctx context.Context, estado Estado) ([]Prospecto, error)
	GetByID(ctx context.Context, id int64) (Prospecto, error)
	Create(ctx context.Context, in CreateInput) (Prospecto, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Prospecto, error)
	// MarkConverted flips the estado and links the new patient record.
	MarkConverted(ctx context.Context, id, pacienteID int64) (Prospecto, error)
}

// InMemoryRepository keeps prospects in a map guarded by a RWMutex.
type InMemoryRepository struct {
	mu         sync.RWMutex
	prospectos map[int64]Prospecto
	nextID     int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{prospectos: make(map[int64]Prospecto), nextID: 1}
}

// Seed loads a fixture prospect, assigning ids past the highest seeded one.
func (r *InMemoryRepository) Seed(p Prospecto) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prospectos[p.ID] = p
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}

func (r *InMemoryRepository) List(_ context.Context, estado Estado) ([]Prospecto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Prospecto, 0, len(r.prospectos))
	for _, p := range r.prospectos {
		if estado != "" && p.Estado != estado {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Prospecto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prospectos[id]
	if !ok {
		return Prospecto{}, ErrProspectoNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Create(_ context.Context, in CreateInput) (Prospecto, error) {
	if err := in.Validate(); err != nil {
		return Prospecto{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p := Prospecto{
		ID:        r.nextID,
		Nombre:    in.Nombre,
		Telefono:  in.Telefono,
		Email:     in.Email,
		Fuente:    in.Fuente,
		Estado:    EstadoNuevo,
		Notas:     in.Notas,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.prospectos[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, in UpdateInput) (Prospecto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.prospectos[id]
	if !ok {
		return Prospecto{}, ErrProspectoNotFound
	}
	if in.Nombre != nil {
		p.Nombre = *in.Nombre
	}
	if in.Telefono != nil {
		p.Telefono = *in.Telefono
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Fuente != nil {
		p.Fuente = *in.Fuente
	}
	if in.Estado != nil {
		p.Estado = *in.Estado
	}
	if in.Notas != nil {
		p.Notas = *in.Notas
	}
	p.UpdatedAt = time.Now()
	r.prospectos[id] = p
	return p, nil
}

func (r *InMemoryRepository) MarkConverted(_ context.Context, id, pacienteID int64) (Prospecto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.prospectos[id]
	if !ok {
		return Prospecto{}, ErrProspectoNotFound
	}
	if p.Estado == EstadoConvertido {
		return Prospecto{}, ErrAlreadyConverted
	}
	p.Estado = EstadoConvertido
	p.PacienteID = &pacienteID
	p.UpdatedAt = time.Now()
	r.prospectos[id] = p
	return p, nil
}
