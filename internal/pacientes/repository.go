package pacientes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines patient storage.
type Repository interface {
	List(ctx context.Context, soloActivos bool) ([]Paciente, error)
	Get(ctx context.Context, id int64) (*Paciente, error)
	Create(ctx context.Context, in CreateInput) (*Paciente, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Paciente, error)
}

// InMemoryRepository keeps patients in memory, used when no database is
// configured and by tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	pacientes map[int64]Paciente
	nextID    int64
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{pacientes: make(map[int64]Paciente), nextID: 1}
}

// List returns patients ordered by id, optionally only active ones.
func (r *InMemoryRepository) List(ctx context.Context, soloActivos bool) ([]Paciente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Paciente, 0, len(r.pacientes))
	for _, p := range r.pacientes {
		if soloActivos && !p.Activo {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns the patient or ErrPacienteNotFound.
func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*Paciente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pacientes[id]
	if !ok {
		return nil, ErrPacienteNotFound
	}
	return &p, nil
}

// Create registers a new active patient.
func (r *InMemoryRepository) Create(ctx context.Context, in CreateInput) (*Paciente, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p := Paciente{
		ID:              r.nextID,
		Nombres:         in.Nombres,
		Apellidos:       in.Apellidos,
		FechaNacimiento: in.FechaNacimiento,
		Sexo:            in.Sexo,
		Telefono:        in.Telefono,
		Email:           in.Email,
		Domicilio:       in.Domicilio,
		DocumentoID:     in.DocumentoID,
		Activo:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.nextID++
	r.pacientes[p.ID] = p
	return &p, nil
}

// Update applies a partial update and bumps UpdatedAt.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, in UpdateInput) (*Paciente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pacientes[id]
	if !ok {
		return nil, ErrPacienteNotFound
	}
	if in.Nombres != nil {
		p.Nombres = *in.Nombres
	}
	if in.Apellidos != nil {
		p.Apellidos = *in.Apellidos
	}
	if in.FechaNacimiento != nil {
		p.FechaNacimiento = *in.FechaNacimiento
	}
	if in.Sexo != nil {
		p.Sexo = *in.Sexo
	}
	if in.Telefono != nil {
		p.Telefono = *in.Telefono
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Domicilio != nil {
		p.Domicilio = *in.Domicilio
	}
	if in.DocumentoID != nil {
		p.DocumentoID = *in.DocumentoID
	}
	if in.Activo != nil {
		p.Activo = *in.Activo
	}
	p.UpdatedAt = time.Now().UTC()
	r.pacientes[id] = p
	return &p, nil
}

// Seed inserts a patient as-is, used to hydrate from snapshots.
func (r *InMemoryRepository) Seed(p Paciente) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pacientes[p.ID] = p
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}
