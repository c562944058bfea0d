package tratamientos

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository is the persistence boundary for treatment plans and their
// progress notes.
type Repository interface {
	List(ctx context.Context, pacienteID int64, estado Estado) ([]Tratamiento, error)
	GetByID(ctx context.Context, id int64) (Tratamiento, error)
	Create(ctx context.Context, in CreateInput) (Tratamiento, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Tratamiento, error)
	AddEvolucion(ctx context.Context, tratamientoID int64, in EvolucionInput) (Evolucion, error)
	CountByEstado(ctx context.Context, estado Estado) (int, error)
}

// InMemoryRepository keeps treatment plans in a map guarded by a RWMutex.
type InMemoryRepository struct {
	mu           sync.RWMutex
	tratamientos map[int64]Tratamiento
	nextID       int64
	nextEvoID    int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tratamientos: make(map[int64]Tratamiento), nextID: 1, nextEvoID: 1}
}

// Seed loads a fixture plan, assigning ids past the highest seeded one.
func (r *InMemoryRepository) Seed(tr Tratamiento) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tratamientos[tr.ID] = tr
	if tr.ID >= r.nextID {
		r.nextID = tr.ID + 1
	}
	for _, e := range tr.Evoluciones {
		if e.ID >= r.nextEvoID {
			r.nextEvoID = e.ID + 1
		}
	}
}

func (r *InMemoryRepository) List(_ context.Context, pacienteID int64, estado Estado) ([]Tratamiento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tratamiento, 0, len(r.tratamientos))
	for _, tr := range r.tratamientos {
		if pacienteID != 0 && tr.PacienteID != pacienteID {
			continue
		}
		if estado != "" && tr.Estado != estado {
			continue
		}
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Tratamiento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tr, ok := r.tratamientos[id]
	if !ok {
		return Tratamiento{}, ErrTratamientoNotFound
	}
	return tr, nil
}

func (r *InMemoryRepository) Create(_ context.Context, in CreateInput) (Tratamiento, error) {
	if err := in.Validate(); err != nil {
		return Tratamiento{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inicio := in.FechaInicio
	if inicio.IsZero() {
		inicio = time.Now()
	}
	tr := Tratamiento{
		ID:          r.nextID,
		PacienteID:  in.PacienteID,
		PodologoID:  in.PodologoID,
		Descripcion: in.Descripcion,
		Diagnostico: in.Diagnostico,
		Estado:      EstadoActivo,
		FechaInicio: inicio,
		Costo:       in.Costo,
		CreatedAt:   time.Now(),
	}
	r.nextID++
	r.tratamientos[tr.ID] = tr
	return tr, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, in UpdateInput) (Tratamiento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.tratamientos[id]
	if !ok {
		return Tratamiento{}, ErrTratamientoNotFound
	}
	if in.Descripcion != nil {
		tr.Descripcion = *in.Descripcion
	}
	if in.Diagnostico != nil {
		tr.Diagnostico = *in.Diagnostico
	}
	if in.Estado != nil {
		tr.Estado = *in.Estado
		// Closing a plan stamps the end date unless one was supplied.
		if *in.Estado == EstadoCompletado && in.FechaFin == nil && tr.FechaFin == nil {
			now := time.Now()
			tr.FechaFin = &now
		}
	}
	if in.FechaFin != nil {
		tr.FechaFin = in.FechaFin
	}
	if in.Costo != nil {
		tr.Costo = *in.Costo
	}
	r.tratamientos[id] = tr
	return tr, nil
}

func (r *InMemoryRepository) AddEvolucion(_ context.Context, tratamientoID int64, in EvolucionInput) (Evolucion, error) {
	if err := in.Validate(); err != nil {
		return Evolucion{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.tratamientos[tratamientoID]
	if !ok {
		return Evolucion{}, ErrTratamientoNotFound
	}

	fecha := in.Fecha
	if fecha.IsZero() {
		fecha = time.Now()
	}
	e := Evolucion{
		ID:            r.nextEvoID,
		TratamientoID: tratamientoID,
		PodologoID:    in.PodologoID,
		Fecha:         fecha,
		TipoVisita:    in.TipoVisita,
		Notas:         in.Notas,
		SignosVitales: in.SignosVitales,
	}
	r.nextEvoID++
	tr.Evoluciones = append(tr.Evoluciones, e)
	r.tratamientos[tratamientoID] = tr
	return e, nil
}

func (r *InMemoryRepository) CountByEstado(_ context.Context, estado Estado) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, tr := range r.tratamientos {
		if tr.Estado == estado {
			n++
		}
	}
	return n, nil
}
