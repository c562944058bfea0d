package tratamientos

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrTratamientoNotFound = errors.New("tratamiento not found")
	ErrEvolucionNotFound   = errors.New("evolucion not found")
	ErrInvalidTratamiento  = errors.New("paciente_id, podologo_id and descripcion are required")
	ErrInvalidEvolucion    = errors.New("notas are required")
)

// Estado of a treatment plan.
type Estado string

const (
	EstadoActivo     Estado = "activo"
	EstadoCompletado Estado = "completado"
	EstadoSuspendido Estado = "suspendido"
)

func (e Estado) Valid() bool {
	switch e {
	case EstadoActivo, EstadoCompletado, EstadoSuspendido:
		return true
	}
	return false
}

// Tratamiento is a multi-session treatment plan for one patient.
type Tratamiento struct {
	ID          int64      `json:"id"`
	PacienteID  int64      `json:"paciente_id"`
	PodologoID  int64      `json:"podologo_id"`
	Descripcion string     `json:"descripcion"`
	Diagnostico string     `json:"diagnostico,omitempty"`
	Estado      Estado     `json:"estado"`
	FechaInicio time.Time  `json:"fecha_inicio"`
	FechaFin    *time.Time `json:"fecha_fin,omitempty"`
	Costo       float64    `json:"costo,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Evoluciones are the chronological progress notes for the plan.
	Evoluciones []Evolucion `json:"evoluciones,omitempty"`
}

// Evolucion is one dated progress note inside a treatment plan.
// SignosVitales is free-form JSON; the clinic records whatever the visit
// called for (presion, pulso, glucosa, ...).
type Evolucion struct {
	ID            int64           `json:"id"`
	TratamientoID int64           `json:"tratamiento_id"`
	PodologoID    int64           `json:"podologo_id"`
	Fecha         time.Time       `json:"fecha"`
	TipoVisita    string          `json:"tipo_visita,omitempty"`
	Notas         string          `json:"notas"`
	SignosVitales json.RawMessage `json:"signos_vitales,omitempty"`
}

// CreateInput holds the fields accepted when opening a treatment plan.
type CreateInput struct {
	PacienteID  int64     `json:"paciente_id"`
	PodologoID  int64     `json:"podologo_id"`
	Descripcion string    `json:"descripcion"`
	Diagnostico string    `json:"diagnostico,omitempty"`
	FechaInicio time.Time `json:"fecha_inicio"`
	Costo       float64   `json:"costo,omitempty"`
}

func (in *CreateInput) Validate() error {
	if in.PacienteID == 0 || in.PodologoID == 0 || in.Descripcion == "" {
		return ErrInvalidTratamiento
	}
	return nil
}

// UpdateInput holds a partial treatment update; nil fields are left
// unchanged.
type UpdateInput struct {
	Descripcion *string    `json:"descripcion,omitempty"`
	Diagnostico *string    `json:"diagnostico,omitempty"`
	Estado      *Estado    `json:"estado,omitempty"`
	FechaFin    *time.Time `json:"fecha_fin,omitempty"`
	Costo       *float64   `json:"costo,omitempty"`
}

// EvolucionInput holds the fields accepted when appending a progress note.
type EvolucionInput struct {
	PodologoID    int64           `json:"podologo_id"`
	Fecha         time.Time       `json:"fecha"`
	TipoVisita    string          `json:"tipo_visita,omitempty"`
	Notas         string          `json:"notas"`
	SignosVitales json.RawMessage `json:"signos_vitales,omitempty"`
}

func (in *EvolucionInput) Validate() error {
	if in.Notas == "" {
		return ErrInvalidEvolucion
	}
	return nil
}
