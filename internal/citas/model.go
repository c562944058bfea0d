package citas

import (
	"errors"
	"time"

	"github.com/pielsano/podoclinic/internal/pacientes"
	"github.com/pielsano/podoclinic/internal/podologos"
	"github.com/pielsano/podoclinic/internal/servicios"
)

var (
	// ErrCitaNotFound is returned when an appointment id does not exist.
	// A stale reference is an expected condition, not an exceptional one.
	ErrCitaNotFound = errors.New("cita not found")

	// ErrInvalidCita is returned when a create input is missing its
	// required references or start time.
	ErrInvalidCita = errors.New("paciente_id, podologo_id and fecha_hora are required")
)

// Estado is the appointment status. Any status may be set to any other;
// cancellation is a terminal label, not a deletion.
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoConfirmado Estado = "confirmado"
	EstadoCancelado  Estado = "cancelado"
	EstadoCompletado Estado = "completado"
)

// Valid reports whether the status is one of the four known values.
func (e Estado) Valid() bool {
	switch e {
	case EstadoPendiente, EstadoConfirmado, EstadoCancelado, EstadoCompletado:
		return true
	}
	return false
}

// Cita is a scheduled encounter between one patient and one podiatrist,
// optionally tied to a service. The Paciente/Podologo/Servicio pointers are
// denormalized display copies hydrated from the reference collections; they
// are refreshed whenever the underlying reference changes.
type Cita struct {
	ID              int64               `json:"id_cita"`
	PacienteID      int64               `json:"paciente_id"`
	Paciente        *pacientes.Paciente `json:"paciente,omitempty"`
	PodologoID      int64               `json:"podologo_id"`
	Podologo        *podologos.Podologo `json:"podologo,omitempty"`
	ServicioID      *int64              `json:"servicio_id,omitempty"`
	Servicio        *servicios.Servicio `json:"servicio,omitempty"`
	FechaHora       time.Time           `json:"fecha_hora"`
	DuracionMinutos int                 `json:"duracion_minutos"`
	Estado          Estado              `json:"estado"`
	Motivo          string              `json:"motivo,omitempty"`
	Sala            string              `json:"sala,omitempty"`
	CreatedBy       int64               `json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
}

// CreateInput holds the fields accepted when scheduling an appointment.
type CreateInput struct {
	PacienteID      int64     `json:"paciente_id"`
	PodologoID      int64     `json:"podologo_id"`
	ServicioID      *int64    `json:"servicio_id,omitempty"`
	FechaHora       time.Time `json:"fecha_hora"`
	DuracionMinutos int       `json:"duracion_minutos"`
	Estado          Estado    `json:"estado,omitempty"`
	Motivo          string    `json:"motivo,omitempty"`
	Sala            string    `json:"sala,omitempty"`
	CreatedBy       int64     `json:"-"`
}

// Validate checks the required references and start time. Duration and
// status are defaulted later, so they are not required here.
func (in *CreateInput) Validate() error {
	if in.PacienteID == 0 || in.PodologoID == 0 || in.FechaHora.IsZero() {
		return ErrInvalidCita
	}
	return nil
}

// UpdateInput holds a partial appointment update; nil fields are left
// unchanged (shallow merge).
type UpdateInput struct {
	PacienteID      *int64     `json:"paciente_id,omitempty"`
	PodologoID      *int64     `json:"podologo_id,omitempty"`
	ServicioID      *int64     `json:"servicio_id,omitempty"`
	FechaHora       *time.Time `json:"fecha_hora,omitempty"`
	DuracionMinutos *int       `json:"duracion_minutos,omitempty"`
	Estado          *Estado    `json:"estado,omitempty"`
	Motivo          *string    `json:"motivo,omitempty"`
	Sala            *string    `json:"sala,omitempty"`
}

// Filters narrows a List call. All provided filters combine with AND; the
// zero value matches everything. Page/PerPage are advisory: the in-memory
// store ignores them, the Postgres store translates them to LIMIT/OFFSET.
type Filters struct {
	Estado      Estado
	PodologoID  int64
	PacienteID  int64
	FechaInicio *time.Time // inclusive lower bound on FechaHora
	FechaFin    *time.Time // inclusive upper bound on FechaHora
	Page        int
	PerPage     int
}

// Matches reports whether the cita satisfies every provided filter.
func (f Filters) Matches(c Cita) bool {
	if f.Estado != "" && c.Estado != f.Estado {
		return false
	}
	if f.PodologoID != 0 && c.PodologoID != f.PodologoID {
		return false
	}
	if f.PacienteID != 0 && c.PacienteID != f.PacienteID {
		return false
	}
	if f.FechaInicio != nil && c.FechaHora.Before(*f.FechaInicio) {
		return false
	}
	if f.FechaFin != nil && c.FechaHora.After(*f.FechaFin) {
		return false
	}
	return true
}
