package pacientes

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrPacienteNotFound is returned when a patient id does not exist.
	ErrPacienteNotFound = errors.New("paciente not found")

	// ErrInvalidNombre is returned when the name fields are missing.
	ErrInvalidNombre = errors.New("nombres and apellidos are required")
)

// Paciente is a patient reference record. Deactivation is a soft toggle on
// Activo; records are never hard-deleted.
type Paciente struct {
	ID              int64     `json:"id_paciente"`
	Nombres         string    `json:"nombres"`
	Apellidos       string    `json:"apellidos"`
	FechaNacimiento string    `json:"fecha_nacimiento,omitempty"`
	Sexo            string    `json:"sexo,omitempty"`
	Telefono        string    `json:"telefono,omitempty"`
	Email           string    `json:"email,omitempty"`
	Domicilio       string    `json:"domicilio,omitempty"`
	DocumentoID     string    `json:"documento_id,omitempty"`
	Activo          bool      `json:"activo"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateInput holds the fields accepted when registering a patient.
type CreateInput struct {
	Nombres         string `json:"nombres"`
	Apellidos       string `json:"apellidos"`
	FechaNacimiento string `json:"fecha_nacimiento"`
	Sexo            string `json:"sexo"`
	Telefono        string `json:"telefono"`
	Email           string `json:"email"`
	Domicilio       string `json:"domicilio"`
	DocumentoID     string `json:"documento_id"`
}

// Validate checks required fields.
func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.Nombres) == "" || strings.TrimSpace(in.Apellidos) == "" {
		return ErrInvalidNombre
	}
	return nil
}

// UpdateInput holds a partial patient update; nil fields are left unchanged.
type UpdateInput struct {
	Nombres         *string `json:"nombres,omitempty"`
	Apellidos       *string `json:"apellidos,omitempty"`
	FechaNacimiento *string `json:"fecha_nacimiento,omitempty"`
	Sexo            *string `json:"sexo,omitempty"`
	Telefono        *string `json:"telefono,omitempty"`
	Email           *string `json:"email,omitempty"`
	Domicilio       *string `json:"domicilio,omitempty"`
	DocumentoID     *string `json:"documento_id,omitempty"`
	Activo          *bool   `json:"activo,omitempty"`
}
