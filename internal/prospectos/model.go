package prospectos

import (
	"errors"
	"time"
)

var (
	ErrProspectoNotFound = errors.New("prospecto not found")
	ErrInvalidProspecto  = errors.New("nombre and a contact channel are required")
	ErrAlreadyConverted  = errors.New("prospecto already converted")
)

// Estado of a sales prospect.
type Estado string

const (
	EstadoNuevo      Estado = "nuevo"
	EstadoContactado Estado = "contactado"
	EstadoConvertido Estado = "convertido"
	EstadoDescartado Estado = "descartado"
)

func (e Estado) Valid() bool {
	switch e {
	case EstadoNuevo, EstadoContactado, EstadoConvertido, EstadoDescartado:
		return true
	}
	return false
}

// Prospecto is a potential patient captured from the public site or a
// phone enquiry, before any clinical record exists.
type Prospecto struct {
	ID         int64     `json:"id"`
	Nombre     string    `json:"nombre"`
	Telefono   string    `json:"telefono,omitempty"`
	Email      string    `json:"email,omitempty"`
	Fuente     string    `json:"fuente,omitempty"` // web, telefono, referido
	Estado     Estado    `json:"estado"`
	Notas      string    `json:"notas,omitempty"`
	PacienteID *int64    `json:"paciente_id,omitempty"` // set on conversion
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateInput holds the fields accepted when capturing a prospect.
type CreateInput struct {
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
	Fuente   string `json:"fuente,omitempty"`
	Notas    string `json:"notas,omitempty"`
}

func (in *CreateInput) Validate() error {
	if in.Nombre == "" || (in.Telefono == "" && in.Email == "") {
		return ErrInvalidProspecto
	}
	return nil
}

// UpdateInput holds a partial prospect update; nil fields are left
// unchanged.
type UpdateInput struct {
	Nombre   *string `json:"nombre,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Email    *string `json:"email,omitempty"`
	Fuente   *string `json:"fuente,omitempty"`
	Estado   *Estado `json:"estado,omitempty"`
	Notas    *string `json:"notas,omitempty"`
}
