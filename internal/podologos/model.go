package podologos

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrPodologoNotFound = errors.New("podologo not found")
	ErrInvalidNombre    = errors.New("nombres and apellidos are required")
)

// Podologo is a clinical staff reference record.
type Podologo struct {
	ID             int64           `json:"id_podologo"`
	Nombres        string          `json:"nombres"`
	Apellidos      string          `json:"apellidos"`
	Especialidad   string          `json:"especialidad,omitempty"`
	Disponibilidad json.RawMessage `json:"disponibilidad,omitempty"`
	Contacto       string          `json:"contacto,omitempty"`
	Activo         bool            `json:"activo"`
}

// CreateInput holds the fields accepted when registering a podiatrist.
type CreateInput struct {
	Nombres        string          `json:"nombres"`
	Apellidos      string          `json:"apellidos"`
	Especialidad   string          `json:"especialidad"`
	Disponibilidad json.RawMessage `json:"disponibilidad"`
	Contacto       string          `json:"contacto"`
}

func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.Nombres) == "" || strings.TrimSpace(in.Apellidos) == "" {
		return ErrInvalidNombre
	}
	return nil
}

// UpdateInput holds a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Nombres        *string         `json:"nombres,omitempty"`
	Apellidos      *string         `json:"apellidos,omitempty"`
	Especialidad   *string         `json:"especialidad,omitempty"`
	Disponibilidad json.RawMessage `json:"disponibilidad,omitempty"`
	Contacto       *string         `json:"contacto,omitempty"`
	Activo         *bool           `json:"activo,omitempty"`
}
