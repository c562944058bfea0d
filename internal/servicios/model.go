package servicios

import (
	"errors"
	"strings"
)

var (
	ErrServicioNotFound = errors.New("servicio not found")
	ErrInvalidServicio  = errors.New("nombre and duracion_minutos are required")
)

// Servicio is a clinic service offering. DuracionMinutos is used to default
// appointment duration when the scheduler leaves it unset.
type Servicio struct {
	ID              int64   `json:"id_servicio"`
	Nombre          string  `json:"nombre"`
	Descripcion     string  `json:"descripcion,omitempty"`
	DuracionMinutos int     `json:"duracion_minutos"`
	Precio          float64 `json:"precio"`
	Activo          bool    `json:"activo"`
}

// CreateInput holds the fields accepted when registering a service.
type CreateInput struct {
	Nombre          string  `json:"nombre"`
	Descripcion     string  `json:"descripcion"`
	DuracionMinutos int     `json:"duracion_minutos"`
	Precio          float64 `json:"precio"`
}

func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.Nombre) == "" || in.DuracionMinutos <= 0 {
		return ErrInvalidServicio
	}
	return nil
}

// UpdateInput holds a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Nombre          *string  `json:"nombre,omitempty"`
	Descripcion     *string  `json:"descripcion,omitempty"`
	DuracionMinutos *int     `json:"duracion_minutos,omitempty"`
	Precio          *float64 `json:"precio,omitempty"`
	Activo          *bool    `json:"activo,omitempty"`
}
