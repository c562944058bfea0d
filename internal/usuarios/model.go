package usuarios

import (
	"errors"
	"time"

	"github.com/pielsano/podoclinic/internal/rbac"
)

var (
	ErrUsuarioNotFound  = errors.New("usuario not found")
	ErrUsernameTaken    = errors.New("username already in use")
	ErrInvalidUsuario   = errors.New("username, password and a valid rol are required")
	ErrInvalidPassword  = errors.New("invalid credentials")
	ErrSelfRoleChange   = errors.New("an admin cannot change their own rol")
	ErrSelfDeactivation = errors.New("a user cannot deactivate their own account")
	ErrSelfDeletion     = errors.New("a user cannot delete their own account")
)

// Usuario is a staff account. PasswordHash never leaves the API.
type Usuario struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Nombre       string    `json:"nombre"`
	Email        string    `json:"email,omitempty"`
	Rol          rbac.Role `json:"rol"`
	PasswordHash string    `json:"-"`
	Activo       bool      `json:"activo"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateInput holds the fields accepted when registering an account.
type CreateInput struct {
	Username string    `json:"username"`
	Nombre   string    `json:"nombre"`
	Email    string    `json:"email,omitempty"`
	Rol      rbac.Role `json:"rol"`
	Password string    `json:"password"`
}

func (in *CreateInput) Validate() error {
	if in.Username == "" || in.Password == "" || !in.Rol.Valid() {
		return ErrInvalidUsuario
	}
	return nil
}

// UpdateInput holds a partial account update; nil fields are left
// unchanged. Password, when set, is re-hashed.
type UpdateInput struct {
	Nombre   *string    `json:"nombre,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Rol      *rbac.Role `json:"rol,omitempty"`
	Password *string    `json:"password,omitempty"`
	Activo   *bool      `json:"activo,omitempty"`
}
