package usuarios

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/rbac"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Service owns account rules: password hashing, the self-edit guards and
// the audit trail for role changes.
type Service struct {
	repo       Repository
	audit      auditoria.Recorder
	logger     *logging.Logger
	bcryptCost int
}

func NewService(repo Repository, audit auditoria.Recorder, logger *logging.Logger, bcryptCost int) *Service {
	if repo == nil {
		panic("usuarios: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, audit: audit, logger: logger, bcryptCost: bcryptCost}
}

func (s *Service) List(ctx context.Context) ([]Usuario, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Usuario, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new active account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (Usuario, error) {
	if err := in.Validate(); err != nil {
		return Usuario{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return Usuario{}, fmt.Errorf("usuarios: hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, Usuario{
		Username:     in.Username,
		Nombre:       in.Nombre,
		Email:        in.Email,
		Rol:          in.Rol,
		PasswordHash: string(hash),
		Activo:       true,
	})
	if err != nil {
		return Usuario{}, err
	}
	s.record(ctx, actorID, auditoria.ActionCreate, u.ID)
	s.logger.Info("usuario created", "id", u.ID, "username", u.Username, "rol", u.Rol)
	return u, nil
}

// Update applies a partial edit. Three guards protect the actor from
// locking themselves out: an admin cannot demote their own account, and
// nobody can deactivate or delete themselves.
func (s *Service) Update(ctx context.Context, actorID, id int64, in UpdateInput) (Usuario, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Usuario{}, err
	}

	rolChanged := in.Rol != nil && *in.Rol != u.Rol
	if rolChanged {
		if !in.Rol.Valid() {
			return Usuario{}, ErrInvalidUsuario
		}
		if actorID == id && u.Rol == rbac.RoleAdmin {
			return Usuario{}, ErrSelfRoleChange
		}
	}
	if in.Activo != nil && !*in.Activo && actorID == id {
		return Usuario{}, ErrSelfDeactivation
	}

	if in.Nombre != nil {
		u.Nombre = *in.Nombre
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Rol != nil {
		u.Rol = *in.Rol
	}
	if in.Activo != nil {
		u.Activo = *in.Activo
	}
	passwordChanged := in.Password != nil && *in.Password != ""
	if passwordChanged {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return Usuario{}, fmt.Errorf("usuarios: hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return Usuario{}, err
	}

	switch {
	case rolChanged:
		s.record(ctx, actorID, auditoria.ActionRoleChange, id)
	case passwordChanged:
		s.record(ctx, actorID, auditoria.ActionPasswordChange, id)
	default:
		s.record(ctx, actorID, auditoria.ActionUpdate, id)
	}
	return updated, nil
}

// Delete removes an account. Self-deletion is refused.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDeletion
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, auditoria.ActionDelete, id)
	s.logger.Info("usuario deleted", "id", id, "actor_id", actorID)
	return nil
}

// Authenticate verifies username and password against the stored hash.
// Inactive accounts and bad passwords return the same error so callers
// cannot probe which usernames exist.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Usuario, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUsuarioNotFound) {
			return Usuario{}, ErrInvalidPassword
		}
		return Usuario{}, err
	}
	if !u.Activo {
		return Usuario{}, ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Usuario{}, ErrInvalidPassword
	}

	now := time.Now()
	u.LastLogin = &now
	if stamped, err := s.repo.Update(ctx, u); err == nil {
		u = stamped
	} else {
		s.logger.Warn("failed to stamp last_login", "usuario_id", u.ID, "error", err)
	}
	return u, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action auditoria.Action, userID int64) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, auditoria.Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   auditoria.EntityUsuario,
		EntityID: userID,
	})
}
