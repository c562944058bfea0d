// Package auth issues and describes the HMAC session tokens used by the
// clinic API.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pielsano/podoclinic/internal/auditoria"
	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/internal/usuarios"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// LoginObserver counts login attempts by outcome.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// Service authenticates credentials and mints session tokens.
type Service struct {
	usuarios *usuarios.Service
	audit    auditoria.Recorder
	observer LoginObserver
	logger   *logging.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewService(us *usuarios.Service, audit auditoria.Recorder, logger *logging.Logger, secret string, tokenTTL time.Duration) *Service {
	if us == nil {
		panic("auth: usuarios service required")
	}
	if secret == "" {
		panic("auth: signing secret required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &Service{usuarios: us, audit: audit, logger: logger, secret: []byte(secret), tokenTTL: tokenTTL}
}

// WithObserver attaches a login outcome counter. Returns s for chaining.
func (s *Service) WithObserver(o LoginObserver) *Service {
	s.observer = o
	return s
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveLogin(outcome)
	}
}

// Login verifies credentials and returns a signed token plus the account.
// ip is recorded in the audit trail.
func (s *Service) Login(ctx context.Context, username, password, ip string) (string, usuarios.Usuario, error) {
	u, err := s.usuarios.Authenticate(ctx, username, password)
	if err != nil {
		s.observe("rejected")
		s.logger.Warn("login rejected", "username", username, "remote_ip", ip)
		return "", usuarios.Usuario{}, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", usuarios.Usuario{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, auditoria.Entry{
			ActorID:   u.ID,
			Action:    auditoria.ActionLogin,
			Entity:    auditoria.EntityUsuario,
			EntityID:  u.ID,
			IPAddress: ip,
		})
	}
	s.observe("accepted")
	s.logger.Info("login accepted", "usuario_id", u.ID, "username", u.Username, "rol", u.Rol)
	return token, u, nil
}

// Logout only audits; tokens stay valid until they expire.
func (s *Service) Logout(ctx context.Context, userID int64, ip string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, auditoria.Entry{
		ActorID:   userID,
		Action:    auditoria.ActionLogout,
		Entity:    auditoria.EntityUsuario,
		EntityID:  userID,
		IPAddress: ip,
	})
}

func (s *Service) issueToken(u usuarios.Usuario) (string, error) {
	now := time.Now()
	claims := middleware.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   u.ID,
		Username: u.Username,
		Rol:      u.Rol,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
