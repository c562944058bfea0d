package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pielsano/podoclinic/internal/http/middleware"
	"github.com/pielsano/podoclinic/internal/rbac"
	"github.com/pielsano/podoclinic/internal/usuarios"
	"github.com/pielsano/podoclinic/pkg/logging"
)

// Handler serves the login, logout and session-introspection endpoints.
type Handler struct {
	svc      *Service
	usuarios *usuarios.Service
	logger   *logging.Logger
}

func NewHandler(svc *Service, us *usuarios.Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("auth: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, usuarios: us, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string           `json:"token"`
	Usuario     usuarios.Usuario `json:"usuario"`
	Permissions rbac.Permissions `json:"permissions"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		if errors.Is(err, usuarios.ErrInvalidPassword) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:       token,
		Usuario:     u,
		Permissions: rbac.PermissionsFor(u.Rol),
	})
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), middleware.UserID(r.Context()), clientIP(r))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me: the authenticated account plus the resolved
// permission set the frontend gates its UI on.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	resp := map[string]any{
		"permissions": rbac.PermissionsFor(claims.Rol),
	}
	if h.usuarios != nil {
		if u, err := h.usuarios.Get(r.Context(), claims.UserID); err == nil {
			resp["usuario"] = u
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
