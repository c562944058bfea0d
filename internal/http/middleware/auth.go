package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pielsano/podoclinic/internal/rbac"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

// SessionClaims is the payload of the HMAC-signed session token issued at
// login. Rol drives every capability check downstream.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   int64     `json:"uid"`
	Username string    `json:"username"`
	Rol      rbac.Role `json:"rol"`
}

// Authenticate validates the Bearer token on every request and stores the
// session claims in the request context. Requests without a valid token
// get 401.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &SessionClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the session claims if the request was
// authenticated.
func ClaimsFromContext(ctx context.Context) (SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(SessionClaims)
	return claims, ok
}

// WithClaims stores claims in ctx. Exposed for handler tests.
func WithClaims(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// UserID returns the authenticated user's id, or 0 for unauthenticated
// contexts.
func UserID(ctx context.Context) int64 {
	claims, _ := ClaimsFromContext(ctx)
	return claims.UserID
}

// Role returns the authenticated user's role; the zero value denies
// everything.
func Role(ctx context.Context) rbac.Role {
	claims, _ := ClaimsFromContext(ctx)
	return claims.Rol
}

// PermissionDeniedObserver counts capability check failures.
type PermissionDeniedObserver interface {
	ObservePermissionDenied(capability string)
}

// RequireCapability gates a route group on one capability of the session's
// role. Unknown roles and unknown capabilities both deny.
func RequireCapability(cap rbac.Capability, obs ...PermissionDeniedObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			if !rbac.HasPermission(claims.Rol, cap) {
				for _, o := range obs {
					if o != nil {
						o.ObservePermissionDenied(string(cap))
					}
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
