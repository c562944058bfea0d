package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pielsano/podoclinic/internal/rbac"
)

func signedToken(t *testing.T, secret string, claims SessionClaims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthenticateMissingSecret(t *testing.T) {
	mw := Authenticate("")
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	mw := Authenticate("secret")
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	mw := Authenticate("secret")
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "other", SessionClaims{UserID: 1, Rol: rbac.RoleAdmin}))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	mw := Authenticate("secret")
	claims := SessionClaims{UserID: 1, Rol: rbac.RoleAdmin}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", claims))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	mw := Authenticate("secret")
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", SessionClaims{
		UserID: 42, Username: "dra.lopez", Rol: rbac.RolePodologo,
	}))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if got := UserID(r.Context()); got != 42 {
			t.Fatalf("expected user id 42 in context, got %d", got)
		}
		if got := Role(r.Context()); got != rbac.RolePodologo {
			t.Fatalf("expected rol Podologo in context, got %q", got)
		}
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected next handler to run")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireCapabilityDenied(t *testing.T) {
	mw := RequireCapability(rbac.CapManageUsers)
	req := httptest.NewRequest(http.MethodGet, "/usuarios", nil)
	req = req.WithContext(WithClaims(req.Context(), SessionClaims{UserID: 7, Rol: rbac.RoleRecepcion}))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireCapabilityUnauthenticated(t *testing.T) {
	mw := RequireCapability(rbac.CapViewAppointments)
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireCapabilityGranted(t *testing.T) {
	mw := RequireCapability(rbac.CapViewAppointments)
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	req = req.WithContext(WithClaims(req.Context(), SessionClaims{UserID: 7, Rol: rbac.RoleRecepcion}))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected next handler to run")
	}
}

func TestRequireCapabilityUnknownRole(t *testing.T) {
	mw := RequireCapability(rbac.CapViewDashboard)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(WithClaims(req.Context(), SessionClaims{UserID: 7, Rol: "Gerente"}))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}
