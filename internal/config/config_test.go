package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TOKEN_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Fatalf("expected default token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.LoginRatePerMin != 5 {
		t.Fatalf("expected default login rate, got %d", cfg.LoginRatePerMin)
	}
	if cfg.DefaultCitaDurationMin != 30 {
		t.Fatalf("expected default cita duration, got %d", cfg.DefaultCitaDurationMin)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.podoclinic.mx, https://staging.podoclinic.mx")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.JWTSecret != "topsecret" {
		t.Fatalf("expected jwt secret override, got %s", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected token ttl override, got %s", cfg.TokenTTL)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.podoclinic.mx" {
		t.Fatalf("expected parsed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("LOGIN_RATE_PER_MIN", "lots")
	t.Setenv("REDIS_TLS", "yes please")
	cfg := Load()
	if cfg.TokenTTL != 8*time.Hour {
		t.Fatalf("expected fallback token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.LoginRatePerMin != 5 {
		t.Fatalf("expected fallback login rate, got %d", cfg.LoginRatePerMin)
	}
	if cfg.RedisTLS {
		t.Fatal("expected redis tls fallback to false")
	}
}
