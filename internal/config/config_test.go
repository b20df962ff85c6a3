package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "JWT_SECRET", "JWT_TTL", "COOKIE_SECURE",
		"CORS_ALLOWED_ORIGINS", "AUTH_RATE_LIMIT_RPS", "AUTH_RATE_LIMIT_BURST", "DEFAULT_PAGE_LIMIT"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.JWTTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day token ttl, got %s", cfg.JWTTTL)
	}
	if cfg.CookieSecure {
		t.Fatalf("expected insecure cookies outside production")
	}
	if cfg.DefaultPageLimit != 20 {
		t.Fatalf("expected default page limit 20, got %d", cfg.DefaultPageLimit)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected default origins %v", cfg.CORSAllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected development config to validate, got %v", err)
	}
	if !cfg.UsesDevSecret() {
		t.Fatalf("expected development jwt secret fallback")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "2.5")
	t.Setenv("AUTH_RATE_LIMIT_BURST", "4")
	t.Setenv("DEFAULT_PAGE_LIMIT", "50")
	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "production" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected basics: %+v", cfg)
	}
	if !cfg.RedisTLS || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis overrides, got %+v", cfg)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", cfg.JWTTTL)
	}
	if !cfg.CookieSecure {
		t.Fatalf("expected secure cookies in production")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.AuthRateLimitRPS != 2.5 || cfg.AuthRateLimitBurst != 4 || cfg.DefaultPageLimit != 50 {
		t.Fatalf("unexpected numeric overrides: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret to fail in production")
	}
}

func TestValidateRequiresSecretWithDatabase(t *testing.T) {
	cfg := &Config{Env: "development", DatabaseURL: "postgres://user@host/db"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret to fail when a database is configured")
	}
	if cfg.UsesDevSecret() {
		t.Fatalf("dev secret must not be applied when validation fails")
	}

	cfg.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected explicit secret to validate, got %v", err)
	}
	if cfg.UsesDevSecret() {
		t.Fatalf("explicit secret replaced by dev secret")
	}
}

func TestGetEnvFallbacksOnGarbage(t *testing.T) {
	t.Setenv("DEFAULT_PAGE_LIMIT", "lots")
	t.Setenv("JWT_TTL", "forever")
	cfg := Load()
	if cfg.DefaultPageLimit != 20 {
		t.Fatalf("expected fallback page limit, got %d", cfg.DefaultPageLimit)
	}
	if cfg.JWTTTL != 30*24*time.Hour {
		t.Fatalf("expected fallback ttl, got %s", cfg.JWTTTL)
	}
}
