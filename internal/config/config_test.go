package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("TRACKING_INTERVAL", "")

	cfg := Load()
	if cfg.Port != 5000 {
		t.Fatalf("expected default port 5000, got %d", cfg.Port)
	}
	if cfg.Addr() != ":5000" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.AuthProvider != "local" {
		t.Fatalf("expected local auth provider, got %q", cfg.AuthProvider)
	}
	if cfg.TrackingInterval != 10*time.Second {
		t.Fatalf("unexpected tracking interval %s", cfg.TrackingInterval)
	}
	if cfg.AllowOrigins() != "*" {
		t.Fatalf("expected wildcard CORS outside production, got %q", cfg.AllowOrigins())
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", cfg.Warnings)
	}
}

func TestLoad_PortValidation(t *testing.T) {
	for _, raw := range []string{"0", "65536", "abc", "-1"} {
		t.Setenv("PORT", raw)
		cfg := Load()
		if cfg.Port != 5000 {
			t.Fatalf("PORT=%s: expected fallback 5000, got %d", raw, cfg.Port)
		}
		if len(cfg.Warnings) == 0 {
			t.Fatalf("PORT=%s: expected a warning", raw)
		}
	}

	t.Setenv("PORT", "65535")
	if cfg := Load(); cfg.Port != 65535 {
		t.Fatalf("expected 65535, got %d", cfg.Port)
	}
}

func TestLoad_ProductionCORS(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if cfg.AllowOrigins() != "https://a.example,https://b.example" {
		t.Fatalf("unexpected origins %q", cfg.AllowOrigins())
	}
}

func TestLoad_UnknownAuthProvider(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TRACKING_INTERVAL", "")
	t.Setenv("AUTH_PROVIDER", "Firebase")
	cfg := Load()
	if cfg.AuthProvider != "local" || len(cfg.Warnings) != 1 {
		t.Fatalf("expected fallback to local with warning, got %q %v", cfg.AuthProvider, cfg.Warnings)
	}
}
