package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if !cfg.WelcomeCredit.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected default welcome credit 1000, got %s", cfg.WelcomeCredit)
	}

	if cfg.EventChannel != "crickex.events" {
		t.Fatalf("expected default event channel, got %s", cfg.EventChannel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("WELCOME_CREDIT", "250.50")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if !cfg.WelcomeCredit.Equal(decimal.RequireFromString("250.50")) {
		t.Fatalf("expected welcome credit override, got %s", cfg.WelcomeCredit)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}

	t.Setenv("HTTP_READ_TIMEOUT", "30s")
	t.Setenv("WELCOME_CREDIT", "not-a-number")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid decimal")
	}
}
