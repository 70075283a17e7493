package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/slotify")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected development env, got %s", cfg.Env)
	}
	if cfg.DefaultTenant != "default" {
		t.Errorf("expected default tenant, got %s", cfg.DefaultTenant)
	}
	if cfg.JWTIssuer != "slotify" {
		t.Errorf("expected slotify issuer, got %s", cfg.JWTIssuer)
	}
	if cfg.JWTTTLMins != 1440 {
		t.Errorf("expected 1440 minute TTL, got %d", cfg.JWTTTLMins)
	}
	if cfg.ReminderCron != "0 * * * *" {
		t.Errorf("unexpected reminder schedule: %s", cfg.ReminderCron)
	}
	if cfg.ReminderLeadHours != 24 {
		t.Errorf("expected 24 hour lead, got %d", cfg.ReminderLeadHours)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected an error without DATABASE_URL")
	}
}

func TestLoad_DevFallbackSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/slotify")
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Error("development should fall back to an insecure secret")
	}
}

func TestValidate_ProductionNeedsRealSecret(t *testing.T) {
	cfg := &Config{Env: "production", JWTTTLMins: 60, JWTSecret: "dev-insecure-secret"}
	if err := cfg.Validate(); err == nil {
		t.Error("the development fallback secret must be rejected in production")
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("short secrets must be rejected, got %v", err)
	}

	cfg.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Errorf("a 32 byte secret should validate: %v", err)
	}
}

func TestValidate_TTLAndLead(t *testing.T) {
	cfg := &Config{Env: "development", JWTTTLMins: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("zero TTL must be rejected")
	}

	cfg = &Config{Env: "development", JWTTTLMins: 60, ReminderLeadHours: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("negative reminder lead must be rejected")
	}
}
