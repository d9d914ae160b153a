package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{"HTTP_PORT", "CORS_ALLOWED_ORIGINS", "DATABASE_DRIVER", "NOTIFY_CUSTOMER", "SLA_SCAN_INTERVAL_MINUTES", "SMTP_PORT", "SLACK_BOT_TOKEN", "SLACK_CHANNEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 3000 {
		t.Errorf("HTTPPort = %d, want 3000", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("DatabaseDriver = %q, want postgres", cfg.DatabaseDriver)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if !cfg.NotifyCustomer || !cfg.NotifyCreator {
		t.Error("notification flags should default to true")
	}
	if cfg.SLAScanInterval() != time.Hour {
		t.Errorf("SLAScanInterval = %v, want 1h", cfg.SLAScanInterval())
	}
	if cfg.SlackEnabled() {
		t.Error("Slack should be disabled without a token")
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want none", cfg.CORSAllowedOrigins)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("NOTIFY_CUSTOMER", "false")
	t.Setenv("SMTP_SKIP_TLS_VERIFY", "1")
	t.Setenv("SLA_SCAN_INTERVAL_MINUTES", "0")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-1")
	t.Setenv("SLACK_CHANNEL", "#claims")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://desk.example.com, ,https://ops.example.com")

	cfg, _ := Load()
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://ops.example.com" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.HTTPPort != 8080 || cfg.DatabaseDriver != "sqlite" {
		t.Errorf("unexpected %d %q", cfg.HTTPPort, cfg.DatabaseDriver)
	}
	if cfg.NotifyCustomer {
		t.Error("NotifyCustomer should be false")
	}
	if !cfg.SMTPSkipTLSVerify {
		t.Error("SMTPSkipTLSVerify should accept 1")
	}
	if cfg.SLAScanInterval() != 0 {
		t.Error("scan interval 0 should disable the monitor")
	}
	if !cfg.SlackEnabled() {
		t.Error("Slack should be enabled")
	}
}

func TestGetEnvAsBoolOrDefault_Invalid(t *testing.T) {
	t.Setenv("SOME_FLAG", "maybe")
	if !getEnvAsBoolOrDefault("SOME_FLAG", true) {
		t.Error("invalid value should fall back to the default")
	}
}

func TestLoadOrGenerateJWTSecret_PersistsToFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "nested", ".jwt_secret")

	first := loadOrGenerateJWTSecret(path)
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("secret file not written: %v", err)
	}
	if string(data) != first {
		t.Error("file content differs from returned secret")
	}
	if second := loadOrGenerateJWTSecret(path); second != first {
		t.Error("second load should reuse the persisted secret")
	}
}
