package config

import (
	"os"
	"testing"
	"time"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SABEHO_APP_ENV", "production")
	t.Setenv("SABEHO_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SABEHO_JWT_SECRET", "secret")
	t.Setenv("SABEHO_ADMIN_PASSWORD_HASH", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA")
	t.Setenv("SABEHO_ADMIN_EMAIL", "pedidos@detoxsabeho.com")
}

func TestLoadSuccess(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env production, got %q", cfg.App.Env)
	}
	if cfg.Storage.OrdersFile != "data/orders.json" {
		t.Fatalf("unexpected orders file default %q", cfg.Storage.OrdersFile)
	}
	if cfg.Storage.Timezone != "America/Bogota" {
		t.Fatalf("unexpected timezone default %q", cfg.Storage.Timezone)
	}
	if cfg.SubmitLimit.MaxRequests != 10 || cfg.SubmitLimit.Window != time.Hour {
		t.Fatalf("unexpected submit limit defaults %+v", cfg.SubmitLimit)
	}
	if cfg.LoginLimit.IPLimit != 5 || cfg.LoginLimit.Window != time.Minute {
		t.Fatalf("unexpected login limit defaults %+v", cfg.LoginLimit)
	}
	if got := cfg.JWT.SessionTTL(); got != time.Hour {
		t.Fatalf("expected session ttl 1h, got %v", got)
	}
	if cfg.Cron.Interval != 24*time.Hour {
		t.Fatalf("unexpected cron interval default %v", cfg.Cron.Interval)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("SABEHO_APP_ENV"); err != nil {
		t.Fatalf("failed to unset env: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestEmailAddresses(t *testing.T) {
	cfg := EmailConfig{FromDomain: "detoxsabeho.com", FromName: "Detox Sabeho"}
	if got := cfg.FromAddress(); got != "Detox Sabeho <pedidos@detoxsabeho.com>" {
		t.Fatalf("unexpected from address %q", got)
	}
}

func TestFacebookEnabled(t *testing.T) {
	if (FacebookConfig{}).Enabled() {
		t.Fatal("empty facebook config should be disabled")
	}
	enabled := FacebookConfig{PixelID: "123", AccessToken: "token"}
	if !enabled.Enabled() {
		t.Fatal("expected configured pixel to be enabled")
	}
}
