package auth

import (
	"testing"
	"time"

	"github.com/detoxsabeho/orders-backend/pkg/config"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "detoxsabeho",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()

	token, err := MintAdminToken(cfg, now, "session-1")
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}

	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if claims.Role != "admin" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti session-1, got %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	wantExp := now.Add(30 * time.Minute)
	if claims.ExpiresAt == nil || claims.ExpiresAt.Sub(wantExp).Abs() > time.Second {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestMintAdminTokenGeneratesJTI(t *testing.T) {
	cfg := testConfig()

	token, err := MintAdminToken(cfg, time.Now(), "  ")
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseAdminTokenWrongSecret(t *testing.T) {
	token, err := MintAdminToken(testConfig(), time.Now(), "session-1")
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}

	other := testConfig()
	other.Secret = "different"
	if _, err := ParseAdminToken(other, token); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestParseAdminTokenExpired(t *testing.T) {
	cfg := testConfig()
	token, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour), "session-1")
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	if _, err := ParseAdminToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestMintAdminTokenRequiresConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = ""
	if _, err := MintAdminToken(cfg, time.Now(), ""); err == nil {
		t.Fatal("expected missing secret to fail")
	}

	cfg = testConfig()
	cfg.ExpirationMinutes = 0
	if _, err := MintAdminToken(cfg, time.Now(), ""); err == nil {
		t.Fatal("expected zero expiration to fail")
	}
}
