package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPPrefersCloudflare(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	req.Header.Set("X-Real-IP", "198.51.100.2")

	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected cloudflare header to win, got %q", got)
	}
}

func TestClientIPFirstForwardedEntry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 198.51.100.1 , 10.0.0.1")

	if got := ClientIP(req); got != "198.51.100.1" {
		t.Fatalf("expected first forwarded entry, got %q", got)
	}
}

func TestClientIPRealIPFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.2")

	if got := ClientIP(req); got != "198.51.100.2" {
		t.Fatalf("expected real-ip fallback, got %q", got)
	}
}

func TestClientIPRemoteAddrFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4431"

	if got := ClientIP(req); got != "192.0.2.7" {
		t.Fatalf("expected socket peer, got %q", got)
	}
}
