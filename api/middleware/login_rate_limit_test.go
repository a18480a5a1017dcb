package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/detoxsabeho/orders-backend/pkg/config"
)

type stubCounterStore struct {
	counts map[string]int64
	err    error
}

func (s *stubCounterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubCounterStore) RateLimitKey(scope, ip string) string {
	return fmt.Sprintf("sabeho:ratelimit:%s:%s", scope, ip)
}

func loginLimitConfig(limit int) config.LoginRateLimitConfig {
	return config.LoginRateLimitConfig{Window: time.Minute, IPLimit: limit}
}

func TestLoginRateLimitAllowsUnderLimit(t *testing.T) {
	store := &stubCounterStore{}
	handler := LoginRateLimit(loginLimitConfig(3), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.7:1000"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.Code)
		}
	}
}

func TestLoginRateLimitBlocksOverLimit(t *testing.T) {
	store := &stubCounterStore{}
	handler := LoginRateLimit(loginLimitConfig(2), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.7:1000"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", last.Code)
	}
}

func TestLoginRateLimitIsolatesIPs(t *testing.T) {
	store := &stubCounterStore{}
	handler := LoginRateLimit(loginLimitConfig(1), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/login", nil)
	first.RemoteAddr = "192.0.2.7:1000"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, first)

	other := httptest.NewRequest(http.MethodPost, "/login", nil)
	other.RemoteAddr = "192.0.2.8:1000"
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, other)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected fresh ip to pass, got %d", resp.Code)
	}
}

func TestLoginRateLimitStoreFailure(t *testing.T) {
	store := &stubCounterStore{err: errors.New("redis down")}
	handler := LoginRateLimit(loginLimitConfig(5), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.7:1000"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	handler := LoginRateLimit(config.LoginRateLimitConfig{}, &stubCounterStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected passthrough, got %d", resp.Code)
	}
}
