package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubSubmitLimiter struct {
	ok  bool
	err error
	ips []string
}

func (s *stubSubmitLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	s.ips = append(s.ips, ip)
	return s.ok, s.err
}

func TestSubmitRateLimitAllows(t *testing.T) {
	limiter := &stubSubmitLimiter{ok: true}
	handler := SubmitRateLimit(limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(limiter.ips) != 1 || limiter.ips[0] != "203.0.113.9" {
		t.Fatalf("expected resolved ip checked, got %v", limiter.ips)
	}
}

func TestSubmitRateLimitBlocks(t *testing.T) {
	handler := SubmitRateLimit(&stubSubmitLimiter{ok: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestSubmitRateLimitStorageFailure(t *testing.T) {
	handler := SubmitRateLimit(&stubSubmitLimiter{err: errors.New("flock: permission denied")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
