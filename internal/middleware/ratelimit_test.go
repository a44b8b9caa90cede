package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := &RateLimiter{
		maxRequests: 3,
		window:      time.Second,
		clients:     make(map[string]*clientWindow),
	}

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied
	if rl.Allow("10.0.0.1") {
		t.Error("request 4 should be denied")
	}
}

func TestRateLimiterWindowRecovery(t *testing.T) {
	rl := &RateLimiter{
		maxRequests: 2,
		window:      50 * time.Millisecond,
		clients:     make(map[string]*clientWindow),
	}

	// Exhaust the limit
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Error("should be denied after exhausting limit")
	}

	// Wait for window to expire
	time.Sleep(60 * time.Millisecond)

	// Should be allowed again
	if !rl.Allow("10.0.0.1") {
		t.Error("should be allowed after window expiry")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := &RateLimiter{
		maxRequests: 1,
		window:      time.Second,
		clients:     make(map[string]*clientWindow),
	}

	if !rl.Allow("10.0.0.1") {
		t.Error("first client should be allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second client should be allowed independently")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("first client should be denied on second request")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := &RateLimiter{
		maxRequests: 1,
		window:      time.Second,
		clients:     make(map[string]*clientWindow),
	}

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Error("Retry-After header missing")
	}
}
