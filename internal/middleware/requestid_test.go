package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDAttached(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if seen == "" {
		t.Fatal("request ID missing from context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("response header does not match context ID")
	}
}

func TestGetRequestIDAbsent(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("id = %q, want empty", id)
	}
}
