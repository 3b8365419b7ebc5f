package mockapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitPerClientIP(t *testing.T) {
	srv, err := New(WithRateLimit(1, 2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := srv.Handler()

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := get("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code := get("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := get("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client limited: %d", code)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	srv, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BasePath+"/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}
