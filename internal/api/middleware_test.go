package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimitMiddleware(4, time.Minute)(ok) // burst of 2

	hit := func(path string) int {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := hit("/api/v1/rows"); code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	if code := hit("/api/v1/rows"); code != http.StatusTooManyRequests {
		t.Errorf("over limit status = %d", code)
	}
	if code := hit("/health/"); code != http.StatusOK {
		t.Errorf("health probe limited: %d", code)
	}
}

func TestTimingMiddlewareSetsHeaderBeforeBody(t *testing.T) {
	h := TimingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("X-Process-Time") == "" {
		t.Error("missing X-Process-Time")
	}
}
