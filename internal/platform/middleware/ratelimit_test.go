package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func rateLimitedRequest(t *testing.T, handler echo.HandlerFunc, tenant string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if tenant != "" {
		c.Set("tenant_slug", tenant)
	}
	return rec, handler(c)
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimit_WithinBurst(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec, err := rateLimitedRequest(t, handler, "")
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit 10, got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		if _, err := rateLimitedRequest(t, handler, ""); err != nil {
			t.Fatalf("request %d should pass: %v", i+1, err)
		}
	}

	rec, err := rateLimitedRequest(t, handler, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on rejection")
	}
}

func TestRateLimit_TenantsHaveSeparateBuckets(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	if _, err := rateLimitedRequest(t, handler, "bella-salon"); err != nil {
		t.Fatalf("first tenant should pass: %v", err)
	}
	if _, err := rateLimitedRequest(t, handler, "bella-salon"); err == nil {
		t.Fatal("first tenant should be throttled on its second request")
	}
	if _, err := rateLimitedRequest(t, handler, "acme-spa"); err != nil {
		t.Errorf("a different tenant should not be throttled: %v", err)
	}
}
