package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func testContext(req *http.Request) echo.Context {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestExtractTenantSlug_FromJWT(t *testing.T) {
	c := testContext(httptest.NewRequest(http.MethodGet, "/", nil))
	c.Set("jwt_tenant", "bella-salon")

	if got := extractTenantSlug(c, "default"); got != "bella-salon" {
		t.Errorf("expected bella-salon, got %s", got)
	}
}

func TestExtractTenantSlug_FromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant", "acme-spa")

	if got := extractTenantSlug(testContext(req), "default"); got != "acme-spa" {
		t.Errorf("expected acme-spa, got %s", got)
	}
}

func TestExtractTenantSlug_FromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?tenant=acme-spa", nil)

	if got := extractTenantSlug(testContext(req), "default"); got != "acme-spa" {
		t.Errorf("expected acme-spa, got %s", got)
	}
}

func TestExtractTenantSlug_Default(t *testing.T) {
	c := testContext(httptest.NewRequest(http.MethodGet, "/", nil))

	if got := extractTenantSlug(c, "default"); got != "default" {
		t.Errorf("expected default, got %s", got)
	}
}

func TestExtractTenantSlug_JWTWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?tenant=query", nil)
	req.Header.Set("X-Tenant", "header")
	c := testContext(req)
	c.Set("jwt_tenant", "jwt")

	if got := extractTenantSlug(c, "default"); got != "jwt" {
		t.Errorf("the JWT claim should take priority, got %s", got)
	}
}

func TestTenantSlugPattern(t *testing.T) {
	valid := []string{"default", "bella-salon", "acme-2", "a1_b2"}
	for _, v := range valid {
		if !tenantSlugPattern.MatchString(v) {
			t.Errorf("%q should be a valid slug", v)
		}
	}

	invalid := []string{"", "Bella", "-lead", "a b", "x;drop", "café"}
	for _, v := range invalid {
		if tenantSlugPattern.MatchString(v) {
			t.Errorf("%q should be rejected", v)
		}
	}
}

func TestSchemaName(t *testing.T) {
	if got := SchemaName("bella-salon"); got != "tenant_bella_salon" {
		t.Errorf("hyphens should fold to underscores, got %s", got)
	}
	if got := SchemaName("default"); got != "tenant_default" {
		t.Errorf("expected tenant_default, got %s", got)
	}
}

func TestTenantFromContext_Empty(t *testing.T) {
	if got := TenantFromContext(context.Background()); got != "" {
		t.Errorf("expected empty slug, got %q", got)
	}
}

func TestConnFromContext_Empty(t *testing.T) {
	if ConnFromContext(context.Background()) != nil {
		t.Error("expected nil connection for a bare context")
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected nil transaction for a bare context")
	}
}
