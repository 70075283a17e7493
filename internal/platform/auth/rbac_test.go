package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithRoles(roles ...string) context.Context {
	return context.WithValue(context.Background(), UserRolesKey, roles)
}

func TestHasRole(t *testing.T) {
	if !HasRole(ctxWithRoles(RoleManager), RoleAdmin, RoleManager) {
		t.Error("manager should satisfy an admin-or-manager check")
	}
	if HasRole(ctxWithRoles(RoleStaff), RoleAdmin, RoleManager) {
		t.Error("staff should not satisfy an admin-or-manager check")
	}
	if HasRole(context.Background(), RoleStaff) {
		t.Error("anonymous context should satisfy nothing")
	}
}

func TestHasRole_OwnerPassesEverything(t *testing.T) {
	ctx := ctxWithRoles(RoleOwner)
	for _, role := range []string{RoleAdmin, RoleManager, RoleStaff} {
		if !HasRole(ctx, role) {
			t.Errorf("owner should satisfy %s", role)
		}
	}
}

func requireRoleRequest(t *testing.T, mwRoles []string, userRoles []string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userRoles != nil {
		req = req.WithContext(ctxWithRoles(userRoles...))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireRole(mwRoles...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireRole_Admits(t *testing.T) {
	if err := requireRoleRequest(t, []string{RoleAdmin}, []string{RoleAdmin}); err != nil {
		t.Errorf("admin should pass an admin gate: %v", err)
	}
	if err := requireRoleRequest(t, []string{RoleAdmin}, []string{RoleOwner}); err != nil {
		t.Errorf("owner should pass an admin gate: %v", err)
	}
}

func TestRequireRole_Rejects(t *testing.T) {
	err := requireRoleRequest(t, []string{RoleAdmin}, []string{RoleStaff})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}

	if err := requireRoleRequest(t, []string{RoleAdmin}, nil); err == nil {
		t.Error("anonymous request should be rejected")
	}
}
