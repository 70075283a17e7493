package db

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	// TenantSlugKey carries the resolved tenant slug through the request context.
	TenantSlugKey contextKey = "tenant_slug"
	// DBConnKey carries the schema-pinned connection through the request context.
	DBConnKey contextKey = "db_conn"
)

var tenantSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// TenantMiddleware resolves the tenant slug for each request, acquires a
// pooled connection, pins its search_path to the tenant schema plus the
// shared schema, and stashes both the slug and the connection in the request
// context. Every repository call downstream runs against the tenant schema.
func TenantMiddleware(pool *pgxpool.Pool, defaultTenant string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slug := extractTenantSlug(c, defaultTenant)

			if !tenantSlugPattern.MatchString(slug) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant identifier")
			}

			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			_, err = conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, shared, public", SchemaName(slug)))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "tenant resolution failed")
			}

			ctx = context.WithValue(ctx, TenantSlugKey, slug)
			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("tenant_slug", slug)

			return next(c)
		}
	}
}

func extractTenantSlug(c echo.Context, defaultTenant string) string {
	// JWT claim first (set by the auth middleware), then the explicit
	// header, then the query parameter.
	if slug, ok := c.Get("jwt_tenant").(string); ok && slug != "" {
		return slug
	}
	if slug := c.Request().Header.Get("X-Tenant"); slug != "" {
		return slug
	}
	if slug := c.QueryParam("tenant"); slug != "" {
		return slug
	}
	return defaultTenant
}

// SchemaName returns the Postgres schema for a tenant slug. Hyphens are
// folded to underscores so slugs stay valid schema identifiers.
func SchemaName(slug string) string {
	return "tenant_" + strings.ReplaceAll(slug, "-", "_")
}

// ConnFromContext retrieves the tenant-scoped database connection, or nil
// when the request did not pass through TenantMiddleware.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// TenantFromContext retrieves the tenant slug from context.
func TenantFromContext(ctx context.Context) string {
	slug, _ := ctx.Value(TenantSlugKey).(string)
	return slug
}

// CreateTenantSchema creates the schema for a new tenant and applies the
// per-tenant migrations to it. An empty migrationsDir skips migrations.
func CreateTenantSchema(ctx context.Context, pool *pgxpool.Pool, slug string, migrationsDir string) error {
	if !tenantSlugPattern.MatchString(slug) {
		return fmt.Errorf("invalid tenant identifier: %s", slug)
	}

	schema := SchemaName(slug)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	if err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if migrationsDir != "" {
		migrator := NewMigrator(pool, migrationsDir)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}
