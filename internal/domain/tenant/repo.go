package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/pagination"
)

// Repository is platform-level tenant storage in the shared schema.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	List(ctx context.Context, p pagination.Params) ([]*Tenant, int, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ActiveSlugs(ctx context.Context) ([]string, error)
}

// SchemaProvisioner creates a tenant's dedicated schema and runs the
// per-tenant migrations in it.
type SchemaProvisioner interface {
	Provision(ctx context.Context, slug string) error
}
