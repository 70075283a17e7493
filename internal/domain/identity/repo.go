package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository is shared-schema user storage.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, tenantSlug, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	CountForTenant(ctx context.Context, tenantSlug string) (int, error)
}
