package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform login. Users live in the shared schema and are bound
// to one tenant; the password hash never leaves this package.
type User struct {
	ID           uuid.UUID `json:"id"`
	TenantSlug   string    `json:"tenant_slug"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
