package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/pagination"
)

// Repository is tenant-scoped storage for the service catalog.
type Repository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Update(ctx context.Context, s *Service) error
	List(ctx context.Context, activeOnly bool, category, search string, p pagination.Params) ([]*Service, int, error)
	Categories(ctx context.Context) ([]string, error)
}
