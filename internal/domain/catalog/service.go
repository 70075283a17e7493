package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/pkg/pagination"
)

// Manager owns the service catalog. The bookable entity in this package is
// named Service, so the business layer carries a different name.
type Manager struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewManager(repo Repository, log zerolog.Logger) *Manager {
	return &Manager{
		repo: repo,
		log:  log.With().Str("component", "catalog").Logger(),
		now:  time.Now,
	}
}

type CreateRequest struct {
	Name            string
	Description     string
	DurationMinutes int
	Price           int64
	Category        string
}

func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Service, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "name is required")
	}
	if req.DurationMinutes <= 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "duration_minutes must be positive")
	}
	if req.Price < 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "price must not be negative")
	}

	now := m.now()
	svc := &Service{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Category:        req.Category,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := m.repo.Create(ctx, svc); err != nil {
		return nil, err
	}

	m.log.Info().Str("service_id", svc.ID.String()).Str("name", svc.Name).Msg("service created")
	return svc, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Service, error) {
	return m.repo.GetByID(ctx, id)
}

type UpdateRequest struct {
	Name            *string
	Description     *string
	DurationMinutes *int
	Price           *int64
	Category        *string
}

// Update patches a service. Duration and price changes affect future
// bookings only; existing appointments keep their snapshot.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Service, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	svc, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.New(apperr.KindInvalidInput, "name must not be empty")
		}
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, apperr.New(apperr.KindInvalidInput, "duration_minutes must be positive")
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperr.New(apperr.KindInvalidInput, "price must not be negative")
		}
		svc.Price = *req.Price
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	svc.UpdatedAt = m.now()

	if err := m.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Deactivate soft-deletes a service: it disappears from customer listings
// and rejects new bookings, but history referencing it stays intact.
func (m *Manager) Deactivate(ctx context.Context, id uuid.UUID) error {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return apperr.AccessDenied("owner or manager role required")
	}
	svc, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	svc.Active = false
	svc.UpdatedAt = m.now()
	if err := m.repo.Update(ctx, svc); err != nil {
		return err
	}

	m.log.Info().Str("service_id", id.String()).Msg("service deactivated")
	return nil
}

func (m *Manager) Reactivate(ctx context.Context, id uuid.UUID) error {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return apperr.AccessDenied("owner or manager role required")
	}
	svc, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	svc.Active = true
	svc.UpdatedAt = m.now()
	return m.repo.Update(ctx, svc)
}

func (m *Manager) List(ctx context.Context, activeOnly bool, category, search string, p pagination.Params) ([]*Service, int, error) {
	return m.repo.List(ctx, activeOnly, category, search, p)
}

func (m *Manager) Categories(ctx context.Context) ([]string, error) {
	return m.repo.Categories(ctx)
}
