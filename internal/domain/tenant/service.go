package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/internal/platform/db"
	"github.com/slotify/slotify/pkg/pagination"
	"github.com/slotify/slotify/pkg/timeofday"
)

const maxSlugLen = 50

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

type Service struct {
	repo        Repository
	provisioner SchemaProvisioner
	log         zerolog.Logger
	now         func() time.Time
}

func NewService(repo Repository, provisioner SchemaProvisioner, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		log:         log.With().Str("component", "tenant").Logger(),
		now:         time.Now,
	}
}

type ProvisionRequest struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Timezone string
}

// Provision registers a tenant and creates its schema. The slug is derived
// from the business name; collisions get a numeric suffix.
func (s *Service) Provision(ctx context.Context, req ProvisionRequest) (*Tenant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email is required")
	}

	slug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	tz := req.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}

	now := s.now()
	t := &Tenant{
		ID:                  uuid.New(),
		Name:                strings.TrimSpace(req.Name),
		Slug:                slug,
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:               req.Phone,
		Address:             req.Address,
		Timezone:            tz,
		SlotDurationMinutes: DefaultSlotDuration,
		AdvanceBookingDays:  DefaultAdvanceDays,
		WorkingHoursStart:   timeofday.TimeOfDay(DefaultWorkdayStart),
		WorkingHoursEnd:     timeofday.TimeOfDay(DefaultWorkdayEnd),
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.provisioner.Provision(ctx, slug); err != nil {
		return nil, fmt.Errorf("provision schema for %s: %w", slug, err)
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info().Str("tenant_id", t.ID.String()).Str("slug", t.Slug).Msg("tenant provisioned")
	return t, nil
}

// uniqueSlug normalizes the name into a schema-safe slug and suffixes on
// collision: "Bella Salon" -> bella-salon, bella-salon-2, ...
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return "", apperr.New(apperr.KindInvalidInput, "name must contain letters or digits")
	}
	if len(base) > maxSlugLen {
		base = strings.Trim(base[:maxSlugLen], "-")
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Current resolves the calling tenant from the request context.
func (s *Service) Current(ctx context.Context) (*Tenant, error) {
	slug := db.TenantFromContext(ctx)
	if slug == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "no tenant in request")
	}
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]*Tenant, int, error) {
	return s.repo.List(ctx, p)
}

func (s *Service) ActiveSlugs(ctx context.Context) ([]string, error) {
	return s.repo.ActiveSlugs(ctx)
}

// SettingsUpdate patches the tenant's booking policy and contact details.
type SettingsUpdate struct {
	Name                *string
	Email               *string
	Phone               *string
	Address             *string
	Timezone            *string
	SlotDurationMinutes *int
	AdvanceBookingDays  *int
	AutoConfirm         *bool
	WorkingHoursStart   *timeofday.TimeOfDay
	WorkingHoursEnd     *timeofday.TimeOfDay
}

// UpdateSettings patches the calling tenant. Owner/manager only. Policy
// changes apply to future admissions; existing appointments are untouched.
func (s *Service) UpdateSettings(ctx context.Context, req SettingsUpdate) (*Tenant, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	t, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.New(apperr.KindInvalidInput, "name must not be empty")
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		t.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		t.Phone = *req.Phone
	}
	if req.Address != nil {
		t.Address = *req.Address
	}
	if req.Timezone != nil {
		t.Timezone = *req.Timezone
	}
	if req.SlotDurationMinutes != nil {
		if *req.SlotDurationMinutes < 5 || *req.SlotDurationMinutes > 480 {
			return nil, apperr.New(apperr.KindInvalidInput, "slot_duration_minutes must be 5-480")
		}
		t.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.AdvanceBookingDays != nil {
		if *req.AdvanceBookingDays < 1 || *req.AdvanceBookingDays > 365 {
			return nil, apperr.New(apperr.KindInvalidInput, "advance_booking_days must be 1-365")
		}
		t.AdvanceBookingDays = *req.AdvanceBookingDays
	}
	if req.AutoConfirm != nil {
		t.AutoConfirm = *req.AutoConfirm
	}
	if req.WorkingHoursStart != nil {
		t.WorkingHoursStart = *req.WorkingHoursStart
	}
	if req.WorkingHoursEnd != nil {
		t.WorkingHoursEnd = *req.WorkingHoursEnd
	}
	if t.WorkingHoursStart >= t.WorkingHoursEnd {
		return nil, apperr.New(apperr.KindInvalidInput, "working_hours_start must be before working_hours_end")
	}
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Deactivate stops all booking activity for the calling tenant.
func (s *Service) Deactivate(ctx context.Context) error {
	if !auth.HasRole(ctx, auth.RoleAdmin) {
		return apperr.AccessDenied("owner role required")
	}
	t, err := s.Current(ctx)
	if err != nil {
		return err
	}
	t.Active = false
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}

	s.log.Info().Str("slug", t.Slug).Msg("tenant deactivated")
	return nil
}
