package staff

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/pkg/pagination"
	"github.com/slotify/slotify/pkg/timeofday"
)

var validRoles = map[string]bool{
	auth.RoleOwner:   true,
	auth.RoleAdmin:   true,
	auth.RoleManager: true,
	auth.RoleStaff:   true,
}

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "staff").Logger(),
		now:  time.Now,
	}
}

type CreateRequest struct {
	FullName string
	Email    string
	Phone    string
	Role     string
	Bio      string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Staff, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "full_name is required")
	}
	role := req.Role
	if role == "" {
		role = auth.RoleStaff
	}
	if !validRoles[role] {
		return nil, apperr.Newf(apperr.KindInvalidInput, "unknown role %q", role)
	}

	now := s.now()
	member := &Staff{
		ID:        uuid.New(),
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Role:      role,
		Bio:       req.Bio,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.log.Info().Str("staff_id", member.ID.String()).Str("role", member.Role).Msg("staff member created")
	return member, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

type UpdateRequest struct {
	FullName *string
	Phone    *string
	Role     *string
	Bio      *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Staff, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, apperr.New(apperr.KindInvalidInput, "full_name must not be empty")
		}
		member.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Role != nil {
		if !validRoles[*req.Role] {
			return nil, apperr.Newf(apperr.KindInvalidInput, "unknown role %q", *req.Role)
		}
		member.Role = *req.Role
	}
	if req.Bio != nil {
		member.Bio = *req.Bio
	}
	member.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Deactivate soft-disables a staff member. Existing appointments are left
// untouched; new bookings for the member are rejected at admission.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return apperr.AccessDenied("owner or manager role required")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	member.Active = false
	member.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, member); err != nil {
		return err
	}

	s.log.Info().Str("staff_id", id.String()).Msg("staff member deactivated")
	return nil
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return apperr.AccessDenied("owner or manager role required")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	member.Active = true
	member.UpdatedAt = s.now()
	return s.repo.Update(ctx, member)
}

func (s *Service) List(ctx context.Context, activeOnly bool, p pagination.Params) ([]*Staff, int, error) {
	return s.repo.List(ctx, activeOnly, p)
}

// ScheduleDayInput is one day of a weekly schedule submission.
type ScheduleDayInput struct {
	DayOfWeek int
	Start     timeofday.TimeOfDay
	End       timeofday.TimeOfDay
	Available bool
}

// SetScheduleDay upserts one weekly schedule entry. An available day must
// have a positive working window.
func (s *Service) SetScheduleDay(ctx context.Context, staffID uuid.UUID, in ScheduleDayInput) (*ScheduleEntry, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	if in.DayOfWeek < 1 || in.DayOfWeek > 7 {
		return nil, apperr.New(apperr.KindInvalidInput, "day_of_week must be 1 (Monday) through 7 (Sunday)")
	}
	if in.Available && in.Start >= in.End {
		return nil, apperr.New(apperr.KindInvalidInput, "start_time must be before end_time")
	}
	if _, err := s.repo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}

	now := s.now()
	entry := &ScheduleEntry{
		ID:        uuid.New(),
		StaffID:   staffID,
		DayOfWeek: in.DayOfWeek,
		Start:     in.Start,
		End:       in.End,
		Available: in.Available,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertSchedule(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SetWeeklySchedule replaces the submitted days in one call. Days not
// submitted keep their current entries.
func (s *Service) SetWeeklySchedule(ctx context.Context, staffID uuid.UUID, days []ScheduleDayInput) ([]*ScheduleEntry, error) {
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if seen[d.DayOfWeek] {
			return nil, apperr.Newf(apperr.KindInvalidInput, "duplicate entry for day %d", d.DayOfWeek)
		}
		seen[d.DayOfWeek] = true
	}

	entries := make([]*ScheduleEntry, 0, len(days))
	for _, d := range days {
		e, err := s.SetScheduleDay(ctx, staffID, d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Service) Schedule(ctx context.Context, staffID uuid.UUID) ([]*ScheduleEntry, error) {
	if _, err := s.repo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	return s.repo.GetSchedule(ctx, staffID)
}

func (s *Service) ScheduleDay(ctx context.Context, staffID uuid.UUID, dayOfWeek int) (*ScheduleEntry, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return nil, apperr.New(apperr.KindInvalidInput, "day_of_week must be 1 (Monday) through 7 (Sunday)")
	}
	return s.repo.GetScheduleDay(ctx, staffID, dayOfWeek)
}

func (s *Service) ClearScheduleDay(ctx context.Context, staffID uuid.UUID, dayOfWeek int) error {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return apperr.AccessDenied("owner or manager role required")
	}
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return apperr.New(apperr.KindInvalidInput, "day_of_week must be 1 (Monday) through 7 (Sunday)")
	}
	return s.repo.DeleteScheduleDay(ctx, staffID, dayOfWeek)
}
