package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/pkg/pagination"
)

// ListFilter narrows the paginated appointment listing.
type ListFilter struct {
	StaffID   *uuid.UUID
	ServiceID *uuid.UUID
	Status    *Status
	From      *time.Time
	To        *time.Time
}

// List returns a paginated, filtered appointment listing. Owner/manager only.
func (s *Service) List(ctx context.Context, filter ListFilter, p pagination.Params) ([]*Appointment, int, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, 0, apperr.AccessDenied("owner or manager role required")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, apperr.Newf(apperr.KindInvalidInput, "unknown status %q", *filter.Status)
	}
	return s.appointments.List(ctx, filter, p)
}

// ListByDate returns all appointments on a date across staff. Owner/manager only.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	return s.appointments.ListByDate(ctx, normalizeDate(date))
}

// ListByStaffDate returns one staff member's appointments on a date.
func (s *Service) ListByStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*Appointment, error) {
	if _, err := s.schedules.StaffInfo(ctx, staffID); err != nil {
		return nil, err
	}
	return s.appointments.ListByStaffDate(ctx, staffID, normalizeDate(date))
}

// ListByCustomerPhone returns a customer's appointment history, newest first.
func (s *Service) ListByCustomerPhone(ctx context.Context, phone string) ([]*Appointment, error) {
	if phone == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "phone is required")
	}
	return s.appointments.ListByCustomerPhone(ctx, phone)
}

// ListUpcomingByCustomerEmail returns a customer's future active appointments.
func (s *Service) ListUpcomingByCustomerEmail(ctx context.Context, email string) ([]*Appointment, error) {
	if email == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email is required")
	}
	return s.appointments.ListUpcomingByCustomerEmail(ctx, email, normalizeDate(s.now()))
}

// Today returns all of today's appointments. Owner/manager only.
func (s *Service) Today(ctx context.Context) ([]*Appointment, error) {
	return s.ListByDate(ctx, s.now())
}

// Upcoming returns active appointments from today forward. Owner/manager only.
func (s *Service) Upcoming(ctx context.Context, p pagination.Params) ([]*Appointment, int, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, 0, apperr.AccessDenied("owner or manager role required")
	}
	return s.appointments.ListUpcoming(ctx, normalizeDate(s.now()), p)
}

// Calendar returns per-day status counts for an inclusive date range, one
// entry per day whether or not anything is booked. Owner/manager only.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) ([]CalendarDay, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}
	from, to = normalizeDate(from), normalizeDate(to)
	if to.Before(from) {
		return nil, apperr.New(apperr.KindInvalidInput, "to must not be before from")
	}
	if to.Sub(from) > 366*24*time.Hour {
		return nil, apperr.New(apperr.KindInvalidInput, "range must not exceed one year")
	}

	appts, err := s.appointments.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]*Appointment)
	for _, a := range appts {
		key := a.Date.Format("2006-01-02")
		byDay[key] = append(byDay[key], a)
	}

	var days []CalendarDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, NewCalendarDay(d, byDay[d.Format("2006-01-02")]))
	}
	return days, nil
}

// Statistics returns tenant-wide appointment counts and completed revenue,
// optionally scoped to one staff member. Owner/manager only.
func (s *Service) Statistics(ctx context.Context, staffID *uuid.UUID) (*Statistics, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}

	var (
		counts *StatusCounts
		err    error
	)
	if staffID != nil {
		if _, err := s.schedules.StaffInfo(ctx, *staffID); err != nil {
			return nil, err
		}
		counts, err = s.appointments.CountByStatusForStaff(ctx, *staffID)
	} else {
		counts, err = s.appointments.CountByStatus(ctx)
	}
	if err != nil {
		return nil, err
	}
	return NewStatistics(counts), nil
}

// View resolves the denormalized presentation of one appointment.
func (s *Service) View(ctx context.Context, appt *Appointment) (*AppointmentView, error) {
	return s.view(ctx, appt, s.tenantName(ctx), map[uuid.UUID]string{}, map[uuid.UUID]string{})
}

// Views resolves presentation for a batch, memoizing name lookups.
func (s *Service) Views(ctx context.Context, appts []*Appointment) ([]*AppointmentView, error) {
	tenantName := s.tenantName(ctx)
	staffNames := map[uuid.UUID]string{}
	serviceNames := map[uuid.UUID]string{}
	views := make([]*AppointmentView, 0, len(appts))
	for _, a := range appts {
		v, err := s.view(ctx, a, tenantName, staffNames, serviceNames)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) tenantName(ctx context.Context) string {
	policy, err := s.policies.PolicyFor(ctx)
	if err != nil {
		return ""
	}
	return policy.TenantName
}

func (s *Service) view(ctx context.Context, appt *Appointment, tenantName string, staffNames, serviceNames map[uuid.UUID]string) (*AppointmentView, error) {
	staffName, ok := staffNames[appt.StaffID]
	if !ok {
		if info, err := s.schedules.StaffInfo(ctx, appt.StaffID); err == nil {
			staffName = info.DisplayName
		}
		staffNames[appt.StaffID] = staffName
	}
	serviceName, ok := serviceNames[appt.ServiceID]
	if !ok {
		if info, err := s.services.ServiceInfo(ctx, appt.ServiceID); err == nil {
			serviceName = info.Name
		}
		serviceNames[appt.ServiceID] = serviceName
	}
	return NewAppointmentView(appt, tenantName, staffName, serviceName), nil
}
