package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/pkg/timeofday"
)

// Service is the scheduling and conflict-resolution engine. Tenant policy,
// staff schedules, and bookable services are external collaborators behind
// the provider interfaces; the engine owns admission, conflict detection,
// and the appointment lifecycle.
type Service struct {
	appointments AppointmentRepository
	policies     PolicyProvider
	schedules    ScheduleProvider
	services     ServiceProvider
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(repo AppointmentRepository, policies PolicyProvider, schedules ScheduleProvider, services ServiceProvider, log zerolog.Logger) *Service {
	return &Service{
		appointments: repo,
		policies:     policies,
		schedules:    schedules,
		services:     services,
		log:          log.With().Str("component", "booking").Logger(),
		now:          time.Now,
	}
}

// CreateRequest carries a booking request into the engine.
type CreateRequest struct {
	StaffID       uuid.UUID
	ServiceID     uuid.UUID
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Date          time.Time
	Start         timeofday.TimeOfDay
	Notes         string
}

// admission is the successful outcome of the admission check.
type admission struct {
	policy  *Policy
	staff   *StaffInfo
	service *ServiceInfo
	day     *DaySchedule
	end     timeofday.TimeOfDay
}

// Create books a new appointment. The admission check and the insert run as
// one serialized unit per (staff, date); a conflict detected at commit time
// is retried once by re-running the full admission check, then surfaced.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "customer_name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "customer_phone is required")
	}

	appt, err := s.tryCreate(ctx, req)
	if apperr.IsKind(err, apperr.KindConflict) {
		// One retry: the losing half of a commit-time race re-runs
		// admission against the now-committed state.
		s.log.Debug().Str("staff_id", req.StaffID.String()).Msg("booking conflict, retrying admission once")
		appt, err = s.tryCreate(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("staff_id", appt.StaffID.String()).
		Str("date", appt.Date.Format("2006-01-02")).
		Str("window", fmt.Sprintf("%s-%s", appt.Start, appt.End)).
		Str("status", string(appt.Status)).
		Msg("appointment created")
	return appt, nil
}

func (s *Service) tryCreate(ctx context.Context, req CreateRequest) (*Appointment, error) {
	date := normalizeDate(req.Date)
	var created *Appointment

	err := s.appointments.Serialize(ctx, req.StaffID, date, func(txCtx context.Context) error {
		adm, err := s.admit(txCtx, req.StaffID, req.ServiceID, date, req.Start, uuid.Nil, false)
		if err != nil {
			return err
		}

		now := s.now()
		appt := &Appointment{
			ID:            uuid.New(),
			StaffID:       req.StaffID,
			ServiceID:     req.ServiceID,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			CustomerEmail: strings.TrimSpace(req.CustomerEmail),
			Date:          date,
			Start:         req.Start,
			End:           adm.end,
			Status:        StatusPending,
			TotalPrice:    adm.service.Price,
			Notes:         req.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if adm.policy.AutoConfirm {
			appt.Status = StatusConfirmed
			t := now
			appt.ConfirmedAt = &t
		}

		if err := s.appointments.Insert(txCtx, appt); err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// admit runs the admission sequence: tenant active, staff and service
// resolvable and active, horizon, day schedule, working hours, conflict.
// Each step short-circuits. excludeID removes the caller's own appointment
// from the conflict set on reschedule; rescheduling relaxes the upper
// horizon bound.
func (s *Service) admit(ctx context.Context, staffID, serviceID uuid.UUID, date time.Time, start timeofday.TimeOfDay, excludeID uuid.UUID, reschedule bool) (*admission, error) {
	policy, err := s.policies.PolicyFor(ctx)
	if err != nil {
		return nil, err
	}
	if !policy.Active {
		return nil, apperr.BusinessRule("tenant is not accepting bookings")
	}

	staff, err := s.schedules.StaffInfo(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if !staff.Active {
		return nil, apperr.BusinessRule("staff member is not active")
	}

	svc, err := s.services.ServiceInfo(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, apperr.BusinessRule("service is not active")
	}

	today := normalizeDate(s.now())
	if date.Before(today) {
		return nil, apperr.BusinessRule("cannot book a date in the past")
	}
	if !reschedule {
		horizon := today.AddDate(0, 0, policy.AdvanceBookingDays)
		if date.After(horizon) {
			return nil, apperr.Newf(apperr.KindBusinessRule,
				"bookings are limited to %d days in advance", policy.AdvanceBookingDays)
		}
	}

	day, err := s.schedules.DaySchedule(ctx, staffID, dayOfWeek(date))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.BusinessRule("staff member has no schedule for that day")
		}
		return nil, err
	}
	if !day.Available {
		return nil, apperr.BusinessRule("staff member does not work on that day")
	}

	if start < day.Start || start >= day.End {
		return nil, apperr.Newf(apperr.KindBusinessRule,
			"start time is outside working hours %s-%s", day.Start, day.End)
	}

	end := start.Add(svc.DurationMinutes)
	if end > day.End {
		return nil, apperr.Newf(apperr.KindBusinessRule,
			"appointment would run past working hours, which end at %s", day.End)
	}

	booked, err := s.activeWindows(ctx, staffID, date, excludeID)
	if err != nil {
		return nil, err
	}
	if HasConflict(booked, Window{Start: start, End: end}) {
		return nil, apperr.Conflict("slot is already taken")
	}

	return &admission{policy: policy, staff: staff, service: svc, day: day, end: end}, nil
}

func (s *Service) activeWindows(ctx context.Context, staffID uuid.UUID, date time.Time, excludeID uuid.UUID) ([]Window, error) {
	active, err := s.appointments.FindActive(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(active))
	for _, aw := range active {
		if aw.ID == excludeID {
			continue
		}
		windows = append(windows, aw.Window)
	}
	return windows, nil
}

// Get returns one appointment by id within the caller's tenant.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateRequest patches mutable appointment fields.
type UpdateRequest struct {
	CustomerName *string
	Notes        *string
}

// Update patches customer name and notes on a non-terminal appointment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, apperr.Newf(apperr.KindBusinessRule,
			"appointment is %s and can no longer be updated", appt.Status)
	}

	if req.CustomerName != nil {
		appt.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}
	appt.UpdatedAt = s.now()

	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Reschedule moves a non-terminal appointment to a new date and start time.
// The full admission check re-runs against the new window with the
// appointment's own booking excluded from the conflict set; only the lower
// horizon bound applies. Status is unchanged.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time, newStart timeofday.TimeOfDay, reason string) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, apperr.Newf(apperr.KindBusinessRule,
			"appointment is %s and can no longer be rescheduled", appt.Status)
	}

	date := normalizeDate(newDate)
	err = s.appointments.Serialize(ctx, appt.StaffID, date, func(txCtx context.Context) error {
		adm, err := s.admit(txCtx, appt.StaffID, appt.ServiceID, date, newStart, appt.ID, true)
		if err != nil {
			return err
		}

		appt.Date = date
		appt.Start = newStart
		appt.End = adm.end
		appt.UpdatedAt = s.now()
		if reason != "" {
			appt.AppendNote(fmt.Sprintf("[rescheduled: %s]", reason))
		}
		return s.appointments.Update(txCtx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("date", appt.Date.Format("2006-01-02")).
		Str("window", fmt.Sprintf("%s-%s", appt.Start, appt.End)).
		Msg("appointment rescheduled")
	return appt, nil
}

// Confirm transitions PENDING to CONFIRMED. Owner/manager only.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, true, func(a *Appointment) error {
		return a.Confirm(s.now())
	})
}

// Complete transitions an active appointment to COMPLETED. Owner/manager only.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, true, func(a *Appointment) error {
		return a.Complete(s.now())
	})
}

// Cancel transitions a non-terminal appointment to CANCELLED. Customers may
// cancel their own bookings, so no role is required.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	return s.transition(ctx, id, false, func(a *Appointment) error {
		return a.Cancel(s.now(), reason)
	})
}

// MarkNoShow transitions an active appointment to NO_SHOW. Owner/manager only.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, true, func(a *Appointment) error {
		return a.MarkNoShow()
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, privileged bool, apply func(*Appointment) error) (*Appointment, error) {
	if privileged && !auth.HasRole(ctx, auth.RoleAdmin, auth.RoleManager) {
		return nil, apperr.AccessDenied("owner or manager role required")
	}

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(appt); err != nil {
		return nil, err
	}
	appt.UpdatedAt = s.now()
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("status", string(appt.Status)).
		Msg("appointment transitioned")
	return appt, nil
}

// AvailableSlots returns the day's candidate windows for a staff member,
// labeled with availability. Slot length is the service duration when a
// service is given, otherwise the tenant's default slot duration. An
// unavailable day yields an empty list; a missing schedule entry is an
// error.
func (s *Service) AvailableSlots(ctx context.Context, staffID uuid.UUID, date time.Time, serviceID *uuid.UUID) ([]SlotView, error) {
	policy, err := s.policies.PolicyFor(ctx)
	if err != nil {
		return nil, err
	}
	if !policy.Active {
		return nil, apperr.BusinessRule("tenant is not accepting bookings")
	}

	if _, err := s.schedules.StaffInfo(ctx, staffID); err != nil {
		return nil, err
	}

	date = normalizeDate(date)
	day, err := s.schedules.DaySchedule(ctx, staffID, dayOfWeek(date))
	if err != nil {
		return nil, err
	}

	slotMinutes := policy.SlotDurationMinutes
	if serviceID != nil {
		svc, err := s.services.ServiceInfo(ctx, *serviceID)
		if err != nil {
			return nil, err
		}
		slotMinutes = svc.DurationMinutes
	}

	slots := ComputeSlots(day, slotMinutes)
	if len(slots) == 0 {
		return []SlotView{}, nil
	}

	booked, err := s.activeWindows(ctx, staffID, date, uuid.Nil)
	if err != nil {
		return nil, err
	}

	return NewSlotViews(MarkAvailability(slots, booked)), nil
}

// IsSlotAvailable reports whether a window of durationMinutes starting at
// start is free for the staff member on the date.
func (s *Service) IsSlotAvailable(ctx context.Context, staffID uuid.UUID, date time.Time, start timeofday.TimeOfDay, durationMinutes int) (bool, error) {
	booked, err := s.activeWindows(ctx, staffID, normalizeDate(date), uuid.Nil)
	if err != nil {
		return false, err
	}
	candidate := Window{Start: start, End: start.Add(durationMinutes)}
	return !HasConflict(booked, candidate), nil
}

// normalizeDate truncates a timestamp to its UTC calendar date.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
