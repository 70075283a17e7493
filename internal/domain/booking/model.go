package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/pkg/timeofday"
)

// Status is an appointment's lifecycle state. PENDING and CONFIRMED are the
// active states that block competing bookings; COMPLETED, CANCELLED and
// NO_SHOW are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// Active reports whether the appointment still occupies its time window.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment is the central scheduling entity. End time and price are
// computed once at creation and frozen; reschedule is the only operation
// that rewrites the window. Rows are never deleted, cancellation is a
// status transition.
type Appointment struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	StaffID       uuid.UUID          `db:"staff_id" json:"staff_id"`
	ServiceID     uuid.UUID          `db:"service_id" json:"service_id"`
	CustomerName  string             `db:"customer_name" json:"customer_name"`
	CustomerPhone string             `db:"customer_phone" json:"customer_phone"`
	CustomerEmail string             `db:"customer_email" json:"customer_email,omitempty"`
	Date          time.Time          `db:"appointment_date" json:"appointment_date"`
	Start         timeofday.TimeOfDay `db:"start_minute" json:"start_time"`
	End           timeofday.TimeOfDay `db:"end_minute" json:"end_time"`
	Status        Status             `db:"status" json:"status"`
	TotalPrice    int64              `db:"total_price" json:"total_price"`
	Notes         string             `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
	ConfirmedAt   *time.Time         `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt   *time.Time         `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// Window returns the appointment's half-open time window.
func (a *Appointment) Window() Window {
	return Window{Start: a.Start, End: a.End}
}

// Confirm moves PENDING to CONFIRMED and stamps confirmed_at the first time
// it is reached.
func (a *Appointment) Confirm(now time.Time) error {
	if a.Status != StatusPending {
		return apperr.Newf(apperr.KindBusinessRule,
			"only pending appointments can be confirmed, current status is %s", a.Status)
	}
	a.Status = StatusConfirmed
	if a.ConfirmedAt == nil {
		t := now
		a.ConfirmedAt = &t
	}
	return nil
}

// Complete moves an active appointment to COMPLETED.
func (a *Appointment) Complete(now time.Time) error {
	if !a.Status.Active() {
		return apperr.Newf(apperr.KindBusinessRule,
			"only active appointments can be completed, current status is %s", a.Status)
	}
	a.Status = StatusCompleted
	if a.CompletedAt == nil {
		t := now
		a.CompletedAt = &t
	}
	return nil
}

// Cancel moves a non-terminal appointment to CANCELLED, stamps cancelled_at,
// and appends the reason to the notes when given.
func (a *Appointment) Cancel(now time.Time, reason string) error {
	if a.Status.Terminal() {
		return apperr.Newf(apperr.KindBusinessRule,
			"appointment is already %s", a.Status)
	}
	a.Status = StatusCancelled
	if a.CancelledAt == nil {
		t := now
		a.CancelledAt = &t
	}
	if reason != "" {
		a.AppendNote(fmt.Sprintf("[cancelled: %s]", reason))
	}
	return nil
}

// MarkNoShow moves an active appointment to NO_SHOW.
func (a *Appointment) MarkNoShow() error {
	if !a.Status.Active() {
		return apperr.Newf(apperr.KindBusinessRule,
			"only active appointments can be marked no-show, current status is %s", a.Status)
	}
	a.Status = StatusNoShow
	return nil
}

// AppendNote adds a line to the free-text notes.
func (a *Appointment) AppendNote(line string) {
	if a.Notes == "" {
		a.Notes = line
		return
	}
	a.Notes += "\n" + line
}

// DaySchedule is one weekly availability entry as seen by the booking core:
// the staff member's working window for a day of week (1=Monday..7=Sunday).
// Owned by staff management; read-only here.
type DaySchedule struct {
	DayOfWeek int                 `json:"day_of_week"`
	Start     timeofday.TimeOfDay `json:"start_time"`
	End       timeofday.TimeOfDay `json:"end_time"`
	Available bool                `json:"is_available"`
}

// Policy is the tenant's booking policy, snapshotted per request.
type Policy struct {
	SlotDurationMinutes int
	AdvanceBookingDays  int
	AutoConfirm         bool
	WorkingHoursStart   timeofday.TimeOfDay
	WorkingHoursEnd     timeofday.TimeOfDay
	Timezone            string
	Active              bool
	TenantName          string
}

// StaffInfo is the staff summary the booking core needs.
type StaffInfo struct {
	ID          uuid.UUID
	DisplayName string
	Active      bool
}

// ServiceInfo is the bookable-service summary the booking core needs.
// Price is in minor currency units.
type ServiceInfo struct {
	ID              uuid.UUID
	Name            string
	DurationMinutes int
	Price           int64
	Active          bool
}

// ISO weekday for a calendar date, 1=Monday..7=Sunday.
func dayOfWeek(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
