package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/pagination"
)

// ActiveWindow is the slice of an appointment the conflict detector needs.
type ActiveWindow struct {
	ID     uuid.UUID
	Window Window
	Status Status
}

// StatusCounts aggregates appointments by status for statistics and the
// calendar view.
type StatusCounts struct {
	Total     int
	Pending   int
	Confirmed int
	Completed int
	Cancelled int
	NoShow    int

	// CompletedRevenue sums TotalPrice over COMPLETED appointments, in
	// minor currency units.
	CompletedRevenue int64
}

// AppointmentRepository is the transactional storage contract for the
// booking core. Implementations scope every query to the caller's tenant
// (the pgx implementation relies on the schema pinned to the context
// connection).
type AppointmentRepository interface {
	// Serialize runs fn while holding an exclusive per-(staff,date) lock in
	// a single transaction. The conflict check and the subsequent insert
	// both run inside fn so that two concurrent bookings for the same staff
	// and date cannot interleave between check and commit.
	Serialize(ctx context.Context, staffID uuid.UUID, date time.Time, fn func(ctx context.Context) error) error

	// FindActive returns the windows of PENDING and CONFIRMED appointments
	// for the staff member on the date.
	FindActive(ctx context.Context, staffID uuid.UUID, date time.Time) ([]ActiveWindow, error)

	// Insert persists a new appointment. A storage-level uniqueness
	// violation on the slot surfaces as a KindConflict error.
	Insert(ctx context.Context, a *Appointment) error

	Update(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error)
	ListByStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*Appointment, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Appointment, error)
	ListByCustomerPhone(ctx context.Context, phone string) ([]*Appointment, error)
	ListUpcomingByCustomerEmail(ctx context.Context, email string, from time.Time) ([]*Appointment, error)
	ListUpcoming(ctx context.Context, from time.Time, p pagination.Params) ([]*Appointment, int, error)
	List(ctx context.Context, filter ListFilter, p pagination.Params) ([]*Appointment, int, error)

	CountByStatus(ctx context.Context) (*StatusCounts, error)
	CountByStatusForStaff(ctx context.Context, staffID uuid.UUID) (*StatusCounts, error)
}

// PolicyProvider resolves the calling tenant's booking policy. The tenant
// is taken from the request context; the core never sees ambient tenant
// state.
type PolicyProvider interface {
	PolicyFor(ctx context.Context) (*Policy, error)
}

// ScheduleProvider exposes staff working hours to the booking core. A
// missing entry for the day reports KindNotFound; staff outside the calling
// tenant are indistinguishable from staff that do not exist.
type ScheduleProvider interface {
	StaffInfo(ctx context.Context, staffID uuid.UUID) (*StaffInfo, error)
	DaySchedule(ctx context.Context, staffID uuid.UUID, dayOfWeek int) (*DaySchedule, error)
}

// ServiceProvider exposes bookable services to the booking core.
type ServiceProvider interface {
	ServiceInfo(ctx context.Context, serviceID uuid.UUID) (*ServiceInfo, error)
}
