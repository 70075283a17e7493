package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/timeofday"
)

// Staff is a bookable staff member within a tenant.
type Staff struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleEntry is one day of a staff member's weekly working hours.
// DayOfWeek is ISO: 1=Monday..7=Sunday. At most one entry per (staff, day).
type ScheduleEntry struct {
	ID        uuid.UUID           `json:"id"`
	StaffID   uuid.UUID           `json:"staff_id"`
	DayOfWeek int                 `json:"day_of_week"`
	Start     timeofday.TimeOfDay `json:"start_time"`
	End       timeofday.TimeOfDay `json:"end_time"`
	Available bool                `json:"is_available"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
