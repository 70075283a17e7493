package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/timeofday"
)

// Tenant is one business on the platform. The row lives in the shared
// schema; all of the tenant's operational data lives in its own schema,
// named from the slug.
type Tenant struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Address string    `json:"address,omitempty"`

	// Booking policy. Timezone is a display label; all times are naive
	// wall-clock values in the tenant's local time.
	Timezone            string              `json:"timezone"`
	SlotDurationMinutes int                 `json:"slot_duration_minutes"`
	AdvanceBookingDays  int                 `json:"advance_booking_days"`
	AutoConfirm         bool                `json:"auto_confirm"`
	WorkingHoursStart   timeofday.TimeOfDay `json:"working_hours_start"`
	WorkingHoursEnd     timeofday.TimeOfDay `json:"working_hours_end"`

	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Policy defaults for newly provisioned tenants.
const (
	DefaultSlotDuration = 30
	DefaultAdvanceDays  = 30
	DefaultWorkdayStart = 9 * 60
	DefaultWorkdayEnd   = 18 * 60
	DefaultTimezone     = "UTC"
)
