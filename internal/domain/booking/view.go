package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slotify/slotify/pkg/timeofday"
)

// statusDisplay maps each status to its presentation label. The Status
// values themselves stay bare identifiers; rendering concerns live here.
var statusDisplay = map[Status]string{
	StatusPending:   "Pending confirmation",
	StatusConfirmed: "Confirmed",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
	StatusNoShow:    "No show",
}

// DisplayStatus returns the human-readable label for a status.
func DisplayStatus(s Status) string {
	if label, ok := statusDisplay[s]; ok {
		return label
	}
	return string(s)
}

// DisplayTime renders a time of day on a 12-hour clock for customer-facing
// slot listings.
func DisplayTime(t timeofday.TimeOfDay) string {
	h := t.Minutes() / 60
	m := t.Minutes() % 60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// AppointmentView is the flat wire representation of an appointment with
// tenant, staff, and service names denormalized in. Unresolvable names
// render empty rather than failing the whole response.
type AppointmentView struct {
	ID            uuid.UUID           `json:"id"`
	TenantName    string              `json:"tenant_name,omitempty"`
	StaffID       uuid.UUID           `json:"staff_id"`
	StaffName     string              `json:"staff_name"`
	ServiceID     uuid.UUID           `json:"service_id"`
	ServiceName   string              `json:"service_name"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	CustomerEmail string              `json:"customer_email,omitempty"`
	Date          string              `json:"date"`
	StartTime     timeofday.TimeOfDay `json:"start_time"`
	EndTime       timeofday.TimeOfDay `json:"end_time"`
	Status        Status              `json:"status"`
	StatusDisplay string              `json:"status_display"`
	TotalPrice    int64               `json:"total_price"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
}

func NewAppointmentView(a *Appointment, tenantName, staffName, serviceName string) *AppointmentView {
	return &AppointmentView{
		ID:            a.ID,
		TenantName:    tenantName,
		StaffID:       a.StaffID,
		StaffName:     staffName,
		ServiceID:     a.ServiceID,
		ServiceName:   serviceName,
		CustomerName:  a.CustomerName,
		CustomerPhone: a.CustomerPhone,
		CustomerEmail: a.CustomerEmail,
		Date:          a.Date.Format("2006-01-02"),
		StartTime:     a.Start,
		EndTime:       a.End,
		Status:        a.Status,
		StatusDisplay: DisplayStatus(a.Status),
		TotalPrice:    a.TotalPrice,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		ConfirmedAt:   a.ConfirmedAt,
		CompletedAt:   a.CompletedAt,
		CancelledAt:   a.CancelledAt,
	}
}

// SlotView is one candidate window in an availability listing.
type SlotView struct {
	StartTime   timeofday.TimeOfDay `json:"start_time"`
	EndTime     timeofday.TimeOfDay `json:"end_time"`
	Available   bool                `json:"available"`
	DisplayTime string              `json:"display_time"`
}

func NewSlotViews(slots []Slot) []SlotView {
	out := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotView{
			StartTime:   s.Start,
			EndTime:     s.End,
			Available:   s.Available,
			DisplayTime: DisplayTime(s.Start),
		})
	}
	return out
}

// CalendarDay is one day of the calendar aggregate.
type CalendarDay struct {
	Date      string `json:"date"`
	DayName   string `json:"day_name"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Confirmed int    `json:"confirmed"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
	NoShow    int    `json:"no_show"`
}

func NewCalendarDay(date time.Time, appts []*Appointment) CalendarDay {
	day := CalendarDay{
		Date:    date.Format("2006-01-02"),
		DayName: date.Weekday().String(),
	}
	for _, a := range appts {
		day.Total++
		switch a.Status {
		case StatusPending:
			day.Pending++
		case StatusConfirmed:
			day.Confirmed++
		case StatusCompleted:
			day.Completed++
		case StatusCancelled:
			day.Cancelled++
		case StatusNoShow:
			day.NoShow++
		}
	}
	return day
}

// Statistics is the tenant- or staff-level appointment summary.
type Statistics struct {
	Total            int     `json:"total"`
	Pending          int     `json:"pending"`
	Confirmed        int     `json:"confirmed"`
	Completed        int     `json:"completed"`
	Cancelled        int     `json:"cancelled"`
	NoShow           int     `json:"no_show"`
	CompletedRevenue int64   `json:"completed_revenue"`
	CompletionRate   float64 `json:"completion_rate"`
}

func NewStatistics(c *StatusCounts) *Statistics {
	st := &Statistics{
		Total:            c.Total,
		Pending:          c.Pending,
		Confirmed:        c.Confirmed,
		Completed:        c.Completed,
		Cancelled:        c.Cancelled,
		NoShow:           c.NoShow,
		CompletedRevenue: c.CompletedRevenue,
	}
	if finished := c.Completed + c.Cancelled + c.NoShow; finished > 0 {
		st.CompletionRate = float64(c.Completed) / float64(finished)
	}
	return st
}
