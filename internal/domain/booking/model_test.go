package booking

import (
	"strings"
	"testing"
	"time"
)

func newTestAppointment(status Status) *Appointment {
	return &Appointment{
		Status: status,
		Notes:  "",
	}
}

func TestStatusPredicates(t *testing.T) {
	active := []Status{StatusPending, StatusConfirmed}
	terminal := []Status{StatusCompleted, StatusCancelled, StatusNoShow}

	for _, s := range active {
		if !s.Active() || s.Terminal() {
			t.Errorf("%s should be active and not terminal", s)
		}
	}
	for _, s := range terminal {
		if s.Active() || !s.Terminal() {
			t.Errorf("%s should be terminal and not active", s)
		}
	}
	if Status("BOGUS").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestConfirmTransition(t *testing.T) {
	now := time.Now()
	a := newTestAppointment(StatusPending)

	if err := a.Confirm(now); err != nil {
		t.Fatalf("confirm pending: %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", a.Status)
	}
	if a.ConfirmedAt == nil || !a.ConfirmedAt.Equal(now) {
		t.Error("confirmed_at not stamped")
	}

	// Already confirmed, confirming again is a business rule violation.
	if err := a.Confirm(now.Add(time.Hour)); err == nil {
		t.Error("expected error confirming a confirmed appointment")
	}
	if !a.ConfirmedAt.Equal(now) {
		t.Error("confirmed_at must not be restamped")
	}
}

func TestCompleteTransition(t *testing.T) {
	now := time.Now()

	for _, from := range []Status{StatusPending, StatusConfirmed} {
		a := newTestAppointment(from)
		if err := a.Complete(now); err != nil {
			t.Errorf("complete from %s: %v", from, err)
		}
		if a.Status != StatusCompleted || a.CompletedAt == nil {
			t.Errorf("complete from %s left status=%s", from, a.Status)
		}
	}

	for _, from := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		a := newTestAppointment(from)
		if err := a.Complete(now); err == nil {
			t.Errorf("expected error completing from %s", from)
		}
	}
}

func TestCancelTransition(t *testing.T) {
	now := time.Now()
	a := newTestAppointment(StatusConfirmed)
	a.Notes = "first visit"

	if err := a.Cancel(now, "customer called"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if a.Status != StatusCancelled || a.CancelledAt == nil {
		t.Error("cancel did not stamp status and time")
	}
	if !strings.Contains(a.Notes, "[cancelled: customer called]") {
		t.Errorf("reason not appended to notes: %q", a.Notes)
	}
	if !strings.HasPrefix(a.Notes, "first visit") {
		t.Errorf("existing notes lost: %q", a.Notes)
	}

	for _, from := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		b := newTestAppointment(from)
		if err := b.Cancel(now, ""); err == nil {
			t.Errorf("expected error cancelling from %s", from)
		}
	}
}

func TestNoShowTransition(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusConfirmed} {
		a := newTestAppointment(from)
		if err := a.MarkNoShow(); err != nil {
			t.Errorf("no-show from %s: %v", from, err)
		}
		if a.Status != StatusNoShow {
			t.Errorf("status = %s, want NO_SHOW", a.Status)
		}
	}

	a := newTestAppointment(StatusCompleted)
	if err := a.MarkNoShow(); err == nil {
		t.Error("expected error marking a completed appointment no-show")
	}
}

func TestDayOfWeek(t *testing.T) {
	// 2026-01-05 is a Monday, 2026-01-11 a Sunday.
	mon := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)

	if got := dayOfWeek(mon); got != 1 {
		t.Errorf("monday = %d, want 1", got)
	}
	if got := dayOfWeek(sun); got != 7 {
		t.Errorf("sunday = %d, want 7", got)
	}
}
