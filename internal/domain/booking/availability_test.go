package booking

import (
	"testing"

	"github.com/slotify/slotify/pkg/timeofday"
)

func tod(t *testing.T, s string) timeofday.TimeOfDay {
	t.Helper()
	v, err := timeofday.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func win(t *testing.T, start, end string) Window {
	t.Helper()
	return Window{Start: tod(t, start), End: tod(t, end)}
}

func TestWindowOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"disjoint", win(t, "09:00", "10:00"), win(t, "11:00", "12:00"), false},
		{"touching back to back", win(t, "09:00", "10:00"), win(t, "10:00", "11:00"), false},
		{"partial overlap", win(t, "09:00", "10:00"), win(t, "09:30", "10:30"), true},
		{"containment", win(t, "09:00", "12:00"), win(t, "10:00", "11:00"), true},
		{"identical", win(t, "09:00", "10:00"), win(t, "09:00", "10:00"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("reverse Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeSlots(t *testing.T) {
	day := &DaySchedule{DayOfWeek: 1, Start: tod(t, "09:00"), End: tod(t, "18:00"), Available: true}

	slots := ComputeSlots(day, 30)
	if len(slots) != 18 {
		t.Fatalf("expected 18 slots for 09:00-18:00 at 30min, got %d", len(slots))
	}
	if slots[0].Start != tod(t, "09:00") || slots[0].End != tod(t, "09:30") {
		t.Errorf("first slot = %s-%s", slots[0].Start, slots[0].End)
	}
	last := slots[len(slots)-1]
	if last.Start != tod(t, "17:30") || last.End != tod(t, "18:00") {
		t.Errorf("last slot = %s-%s", last.Start, last.End)
	}
}

func TestComputeSlots_DropsPartialTail(t *testing.T) {
	day := &DaySchedule{DayOfWeek: 1, Start: tod(t, "09:00"), End: tod(t, "17:00"), Available: true}

	slots := ComputeSlots(day, 45)
	for _, s := range slots {
		if s.End > day.End {
			t.Errorf("slot %s-%s runs past end of day", s.Start, s.End)
		}
	}
	last := slots[len(slots)-1]
	if last.End != tod(t, "16:30") {
		t.Errorf("last slot ends %s, want 16:30", last.End)
	}
}

func TestComputeSlots_Unavailable(t *testing.T) {
	day := &DaySchedule{DayOfWeek: 6, Start: tod(t, "09:00"), End: tod(t, "18:00"), Available: false}
	if slots := ComputeSlots(day, 30); slots != nil {
		t.Errorf("expected no slots on an unavailable day, got %d", len(slots))
	}
	if slots := ComputeSlots(nil, 30); slots != nil {
		t.Errorf("expected no slots for nil schedule")
	}
	if slots := ComputeSlots(&DaySchedule{Start: tod(t, "09:00"), End: tod(t, "18:00"), Available: true}, 0); slots != nil {
		t.Errorf("expected no slots for zero duration")
	}
}

func TestHasConflict(t *testing.T) {
	booked := []Window{
		win(t, "09:00", "09:30"),
		win(t, "11:00", "12:00"),
	}

	if HasConflict(booked, win(t, "09:30", "10:00")) {
		t.Error("back-to-back window should not conflict")
	}
	if !HasConflict(booked, win(t, "11:30", "12:30")) {
		t.Error("overlapping window should conflict")
	}
	if HasConflict(nil, win(t, "09:00", "10:00")) {
		t.Error("empty booked set should never conflict")
	}
}

func TestMarkAvailability(t *testing.T) {
	day := &DaySchedule{DayOfWeek: 1, Start: tod(t, "09:00"), End: tod(t, "12:00"), Available: true}
	booked := []Window{win(t, "10:00", "11:00")}

	slots := MarkAvailability(ComputeSlots(day, 30), booked)
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}

	wantAvailable := map[string]bool{
		"09:00": true, "09:30": true,
		"10:00": false, "10:30": false,
		"11:00": true, "11:30": true,
	}
	for _, s := range slots {
		want, ok := wantAvailable[s.Start.String()]
		if !ok {
			t.Fatalf("unexpected slot start %s", s.Start)
		}
		if s.Available != want {
			t.Errorf("slot %s available = %v, want %v", s.Start, s.Available, want)
		}
	}
}

func TestMarkAvailability_PartialOverlapBlocks(t *testing.T) {
	day := &DaySchedule{DayOfWeek: 1, Start: tod(t, "09:00"), End: tod(t, "11:00"), Available: true}
	// A 45-minute booking straddling two 30-minute slots blocks both.
	booked := []Window{win(t, "09:15", "10:00")}

	slots := MarkAvailability(ComputeSlots(day, 30), booked)
	if slots[0].Available {
		t.Error("09:00 slot should be blocked by 09:15-10:00 booking")
	}
	if slots[1].Available {
		t.Error("09:30 slot should be blocked by 09:15-10:00 booking")
	}
	if !slots[2].Available {
		t.Error("10:00 slot should be free")
	}
}
