package booking

import (
	"github.com/slotify/slotify/pkg/timeofday"
)

// Window is a half-open time interval [Start, End) within one day.
type Window struct {
	Start timeofday.TimeOfDay `json:"start_time"`
	End   timeofday.TimeOfDay `json:"end_time"`
}

// Overlaps reports whether two half-open windows intersect. Windows that
// merely touch (one ends exactly when the other starts) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && w.End > o.Start
}

// Slot is a candidate window labeled with its availability.
type Slot struct {
	Window
	Available bool `json:"available"`
}

// ComputeSlots generates the candidate windows for one day: consecutive,
// non-overlapping windows of slotMinutes starting at the day's start time,
// stopping before any window would run past the day's end. A window ending
// exactly at the day's end is included. An unavailable day yields no slots.
//
// Pure function of its inputs: callers may regenerate the sequence at will.
func ComputeSlots(day *DaySchedule, slotMinutes int) []Window {
	if day == nil || !day.Available || slotMinutes <= 0 {
		return nil
	}

	var slots []Window
	for start := day.Start; start.Add(slotMinutes) <= day.End; start = start.Add(slotMinutes) {
		slots = append(slots, Window{Start: start, End: start.Add(slotMinutes)})
	}
	return slots
}

// HasConflict reports whether candidate overlaps any of the booked windows.
// Short-circuits on the first hit.
func HasConflict(booked []Window, candidate Window) bool {
	for _, w := range booked {
		if candidate.Overlaps(w) {
			return true
		}
	}
	return false
}

// MarkAvailability labels each candidate slot against the booked windows.
// An empty booked set marks every slot available. Neither input is mutated.
func MarkAvailability(slots []Window, booked []Window) []Slot {
	marked := make([]Slot, 0, len(slots))
	for _, s := range slots {
		marked = append(marked, Slot{Window: s, Available: !HasConflict(booked, s)})
	}
	return marked
}
