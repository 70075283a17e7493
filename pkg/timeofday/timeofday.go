// Package timeofday provides a wall-clock minute-of-day value used for
// working hours and appointment windows. Appointments never cross midnight,
// so minutes since midnight is the whole representation; dates and timezone
// labels travel separately.
package timeofday

import (
	"encoding/json"
	"fmt"
)

// TimeOfDay is minutes since midnight, 0..1440. Ordering follows the
// integer value, so plain < and > comparisons are window comparisons.
type TimeOfDay int

// MinutesPerDay bounds a TimeOfDay. The value 1440 itself is a valid window
// end (a day may work until 24:00).
const MinutesPerDay = 1440

// Parse reads "HH:MM".
func Parse(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || h*60+m > MinutesPerDay {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustParse parses s and panics on failure. Intended for constants in tests.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns the time shifted by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// Valid reports whether the value lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// Minutes returns the raw minute count for persistence.
func (t TimeOfDay) Minutes() int { return int(t) }

// MarshalJSON encodes as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
