package timeofday

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"09:60", 0, true},
		{"garbage", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "12:30", "23:59"} {
		parsed := MustParse(s)
		if parsed.String() != s {
			t.Errorf("round trip %q -> %q", s, parsed.String())
		}
	}
}

func TestAdd(t *testing.T) {
	start := MustParse("16:30")
	end := start.Add(60)
	if end.String() != "17:30" {
		t.Errorf("16:30 + 60m = %s, want 17:30", end)
	}
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(MustParse("09:30"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"09:30"` {
		t.Errorf("marshal = %s, want \"09:30\"", b)
	}

	var parsed TimeOfDay
	if err := json.Unmarshal([]byte(`"17:45"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed != MustParse("17:45") {
		t.Errorf("unmarshal = %v", parsed)
	}
}
