package json_types

import (
	"encoding/json"
	"testing"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		input    string
		expected ClockTime
		wantErr  bool
	}{
		{"09:00", "09:00", false},
		{"9:00", "09:00", false},
		{"23:59", "23:59", false},
		{"00:00", "00:00", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"12", "", true},
		{"12:00:00", "", true},
		{"ab:cd", "", true},
	}

	for _, tc := range cases {
		parsed, err := ParseClockTime(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q): expected error, got %q", tc.input, parsed)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if parsed != tc.expected {
			t.Errorf("ParseClockTime(%q) = %q, expected %q", tc.input, parsed, tc.expected)
		}
	}
}

func TestClockTimeBefore(t *testing.T) {
	if !ClockTime("09:00").Before("17:00") {
		t.Error("09:00 should be before 17:00")
	}
	if ClockTime("17:00").Before("09:00") {
		t.Error("17:00 should not be before 09:00")
	}
	if ClockTime("12:00").Before("12:00") {
		t.Error("a time should not be before itself")
	}
	// Single-digit hours must normalize, otherwise "9:00" sorts after "17:00".
	parsed, err := ParseClockTime("9:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Before("17:00") {
		t.Errorf("%q should be before 17:00", parsed)
	}
}

func TestClockTimeMinutes(t *testing.T) {
	if got := ClockTime("09:30").Minutes(); got != 570 {
		t.Errorf("Minutes() = %d, expected 570", got)
	}
	if got := ClockTime("00:00").Minutes(); got != 0 {
		t.Errorf("Minutes() = %d, expected 0", got)
	}
}

func TestClockTimeUnmarshalJSON(t *testing.T) {
	var parsed ClockTime
	if err := json.Unmarshal([]byte(`"08:15"`), &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != "08:15" {
		t.Errorf("unmarshalled %q, expected 08:15", parsed)
	}

	if err := json.Unmarshal([]byte(`"25:00"`), &parsed); err == nil {
		t.Error("expected error for out-of-range hour")
	}
}
