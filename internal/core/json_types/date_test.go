package json_types

import (
	"encoding/json"
	"testing"
)

func TestParseDateString(t *testing.T) {
	cases := []struct {
		input    string
		expected Date
		wantErr  bool
	}{
		{"2026-03-14", "2026-03-14", false},
		{"2026-03-14T09:30:00", "2026-03-14", false},
		{"2026-03-14T09:30:00Z", "2026-03-14", false},
		{"2026-03-14T09:30:00+03:00", "2026-03-14", false},
		{"14.03.2026", "", true},
		{"not-a-date", "", true},
	}

	for _, tc := range cases {
		parsed, err := ParseDateString(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDateString(%q): expected error, got %q", tc.input, parsed)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDateString(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if parsed != tc.expected {
			t.Errorf("ParseDateString(%q) = %q, expected %q", tc.input, parsed, tc.expected)
		}
	}
}

func TestDateUnmarshalJSON(t *testing.T) {
	var parsed Date
	if err := json.Unmarshal([]byte(`"2026-03-14T10:00:00Z"`), &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != "2026-03-14" {
		t.Errorf("unmarshalled %q, expected 2026-03-14", parsed)
	}

	parsed = ""
	if err := json.Unmarshal([]byte(`null`), &parsed); err != nil {
		t.Fatalf("null should not error: %v", err)
	}
	if !parsed.IsZero() {
		t.Errorf("null should leave the date zero, got %q", parsed)
	}
}
