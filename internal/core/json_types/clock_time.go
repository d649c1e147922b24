package json_types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a wall-clock time of day in "HH:MM" form.
// Lexicographic comparison of the canonical form matches chronological order,
// so values can be compared directly and used as-is in store range filters.
type ClockTime string

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(fmt.Sprintf("%02d:%02d", hour, minute))
}

func ParseClockTime(str string) (ClockTime, error) {
	parts := strings.Split(str, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("failed to parse clock time %q: expected HH:MM", str)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("failed to parse clock time %q: invalid hour", str)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("failed to parse clock time %q: invalid minute", str)
	}

	return NewClockTime(hour, minute), nil
}

func (t ClockTime) IsZero() bool {
	return t == ""
}

func (t ClockTime) Before(other ClockTime) bool {
	return t < other
}

// Minutes returns the offset from midnight in minutes.
func (t ClockTime) Minutes() int {
	parts := strings.Split(string(t), ":")
	if len(parts) != 2 {
		return 0
	}
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	return hour*60 + minute
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse clock time: %v", err)
	}

	parsed, err := ParseClockTime(str)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}
