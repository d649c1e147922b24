package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

func parseDate(str string) (time.Time, error) {
	parsedDate, err := time.Parse(time.RFC3339, str)
	// Callers send full timestamps, timestamps without a timezone or bare dates,
	// depending on which form the UI serialized. All of them normalize to a date.
	if err != nil {
		parsedDate, err = time.Parse("2006-01-02T15:04:05", str)
		if err != nil {
			parsedDate, err = time.Parse(dateLayout, str)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
			}
		}
	}

	return parsedDate, nil
}

// Date is a calendar date without a time component. Persisted and serialized
// as "YYYY-MM-DD"; any incoming time-of-day information is dropped.
type Date string

func NewDate(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func ParseDateString(str string) (Date, error) {
	parsed, err := parseDate(str)
	if err != nil {
		return "", err
	}
	return NewDate(parsed), nil
}

func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) Time() (time.Time, error) {
	return time.Parse(dateLayout, string(d))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse date: %v", err)
	}

	parsed, err := ParseDateString(str)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}
