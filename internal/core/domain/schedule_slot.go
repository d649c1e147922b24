package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/json_types"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var daysOfWeek = map[DayOfWeek]struct{}{
	Monday: {}, Tuesday: {}, Wednesday: {}, Thursday: {},
	Friday: {}, Saturday: {}, Sunday: {},
}

func ParseDayOfWeek(str string) (DayOfWeek, bool) {
	candidate := DayOfWeek(strings.ToUpper(strings.TrimSpace(str)))
	if _, ok := daysOfWeek[candidate]; ok {
		return candidate, true
	}
	return "", false
}

const (
	DefaultSlotDuration       = 30
	DefaultMaxPatientsPerSlot = 1
)

// ScheduleSlot is one bookable time interval belonging to a doctor, either
// weekly-recurring (DayOfWeek set) or tied to one calendar date (Date set).
// Exactly one of the two is ever set.
type ScheduleSlot struct {
	ID                 uuid.UUID            `json:"id"`
	DoctorID           uuid.UUID            `json:"doctorId"`
	DayOfWeek          DayOfWeek            `json:"dayOfWeek,omitempty"`
	Date               json_types.Date      `json:"date,omitempty"`
	StartTime          json_types.ClockTime `json:"startTime"`
	EndTime            json_types.ClockTime `json:"endTime"`
	SlotDuration       int                  `json:"slotDuration"`
	MaxPatientsPerSlot int                  `json:"maxPatientsPerSlot"`
	BreakStart         json_types.ClockTime `json:"breakStart,omitempty"`
	BreakEnd           json_types.ClockTime `json:"breakEnd,omitempty"`
	IsRecurring        bool                 `json:"isRecurring"`
	IsActive           bool                 `json:"isActive"`
	Notes              string               `json:"notes,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`

	// Version backs the optimistic-concurrency check on updates.
	Version int64 `json:"-"`
}

// SlotDayKey identifies the group of slots a conflict check runs against:
// one doctor's active slots sharing the same weekday or the same date.
type SlotDayKey struct {
	DayOfWeek DayOfWeek
	Date      json_types.Date
}

func (s ScheduleSlot) DayKey() SlotDayKey {
	return SlotDayKey{DayOfWeek: s.DayOfWeek, Date: s.Date}
}

// Overlaps applies the half-open interval test: [a.start, a.end) and
// [b.start, b.end) overlap iff a.start < b.end && a.end > b.start.
// Back-to-back slots sharing a boundary do not overlap.
func (s ScheduleSlot) Overlaps(other ScheduleSlot) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}

func (s ScheduleSlot) Validate() error {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return NewValidationError("startTime and endTime are required")
	}
	if !s.StartTime.Before(s.EndTime) {
		return NewValidationError("startTime %s must be before endTime %s", s.StartTime, s.EndTime)
	}

	hasDay := s.DayOfWeek != ""
	hasDate := !s.Date.IsZero()
	if hasDay == hasDate {
		return NewValidationError("exactly one of dayOfWeek or date must be set")
	}

	if s.BreakStart.IsZero() != s.BreakEnd.IsZero() {
		return NewValidationError("breakStart and breakEnd must be set together")
	}
	if !s.BreakStart.IsZero() {
		if !s.BreakStart.Before(s.BreakEnd) {
			return NewValidationError("breakStart %s must be before breakEnd %s", s.BreakStart, s.BreakEnd)
		}
		if s.BreakStart.Before(s.StartTime) || s.EndTime.Before(s.BreakEnd) {
			return NewValidationError("break interval must lie within the slot interval")
		}
	}

	if s.SlotDuration < 0 {
		return NewValidationError("slotDuration must not be negative")
	}
	if s.MaxPatientsPerSlot < 0 {
		return NewValidationError("maxPatientsPerSlot must not be negative")
	}

	return nil
}

// ApplyDefaults fills the persisted defaults for fields the caller omitted.
func (s *ScheduleSlot) ApplyDefaults() {
	if s.SlotDuration == 0 {
		s.SlotDuration = DefaultSlotDuration
	}
	if s.MaxPatientsPerSlot == 0 {
		s.MaxPatientsPerSlot = DefaultMaxPatientsPerSlot
	}
	// A weekday slot repeats weekly by definition.
	if s.DayOfWeek != "" {
		s.IsRecurring = true
	}
}

// ScheduleSlotPatch is a partial update; nil fields are left untouched.
type ScheduleSlotPatch struct {
	DayOfWeek          *DayOfWeek
	Date               *json_types.Date
	StartTime          *json_types.ClockTime
	EndTime            *json_types.ClockTime
	SlotDuration       *int
	MaxPatientsPerSlot *int
	BreakStart         *json_types.ClockTime
	BreakEnd           *json_types.ClockTime
	IsActive           *bool
	Notes              *string
}

// ChangesTiming reports whether applying the patch can move the slot's
// interval or day key, which is what forces conflict re-detection.
func (p ScheduleSlotPatch) ChangesTiming() bool {
	return p.DayOfWeek != nil || p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

// Apply mutates the slot in place. Switching the day key clears the other
// side so the one-of invariant survives a recurring/one-off flip.
func (s *ScheduleSlot) Apply(p ScheduleSlotPatch) {
	if p.DayOfWeek != nil {
		s.DayOfWeek = *p.DayOfWeek
		s.Date = ""
		s.IsRecurring = true
	}
	if p.Date != nil {
		s.Date = *p.Date
		s.DayOfWeek = ""
		s.IsRecurring = false
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.SlotDuration != nil {
		s.SlotDuration = *p.SlotDuration
	}
	if p.MaxPatientsPerSlot != nil {
		s.MaxPatientsPerSlot = *p.MaxPatientsPerSlot
	}
	if p.BreakStart != nil {
		s.BreakStart = *p.BreakStart
	}
	if p.BreakEnd != nil {
		s.BreakEnd = *p.BreakEnd
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
}
