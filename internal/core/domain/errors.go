package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindConflict   ErrorKind = "schedule_conflict"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindForbidden  ErrorKind = "forbidden"
	ErrorKindCapacity   ErrorKind = "capacity_exceeded"
	ErrorKindTransient  ErrorKind = "transient"
)

// Error is the structured outcome of a rejected operation. Kind distinguishes
// client-fixable conditions from infrastructure failures; Details carries the
// context a caller needs to disambiguate (e.g. the conflicting slot).
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string, id interface{}) *Error {
	return &Error{
		Kind:    ErrorKindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]interface{}{"resource": resource, "id": fmt.Sprintf("%v", id)},
	}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: ErrorKindForbidden, Message: message}
}

func NewCapacityExceededError(technicianID interface{}, workload, capacity int) *Error {
	return &Error{
		Kind:    ErrorKindCapacity,
		Message: "technician is at full capacity",
		Details: map[string]interface{}{
			"technicianId":       fmt.Sprintf("%v", technicianID),
			"currentWorkload":    workload,
			"maxConcurrentTests": capacity,
		},
	}
}

// NewScheduleConflictError reports the offending slot so the caller can
// disambiguate which existing interval blocked the write.
func NewScheduleConflictError(conflicting ScheduleSlot) *Error {
	details := map[string]interface{}{
		"conflictingSlotId": conflicting.ID.String(),
		"startTime":         string(conflicting.StartTime),
		"endTime":           string(conflicting.EndTime),
	}
	if conflicting.DayOfWeek != "" {
		details["dayOfWeek"] = string(conflicting.DayOfWeek)
	}
	if !conflicting.Date.IsZero() {
		details["date"] = string(conflicting.Date)
	}

	return &Error{
		Kind:    ErrorKindConflict,
		Message: "slot overlaps an existing active slot",
		Details: details,
	}
}

func NewTransientError(message string, cause error) *Error {
	return &Error{Kind: ErrorKindTransient, Message: message, cause: cause}
}

// KindOf classifies any error; unrecognized errors count as transient,
// matching the "store unavailable" row of the error contract.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ErrorKindTransient
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
