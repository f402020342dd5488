package scheduling

import (
	"errors"
	"fmt"
)

// Error codes for scheduling failures.
const (
	CodeDoctorNotFound          = "doctorNotFound"
	CodeDoctorUnavailable       = "doctorUnavailableForDate"
	CodeNoSlotsGenerated        = "noSlotsGenerated"
	CodeAdvanceCapacityReached  = "advanceCapacityReached"
	CodeNoMatchingCandidateSlot = "noMatchingCandidateSlot"
	CodeReservationConflict     = "reservationConflict"
	CodeWalkInWindowClosed      = "walkInWindowClosed"
	CodeWalkInNotYetOpen        = "walkInNotYetOpen"
	CodeSlotOutsideAvailability = "slotOutsideAvailability"
)

// SchedulingError is a coded scheduling failure suitable for mapping to a
// user-facing message.
type SchedulingError struct {
	Code    string
	Message string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewSchedulingError builds a coded error.
func NewSchedulingError(code, format string, args ...interface{}) error {
	return &SchedulingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the scheduling error code from err, or "".
func ErrCode(err error) string {
	var se *SchedulingError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether the failure is an allocation-transient
// conflict that the reservation loop retries internally.
func IsRetryable(err error) bool {
	return ErrCode(err) == CodeReservationConflict
}
