package handlers

import (
	"net/http"

	"clinicdesk/services/scheduling"

	"github.com/gin-gonic/gin"
)

// statusFor maps scheduling error codes to HTTP statuses.
func statusFor(err error) int {
	switch scheduling.ErrCode(err) {
	case scheduling.CodeDoctorNotFound:
		return http.StatusNotFound
	case scheduling.CodeDoctorUnavailable, scheduling.CodeNoSlotsGenerated:
		return http.StatusUnprocessableEntity
	case scheduling.CodeAdvanceCapacityReached,
		scheduling.CodeNoMatchingCandidateSlot,
		scheduling.CodeWalkInWindowClosed,
		scheduling.CodeWalkInNotYetOpen,
		scheduling.CodeSlotOutsideAvailability:
		return http.StatusConflict
	case scheduling.CodeReservationConflict:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a scheduling failure as a coded JSON error.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if code := scheduling.ErrCode(err); code != "" {
		body["code"] = code
	}
	c.JSON(statusFor(err), body)
}
