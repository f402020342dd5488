package scheduling

import (
	"context"
	"fmt"

	"clinicdesk/models"
	"clinicdesk/utils"

	"go.uber.org/zap"
)

// Rejoin reinserts a skipped appointment later in the timeline. Placement
// follows the walk-in rules since the patient is now effectively a walk-in,
// but the original display token travels with them so the desk and the
// patient keep talking about the same number. The slot they were skipped
// from is never offered back.
func (s *DefaultSchedulingService) Rejoin(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusSkipped {
		return nil, fmt.Errorf("appointment %s is not skipped and cannot rejoin", appointmentID)
	}

	doctor, err := s.loadDoctor(appt.DoctorID)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(appt.Date)
	if err != nil {
		return nil, err
	}
	grid, err := s.gridFor(ctx, doctor, day)
	if err != nil {
		return nil, err
	}

	priorSlot := appt.SlotIndex
	res, err := s.reserve(ctx, reserveRequest{
		doctor:      doctor,
		date:        appt.Date,
		grid:        grid,
		channel:     models.BookedViaWalkIn,
		excludeAppt: appt.ID,
		avoidSlot:   &priorSlot,
		reservedBy:  appt.PatientID,
		reuseToken:  true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Appointments.UpdatePlacement(appt.ID, res.Slot.Index, res.Slot.SessionIndex,
		res.Slot.Time, appt.TokenNumber, appt.NumericToken, models.StatusConfirmed); err != nil {
		s.releaseReservation(res.ReservationID, 0)
		return nil, err
	}
	s.releaseReservation(res.ReservationID, s.reservationGrace())

	appt.SlotIndex = res.Slot.Index
	appt.SessionIndex = res.Slot.SessionIndex
	appt.Time = res.Slot.Time
	appt.Status = models.StatusConfirmed

	s.notify(ctx, models.EventAppointmentBooked, appt, 0)

	utils.GetLogger().Info("skipped appointment rejoined",
		zap.String("appointmentId", appt.ID),
		zap.String("token", appt.TokenNumber),
		zap.Int("fromSlot", priorSlot),
		zap.Int("toSlot", appt.SlotIndex))
	return appt, nil
}
