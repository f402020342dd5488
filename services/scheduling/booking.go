package scheduling

import (
	"context"
	"fmt"
	"time"

	"clinicdesk/models"
	"clinicdesk/utils"

	"go.uber.org/zap"
)

// DefaultReservationGrace is how long a released reservation lingers after
// its appointment exists, covering bookers that read occupancy before the
// appointment became visible.
const DefaultReservationGrace = 5 * time.Second

func (s *DefaultSchedulingService) reservationGrace() time.Duration {
	if s.Config.ReservationGrace > 0 {
		return s.Config.ReservationGrace
	}
	return DefaultReservationGrace
}

// BookAdvance books a slot ahead of time through the advance channel.
func (s *DefaultSchedulingService) BookAdvance(ctx context.Context, req AdvanceBookingRequest) (*models.Appointment, error) {
	doctor, err := s.loadDoctor(req.DoctorID)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	grid, err := s.gridFor(ctx, doctor, day)
	if err != nil {
		return nil, err
	}

	patientID, err := s.Patients.Upsert(&models.Patient{
		ClinicID: doctor.ClinicID,
		Name:     req.Patient.Name,
		Phone:    req.Patient.Phone,
		Gender:   req.Patient.Gender,
		Age:      req.Patient.Age,
		FCMToken: req.Patient.FCMToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert patient: %w", err)
	}

	res, err := s.reserve(ctx, reserveRequest{
		doctor:     doctor,
		date:       req.Date,
		grid:       grid,
		channel:    models.BookedViaAdvance,
		preferred:  req.PreferredSlot,
		reservedBy: patientID,
	})
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ClinicID:     doctor.ClinicID,
		DoctorID:     doctor.ID,
		DoctorName:   doctor.Name,
		Date:         req.Date,
		SlotIndex:    res.Slot.Index,
		SessionIndex: res.Slot.SessionIndex,
		Time:         res.Slot.Time,
		BookedVia:    models.BookedViaAdvance,
		Status:       models.StatusPending,
		TokenNumber:  res.TokenNumber,
		NumericToken: res.NumericToken,
		PatientID:    patientID,
	}
	if err := s.Appointments.Create(ctx, appt); err != nil {
		s.releaseReservation(res.ReservationID, 0)
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	s.releaseReservation(res.ReservationID, s.reservationGrace())

	s.recordVisit(patientID, appt)
	s.notify(ctx, models.EventAppointmentBooked, appt, 0)

	utils.GetLogger().Info("advance booking placed",
		zap.String("appointmentId", appt.ID),
		zap.String("doctorId", doctor.ID),
		zap.String("date", appt.Date),
		zap.Int("slotIndex", appt.SlotIndex),
		zap.String("token", appt.TokenNumber))
	return appt, nil
}

// Reschedule moves an active advance appointment to a fresh slot. The old
// slot index frees as soon as the placement is rewritten; the token follows
// the new slot.
func (s *DefaultSchedulingService) Reschedule(ctx context.Context, appointmentID string, preferredSlot *int) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.Active() {
		return nil, fmt.Errorf("appointment %s is no longer active", appointmentID)
	}
	if appt.BookedVia != models.BookedViaAdvance {
		return nil, fmt.Errorf("appointment %s is a walk-in and cannot be rescheduled", appointmentID)
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

	res, err := s.reserve(ctx, reserveRequest{
		doctor:      doctor,
		date:        appt.Date,
		grid:        grid,
		channel:     models.BookedViaAdvance,
		preferred:   preferredSlot,
		excludeAppt: appt.ID,
		reservedBy:  appt.PatientID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Appointments.UpdatePlacement(appt.ID, res.Slot.Index, res.Slot.SessionIndex,
		res.Slot.Time, res.TokenNumber, res.NumericToken, appt.Status); err != nil {
		s.releaseReservation(res.ReservationID, 0)
		return nil, err
	}
	s.releaseReservation(res.ReservationID, s.reservationGrace())

	appt.SlotIndex = res.Slot.Index
	appt.SessionIndex = res.Slot.SessionIndex
	appt.Time = res.Slot.Time
	appt.TokenNumber = res.TokenNumber
	appt.NumericToken = res.NumericToken

	s.notify(ctx, models.EventAppointmentBooked, appt, 0)

	utils.GetLogger().Info("appointment rescheduled",
		zap.String("appointmentId", appt.ID),
		zap.Int("slotIndex", appt.SlotIndex),
		zap.String("token", appt.TokenNumber))
	return appt, nil
}

// recordVisit appends a visit line to the patient history; failures only log.
func (s *DefaultSchedulingService) recordVisit(patientID string, appt *models.Appointment) {
	visit := models.VisitRecord{
		Date:        appt.Date,
		DoctorID:    appt.DoctorID,
		DoctorName:  appt.DoctorName,
		TokenNumber: appt.TokenNumber,
		BookedVia:   appt.BookedVia,
	}
	if err := s.Patients.AppendVisit(patientID, visit); err != nil {
		utils.GetLogger().Warn("failed to record visit",
			zap.String("patientId", patientID),
			zap.Error(err))
	}
}
