package scheduling

import (
	"context"
	"fmt"

	"clinicdesk/models"
	"clinicdesk/utils"

	"go.uber.org/zap"
)

// ConfirmArrival marks an advance booking as checked in at the desk, which
// admits it into the arrived queue.
func (s *DefaultSchedulingService) ConfirmArrival(ctx context.Context, appointmentID string) error {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return err
	}
	if err := s.Appointments.UpdateStatus(appointmentID, models.StatusPending, models.StatusConfirmed); err != nil {
		return err
	}
	appt.Status = models.StatusConfirmed
	utils.GetLogger().Info("arrival confirmed", zap.String("appointmentId", appointmentID))
	s.announceSessionStart(ctx, appt)
	return nil
}

// announceSessionStart pushes the consultation-started event when an
// appointment becomes the session's first current consultation. Later
// arrivals and later sessions of the same day announce independently.
func (s *DefaultSchedulingService) announceSessionStart(ctx context.Context, appt *models.Appointment) {
	count, err := s.Appointments.ConsultationCount(appt.ClinicID, appt.DoctorID, appt.Date, appt.SessionIndex)
	if err != nil || count > 0 {
		return
	}
	appts, err := s.Appointments.BySession(appt.ClinicID, appt.DoctorID, appt.Date, appt.SessionIndex)
	if err != nil {
		return
	}
	state := ComputeQueueState(appts, count)
	if state.CurrentConsultation != nil && state.CurrentConsultation.ID == appt.ID {
		s.notify(ctx, models.EventConsultationStarted, appt, 0)
	}
}

// Complete finishes the current consultation, bumps the session counter and
// calls the next patient forward.
func (s *DefaultSchedulingService) Complete(ctx context.Context, appointmentID string) error {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return err
	}
	if err := s.Appointments.UpdateStatus(appointmentID, models.StatusConfirmed, models.StatusCompleted); err != nil {
		return err
	}
	count, err := s.Appointments.IncrementConsultationCount(appt.ClinicID, appt.DoctorID, appt.Date, appt.SessionIndex)
	if err != nil {
		utils.GetLogger().Error("failed to bump consultation count",
			zap.String("appointmentId", appointmentID),
			zap.Error(err))
	}
	utils.GetLogger().Info("consultation completed",
		zap.String("appointmentId", appointmentID),
		zap.String("token", appt.TokenNumber),
		zap.Int("consultationCount", count))

	s.notifyQueueHead(ctx, appt, count)
	return nil
}

// Skip parks a called-but-absent patient in the skipped queue and calls the
// next one.
func (s *DefaultSchedulingService) Skip(ctx context.Context, appointmentID string) error {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return err
	}
	if err := s.Appointments.UpdateStatus(appointmentID, models.StatusConfirmed, models.StatusSkipped); err != nil {
		return err
	}
	appt.Status = models.StatusSkipped
	s.notify(ctx, models.EventAppointmentSkipped, appt, 0)

	count, err := s.Appointments.ConsultationCount(appt.ClinicID, appt.DoctorID, appt.Date, appt.SessionIndex)
	if err != nil {
		count = 0
	}
	s.notifyQueueHead(ctx, appt, count)

	utils.GetLogger().Info("appointment skipped",
		zap.String("appointmentId", appointmentID),
		zap.String("token", appt.TokenNumber))
	return nil
}

// Cancel releases an active appointment's slot. Count-based capacity means
// the freed count is immediately bookable again.
func (s *DefaultSchedulingService) Cancel(ctx context.Context, appointmentID string) error {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return err
	}
	if !appt.Active() {
		return fmt.Errorf("appointment %s is not active", appointmentID)
	}
	if err := s.Appointments.UpdateStatus(appointmentID, appt.Status, models.StatusCancelled); err != nil {
		return err
	}
	s.notify(ctx, models.EventAppointmentCancelled, appt, 0)

	utils.GetLogger().Info("appointment cancelled",
		zap.String("appointmentId", appointmentID),
		zap.Int("slotIndex", appt.SlotIndex))
	return nil
}

// MarkNoShow closes out an advance booking that never checked in.
func (s *DefaultSchedulingService) MarkNoShow(ctx context.Context, appointmentID string) error {
	if err := s.Appointments.UpdateStatus(appointmentID, models.StatusPending, models.StatusNoShow); err != nil {
		return err
	}
	utils.GetLogger().Info("appointment marked no-show", zap.String("appointmentId", appointmentID))
	return nil
}

// notifyQueueHead recomputes the session queue and pushes "your turn" to the
// new head plus a heads-up to the patient behind them.
func (s *DefaultSchedulingService) notifyQueueHead(ctx context.Context, done *models.Appointment, consultationCount int) {
	appts, err := s.Appointments.BySession(done.ClinicID, done.DoctorID, done.Date, done.SessionIndex)
	if err != nil {
		utils.GetLogger().Warn("failed to reload session queue",
			zap.String("doctorId", done.DoctorID),
			zap.Error(err))
		return
	}
	state := ComputeQueueState(appts, consultationCount)
	if state.CurrentConsultation != nil {
		s.notify(ctx, models.EventTokenCalled, state.CurrentConsultation, 0)
	}
	if len(state.ArrivedQueue) > 1 {
		second := state.ArrivedQueue[1]
		s.notify(ctx, models.EventPeopleAhead, &second, 1)
	}
}
