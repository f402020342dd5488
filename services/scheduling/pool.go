package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicdesk/models"
	"clinicdesk/utils"

	"go.uber.org/zap"
)

// Walk-in window defaults.
const (
	// DefaultSessionGrace keeps the walk-in window open past a session's
	// last slot so late arrivals can still join if slots remain.
	DefaultSessionGrace = 30 * time.Minute
	// DefaultPoolOpenLead is how far before session start the pre-session
	// pool accepts registrations.
	DefaultPoolOpenLead = 2 * time.Hour
)

func (s *DefaultSchedulingService) sessionGrace() time.Duration {
	if s.Config.SessionGrace > 0 {
		return s.Config.SessionGrace
	}
	return DefaultSessionGrace
}

func (s *DefaultSchedulingService) poolOpenLead() time.Duration {
	if s.Config.PoolOpenLead > 0 {
		return s.Config.PoolOpenLead
	}
	return DefaultPoolOpenLead
}

// sessionBounds derives a session's start and end from the grid; end is the
// last slot's start plus one slot duration.
func sessionBounds(grid []models.Slot, sessionIndex int, step time.Duration) (start, end time.Time, ok bool) {
	for _, slot := range grid {
		if slot.SessionIndex != sessionIndex {
			continue
		}
		if !ok || slot.Time.Before(start) {
			start = slot.Time
		}
		if slot.Time.Add(step).After(end) {
			end = slot.Time.Add(step)
		}
		ok = true
	}
	return start, end, ok
}

func sessionCount(grid []models.Slot) int {
	max := -1
	for _, slot := range grid {
		if slot.SessionIndex > max {
			max = slot.SessionIndex
		}
	}
	return max + 1
}

// RegisterWalkIn takes a same-day walk-in. Before the target session's start
// the patient lands in the pre-session pool; once the session is underway
// they are placed straight into the timeline.
func (s *DefaultSchedulingService) RegisterWalkIn(ctx context.Context, req WalkInRequest) (*models.WalkInTicket, error) {
	doctor, err := s.loadDoctor(req.DoctorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	date := now.Format(dateLayout)
	grid, err := s.gridFor(ctx, doctor, now)
	if err != nil {
		return nil, err
	}
	step := time.Duration(s.slotMinutes(doctor)) * time.Minute

	// Pick the first session whose window (with grace) has not closed yet.
	target := -1
	var targetStart, targetEnd time.Time
	for i := 0; i < sessionCount(grid); i++ {
		start, end, ok := sessionBounds(grid, i, step)
		if !ok {
			continue
		}
		if now.Before(end.Add(s.sessionGrace())) {
			target = i
			targetStart = start
			targetEnd = end
			break
		}
	}
	if target < 0 {
		return nil, NewSchedulingError(CodeWalkInWindowClosed,
			"walk-in registration for doctor %s closed for %s", doctor.ID, date)
	}
	if now.Before(targetStart.Add(-s.poolOpenLead())) {
		return nil, NewSchedulingError(CodeWalkInNotYetOpen,
			"walk-in registration for doctor %s opens at %s",
			doctor.ID, targetStart.Add(-s.poolOpenLead()).Format("15:04"))
	}

	if now.Before(targetStart) {
		return s.registerPooled(doctor, date, target, targetStart, targetEnd, step, req.Patient)
	}
	return s.registerStarted(ctx, doctor, date, grid, req.Patient)
}

// registerPooled queues a walk-in ahead of its session's start.
func (s *DefaultSchedulingService) registerPooled(doctor *models.Doctor, date string, sessionIndex int, sessionStart, sessionEnd time.Time, step time.Duration, patient models.PatientData) (*models.WalkInTicket, error) {
	ahead, err := s.Pool.CountWaiting(doctor.ClinicID, doctor.ID, date, sessionIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to count pool entries: %w", err)
	}

	estimate := sessionStart.Add(time.Duration(ahead) * step)
	if estimate.After(sessionEnd.Add(s.sessionGrace())) {
		return nil, NewSchedulingError(CodeSlotOutsideAvailability,
			"walk-in pool for doctor %s session %d on %s would run past %s",
			doctor.ID, sessionIndex, date, sessionEnd.Add(s.sessionGrace()).Format("15:04"))
	}

	entry := &models.WalkInPoolEntry{
		ClinicID:     doctor.ClinicID,
		DoctorID:     doctor.ID,
		Date:         date,
		SessionIndex: sessionIndex,
		Patient:      patient,
		RegisteredAt: s.now(),
		Position:     ahead + 1,
	}
	if err := s.Pool.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create pool entry: %w", err)
	}

	utils.GetLogger().Info("walk-in pooled",
		zap.String("doctorId", doctor.ID),
		zap.String("date", date),
		zap.Int("sessionIndex", sessionIndex),
		zap.Int("position", entry.Position))

	return &models.WalkInTicket{
		SlotIndex:     -1,
		EstimatedTime: estimate,
		PatientsAhead: ahead,
		Pooled:        true,
	}, nil
}

// registerStarted places a walk-in directly into a session already underway.
func (s *DefaultSchedulingService) registerStarted(ctx context.Context, doctor *models.Doctor, date string, grid []models.Slot, patient models.PatientData) (*models.WalkInTicket, error) {
	appt, err := s.placeWalkIn(ctx, doctor, date, grid, patient)
	if err != nil {
		return nil, err
	}

	ahead, err := s.patientsAhead(doctor, date, appt.SlotIndex)
	if err != nil {
		utils.GetLogger().Warn("failed to count patients ahead", zap.Error(err))
		ahead = 0
	}

	ticket := &models.WalkInTicket{
		TokenNumber:   appt.TokenNumber,
		NumericToken:  appt.NumericToken,
		SlotIndex:     appt.SlotIndex,
		EstimatedTime: appt.Time,
		PatientsAhead: ahead,
	}
	s.cacheTicket(ctx, doctor.ID, date, ticket)
	return ticket, nil
}

// placeWalkIn runs the full walk-in placement: patient upsert, slot claim,
// appointment creation. Walk-ins are created Confirmed since the patient is
// physically present.
func (s *DefaultSchedulingService) placeWalkIn(ctx context.Context, doctor *models.Doctor, date string, grid []models.Slot, patient models.PatientData) (*models.Appointment, error) {
	patientID, err := s.Patients.Upsert(&models.Patient{
		ClinicID: doctor.ClinicID,
		Name:     patient.Name,
		Phone:    patient.Phone,
		Gender:   patient.Gender,
		Age:      patient.Age,
		FCMToken: patient.FCMToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert patient: %w", err)
	}

	res, err := s.reserve(ctx, reserveRequest{
		doctor:     doctor,
		date:       date,
		grid:       grid,
		channel:    models.BookedViaWalkIn,
		reservedBy: patientID,
	})
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ClinicID:     doctor.ClinicID,
		DoctorID:     doctor.ID,
		DoctorName:   doctor.Name,
		Date:         date,
		SlotIndex:    res.Slot.Index,
		SessionIndex: res.Slot.SessionIndex,
		Time:         res.Slot.Time,
		BookedVia:    models.BookedViaWalkIn,
		Status:       models.StatusConfirmed,
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
	s.announceSessionStart(ctx, appt)

	utils.GetLogger().Info("walk-in placed",
		zap.String("appointmentId", appt.ID),
		zap.String("doctorId", doctor.ID),
		zap.Int("slotIndex", appt.SlotIndex),
		zap.String("token", appt.TokenNumber))
	return appt, nil
}

func (s *DefaultSchedulingService) patientsAhead(doctor *models.Doctor, date string, slotIndex int) (int, error) {
	active, err := s.Appointments.ActiveByDay(doctor.ClinicID, doctor.ID, date)
	if err != nil {
		return 0, err
	}
	ahead := 0
	for _, a := range active {
		if a.SlotIndex < slotIndex {
			ahead++
		}
	}
	return ahead, nil
}

func (s *DefaultSchedulingService) cacheTicket(ctx context.Context, doctorID, date string, ticket *models.WalkInTicket) {
	if s.Cache == nil || ticket.TokenNumber == "" {
		return
	}
	key := utils.TicketCachePrefix + doctorID + ":" + date + ":" + ticket.TokenNumber
	if data, err := json.Marshal(ticket); err == nil {
		s.Cache.Set(ctx, key, data, utils.TicketCacheTTL)
	}
}

// DrainWalkInPool moves waiting pool entries into the timeline in FIFO
// order. Safe to call repeatedly; it does nothing before session start and
// an empty pool is a no-op.
func (s *DefaultSchedulingService) DrainWalkInPool(ctx context.Context, doctorID, date string, sessionIndex int) (int, error) {
	doctor, err := s.loadDoctor(doctorID)
	if err != nil {
		return 0, err
	}
	day, err := parseDate(date)
	if err != nil {
		return 0, err
	}
	grid, err := s.gridFor(ctx, doctor, day)
	if err != nil {
		return 0, err
	}
	step := time.Duration(s.slotMinutes(doctor)) * time.Minute

	start, _, ok := sessionBounds(grid, sessionIndex, step)
	if !ok {
		return 0, NewSchedulingError(CodeDoctorUnavailable,
			"doctor %s has no session %d on %s", doctorID, sessionIndex, date)
	}
	if s.now().Before(start) {
		return 0, nil
	}

	entries, err := s.Pool.ListWaiting(doctor.ClinicID, doctor.ID, date, sessionIndex)
	if err != nil {
		return 0, fmt.Errorf("failed to list pool entries: %w", err)
	}

	assigned := 0
	for _, entry := range entries {
		appt, err := s.placeWalkIn(ctx, doctor, date, grid, entry.Patient)
		if err != nil {
			// A full timeline stops the drain; remaining entries stay
			// pooled for the next sweep.
			utils.GetLogger().Warn("pool drain stopped",
				zap.String("doctorId", doctorID),
				zap.String("date", date),
				zap.Int("sessionIndex", sessionIndex),
				zap.Int("assigned", assigned),
				zap.Error(err))
			break
		}
		if err := s.Pool.Delete(entry.ID); err != nil {
			utils.GetLogger().Error("failed to delete drained pool entry",
				zap.String("entryId", entry.ID),
				zap.String("appointmentId", appt.ID),
				zap.Error(err))
		}
		assigned++
	}
	return assigned, nil
}
