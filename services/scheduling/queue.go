package scheduling

import (
	"context"
	"fmt"
	"sort"

	"clinicdesk/models"
	"clinicdesk/utils"

	"go.uber.org/zap"
)

// BufferSize is how many upcoming patients the buffer queue previews.
const BufferSize = 2

// ComputeQueueState derives the live queue from one session's appointment
// records. It is pure: no clock, no storage, same input always yields the
// same queues.
func ComputeQueueState(appts []models.Appointment, consultationCount int) *models.QueueState {
	var arrived, skipped []models.Appointment
	for _, a := range appts {
		switch a.Status {
		case models.StatusConfirmed:
			arrived = append(arrived, a)
		case models.StatusSkipped:
			skipped = append(skipped, a)
		}
	}
	sortForQueue(arrived)
	sortForQueue(skipped)

	state := &models.QueueState{
		ArrivedQueue:      arrived,
		SkippedQueue:      skipped,
		ConsultationCount: consultationCount,
	}
	if len(arrived) > 0 {
		n := BufferSize
		if len(arrived) < n {
			n = len(arrived)
		}
		state.BufferQueue = arrived[:n]
		current := arrived[0]
		state.CurrentConsultation = &current
	}
	return state
}

// sortForQueue orders appointments by slot time; at equal times advance
// bookings go first, then lower numeric tokens.
func sortForQueue(appts []models.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if a.BookedVia != b.BookedVia {
			return a.BookedVia == models.BookedViaAdvance
		}
		return a.NumericToken < b.NumericToken
	})
}

// QueueState returns the live queue for one doctor-day-session, draining
// the walk-in pool first so pooled patients show up as soon as the session
// is live.
func (s *DefaultSchedulingService) QueueState(ctx context.Context, doctorID, date string, sessionIndex int) (*models.QueueState, error) {
	if _, err := s.DrainWalkInPool(ctx, doctorID, date, sessionIndex); err != nil {
		utils.GetLogger().Warn("pool drain before queue read failed",
			zap.String("doctorId", doctorID),
			zap.String("date", date),
			zap.Error(err))
	}

	doctor, err := s.loadDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	appts, err := s.Appointments.BySession(doctor.ClinicID, doctor.ID, date, sessionIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to load session appointments: %w", err)
	}
	count, err := s.Appointments.ConsultationCount(doctor.ClinicID, doctor.ID, date, sessionIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to load consultation count: %w", err)
	}
	return ComputeQueueState(appts, count), nil
}
