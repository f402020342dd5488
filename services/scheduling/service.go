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

const dateLayout = "2006-01-02"

func (s *DefaultSchedulingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultSchedulingService) slotMinutes(doctor *models.Doctor) int {
	if doctor.AvgConsultMinutes > 0 {
		return doctor.AvgConsultMinutes
	}
	if s.Config.SlotMinutes > 0 {
		return s.Config.SlotMinutes
	}
	return DefaultSlotMinutes
}

func (s *DefaultSchedulingService) advanceLead() time.Duration {
	if s.Config.AdvanceLead > 0 {
		return s.Config.AdvanceLead
	}
	return DefaultAdvanceLead
}

func (s *DefaultSchedulingService) walkInSpacing() int {
	if s.Config.WalkInSpacing > 0 {
		return s.Config.WalkInSpacing
	}
	return DefaultWalkInSpacing
}

func parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day, nil
}

// gridFor builds (or fetches from cache) the slot grid for a doctor-date.
func (s *DefaultSchedulingService) gridFor(ctx context.Context, doctor *models.Doctor, day time.Time) ([]models.Slot, error) {
	date := day.Format(dateLayout)
	cacheKey := utils.GridCachePrefix + doctor.ID + ":" + date

	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var grid []models.Slot
			if err := json.Unmarshal([]byte(cached), &grid); err == nil {
				return grid, nil
			}
		}
	}

	grid, err := BuildSlotGrid(doctor, day, s.slotMinutes(doctor))
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(grid); err == nil {
			s.Cache.Set(ctx, cacheKey, data, utils.GridCacheTTL)
		}
	}
	return grid, nil
}

func (s *DefaultSchedulingService) loadDoctor(doctorID string) (*models.Doctor, error) {
	doctor, err := s.Doctors.GetByID(doctorID)
	if err != nil {
		return nil, NewSchedulingError(CodeDoctorNotFound, "doctor %s not found", doctorID)
	}
	return doctor, nil
}

// GetSlotGrid returns the grid plus the currently occupied index set.
func (s *DefaultSchedulingService) GetSlotGrid(ctx context.Context, doctorID, date string) ([]models.Slot, map[int]bool, error) {
	doctor, err := s.loadDoctor(doctorID)
	if err != nil {
		return nil, nil, err
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, nil, err
	}
	grid, err := s.gridFor(ctx, doctor, day)
	if err != nil {
		return nil, nil, err
	}
	active, err := s.Appointments.ActiveByDay(doctor.ClinicID, doctor.ID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load active appointments: %w", err)
	}
	occupied := occupiedSet(active, "")
	return grid, occupied, nil
}

// occupiedSet collects the slot indices held by active appointments,
// optionally ignoring one appointment ID (reschedule/rejoin case).
func occupiedSet(active []models.Appointment, excludeID string) map[int]bool {
	occupied := make(map[int]bool, len(active))
	for _, a := range active {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		occupied[a.SlotIndex] = true
	}
	return occupied
}

// notify publishes a queue event; delivery failures are logged, never
// propagated into booking flows.
func (s *DefaultSchedulingService) notify(ctx context.Context, event string, appt *models.Appointment, peopleAhead int) {
	if s.Notifier == nil || appt.PatientID == "" {
		return
	}
	payload := models.NotificationPayload{
		Event:       event,
		PatientID:   appt.PatientID,
		ClinicID:    appt.ClinicID,
		DoctorName:  appt.DoctorName,
		Date:        appt.Date,
		Time:        appt.Time.Format("15:04"),
		TokenNumber: appt.TokenNumber,
		PeopleAhead: peopleAhead,
	}
	if err := s.Notifier.Publish(ctx, payload); err != nil {
		utils.GetLogger().Warn("failed to publish notification",
			zap.String("event", event),
			zap.String("appointmentId", appt.ID),
			zap.Error(err))
	}
}

// DaySummary aggregates one doctor-day per session for the dashboard.
func (s *DefaultSchedulingService) DaySummary(ctx context.Context, doctorID, date string) ([]models.DaySummary, error) {
	doctor, err := s.loadDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	appts, err := s.Appointments.ByDay(doctor.ClinicID, doctor.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	bySession := make(map[int]*models.DaySummary)
	maxSession := 0
	for _, a := range appts {
		sum, ok := bySession[a.SessionIndex]
		if !ok {
			sum = &models.DaySummary{SessionIndex: a.SessionIndex}
			bySession[a.SessionIndex] = sum
		}
		if a.SessionIndex > maxSession {
			maxSession = a.SessionIndex
		}
		switch a.Status {
		case models.StatusCompleted:
			sum.Completed++
		case models.StatusSkipped:
			sum.Skipped++
		case models.StatusCancelled:
			sum.Cancelled++
		case models.StatusNoShow:
			sum.NoShows++
		}
		if a.BookedVia == models.BookedViaWalkIn {
			sum.WalkIns++
		} else {
			sum.Booked++
		}
	}

	summaries := make([]models.DaySummary, 0, len(bySession))
	for i := 0; i <= maxSession; i++ {
		if sum, ok := bySession[i]; ok {
			summaries = append(summaries, *sum)
		}
	}
	return summaries, nil
}
