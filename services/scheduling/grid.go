package scheduling

import (
	"fmt"
	"time"

	"clinicdesk/models"
)

// DefaultSlotMinutes is the slot duration used when a doctor has no average
// consulting time configured.
const DefaultSlotMinutes = 15

// BuildSlotGrid turns a doctor's recurring availability for the target
// date's weekday, minus that date's leave exceptions, into the ordered list
// of bookable slots. The result is deterministic: same inputs, same grid.
//
// Slot indices run across the whole day, spanning all sessions in order, and
// are assigned before leave filtering so a suppressed slot leaves a gap
// rather than renumbering its successors.
func BuildSlotGrid(doctor *models.Doctor, date time.Time, slotMinutes int) ([]models.Slot, error) {
	window := doctor.AvailabilityFor(date.Weekday())
	if window == nil || len(window.Sessions) == 0 {
		return nil, NewSchedulingError(CodeDoctorUnavailable,
			"doctor %s has no sessions on %s", doctor.Name, date.Weekday())
	}

	if slotMinutes <= 0 {
		slotMinutes = doctor.AvgConsultMinutes
	}
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}
	step := time.Duration(slotMinutes) * time.Minute

	var grid []models.Slot
	index := 0
	for sessionIdx, session := range window.Sessions {
		start, err := clockOnDate(date, session.From)
		if err != nil {
			return nil, fmt.Errorf("session %d of doctor %s: %w", sessionIdx, doctor.ID, err)
		}
		end, err := clockOnDate(date, session.To)
		if err != nil {
			return nil, fmt.Errorf("session %d of doctor %s: %w", sessionIdx, doctor.ID, err)
		}
		// Half-open walk: a slot starting exactly at session end is excluded.
		for t := start; t.Before(end); t = t.Add(step) {
			grid = append(grid, models.Slot{
				Index:        index,
				Time:         t,
				SessionIndex: sessionIdx,
			})
			index++
		}
	}

	if len(grid) == 0 {
		return nil, NewSchedulingError(CodeNoSlotsGenerated,
			"session bounds for doctor %s on %s produce no slots", doctor.Name, date.Format("2006-01-02"))
	}

	leave := doctor.LeaveFor(date.Format("2006-01-02"))
	if leave == nil || len(leave.BlockedIntervals) == 0 {
		return grid, nil
	}

	// Leave filtering: a slot is suppressed when its full duration sits
	// inside a blocked interval. Indices already assigned are kept.
	kept := grid[:0]
	for _, slot := range grid {
		blocked := false
		for _, iv := range leave.BlockedIntervals {
			from, err := clockOnDate(date, iv.From)
			if err != nil {
				continue
			}
			to, err := clockOnDate(date, iv.To)
			if err != nil {
				continue
			}
			if !slot.Time.Before(from) && !slot.Time.Add(step).After(to) {
				blocked = true
				break
			}
		}
		if !blocked {
			kept = append(kept, slot)
		}
	}
	return kept, nil
}

// clockOnDate parses an "HH:MM" wall-clock string onto the given date.
func clockOnDate(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
