package models

import "time"

// SessionWindow is one contiguous availability window within a day,
// expressed as wall-clock times in "HH:MM" (24h) format.
type SessionWindow struct {
	From string `bson:"from" json:"from"`
	To   string `bson:"to" json:"to"`
}

// AvailabilityWindow is a doctor's recurring weekly availability for one
// weekday. Sessions are non-overlapping and ordered by start time.
type AvailabilityWindow struct {
	Weekday  time.Weekday    `bson:"weekday" json:"weekday"`
	Sessions []SessionWindow `bson:"sessions" json:"sessions"`
}

// LeaveException removes time ranges from an otherwise-available date.
type LeaveException struct {
	Date             string          `bson:"date" json:"date"` // "YYYY-MM-DD"
	BlockedIntervals []SessionWindow `bson:"blocked_intervals" json:"blockedIntervals"`
	Reason           string          `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Doctor is the profile record consumed by the scheduling engine.
type Doctor struct {
	ID        string `bson:"id" json:"id"`
	ClinicID  string `bson:"clinic_id" json:"clinicId"`
	Name      string `bson:"name" json:"name"`
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	// AvgConsultMinutes is the slot duration for this doctor's grid.
	// Zero means the configured default applies.
	AvgConsultMinutes int                  `bson:"avg_consult_minutes" json:"avgConsultMinutes"`
	Availability      []AvailabilityWindow `bson:"availability" json:"availability"`
	Leaves            []LeaveException     `bson:"leaves,omitempty" json:"leaves,omitempty"`
	CreatedAt         time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updatedAt"`
}

// AvailabilityFor returns the recurring window for the given weekday, or nil.
func (d *Doctor) AvailabilityFor(weekday time.Weekday) *AvailabilityWindow {
	for i := range d.Availability {
		if d.Availability[i].Weekday == weekday {
			return &d.Availability[i]
		}
	}
	return nil
}

// LeaveFor returns the leave exception for the given date, or nil.
func (d *Doctor) LeaveFor(date string) *LeaveException {
	for i := range d.Leaves {
		if d.Leaves[i].Date == date {
			return &d.Leaves[i]
		}
	}
	return nil
}
