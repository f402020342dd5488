package poolRepo

import "clinicdesk/models"

// WalkInPoolRepository defines data access for pre-session walk-in pool
// entries.
type WalkInPoolRepository interface {
	Create(entry *models.WalkInPoolEntry) error
	// ListWaiting returns waiting entries for one doctor-day-session in FIFO
	// order (by registration time).
	ListWaiting(clinicID, doctorID, date string, sessionIndex int) ([]models.WalkInPoolEntry, error)
	// CountWaiting returns the current pool size for position assignment.
	CountWaiting(clinicID, doctorID, date string, sessionIndex int) (int, error)
	Delete(id string) error
}
