package scheduling

import (
	"context"
	"time"

	apptRepo "clinicdesk/database/repository/appointment"
	doctorRepo "clinicdesk/database/repository/doctor"
	patientRepo "clinicdesk/database/repository/patient"
	poolRepo "clinicdesk/database/repository/walkinpool"
	"clinicdesk/database/store"
	"clinicdesk/models"
	"clinicdesk/services/notification"

	"github.com/go-redis/redis/v8"
)

// AdvanceBookingRequest is an advance (scheduled-ahead) booking.
type AdvanceBookingRequest struct {
	DoctorID      string             `json:"doctorId"`
	Date          string             `json:"date"` // "YYYY-MM-DD"
	Patient       models.PatientData `json:"patient"`
	PreferredSlot *int               `json:"preferredSlot,omitempty"`
}

// WalkInRequest registers a same-day walk-in for a doctor.
type WalkInRequest struct {
	DoctorID string             `json:"doctorId"`
	Patient  models.PatientData `json:"patient"`
}

// SchedulingService is the appointment slot allocation and walk-in queue
// engine.
type SchedulingService interface {
	// GetSlotGrid returns the bookable slot grid for a doctor-date together
	// with the set of indices occupied by active appointments.
	GetSlotGrid(ctx context.Context, doctorID, date string) ([]models.Slot, map[int]bool, error)
	BookAdvance(ctx context.Context, req AdvanceBookingRequest) (*models.Appointment, error)
	// Reschedule moves an active advance appointment to a new slot, freeing
	// the old one.
	Reschedule(ctx context.Context, appointmentID string, preferredSlot *int) (*models.Appointment, error)
	RegisterWalkIn(ctx context.Context, req WalkInRequest) (*models.WalkInTicket, error)
	// DrainWalkInPool assigns pooled walk-ins into the timeline once the
	// session's consultation has started. Idempotent; returns the number of
	// entries assigned.
	DrainWalkInPool(ctx context.Context, doctorID, date string, sessionIndex int) (int, error)
	QueueState(ctx context.Context, doctorID, date string, sessionIndex int) (*models.QueueState, error)
	DaySummary(ctx context.Context, doctorID, date string) ([]models.DaySummary, error)

	// Status transitions.
	ConfirmArrival(ctx context.Context, appointmentID string) error
	Complete(ctx context.Context, appointmentID string) error
	Skip(ctx context.Context, appointmentID string) error
	// Rejoin reinserts a skipped appointment later in the timeline using the
	// walk-in placement rules; its display token is preserved.
	Rejoin(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) error
	MarkNoShow(ctx context.Context, appointmentID string) error
}

// Config carries the scheduling knobs; zero values fall back to defaults.
type Config struct {
	SlotMinutes      int
	WalkInSpacing    int
	AdvanceLead      time.Duration
	ReserveAttempts  int
	ReservationGrace time.Duration
	// SessionGrace extends a session past its last slot for walk-in window
	// checks.
	SessionGrace time.Duration
	// PoolOpenLead is how far before session start walk-in pool
	// registration opens.
	PoolOpenLead time.Duration
}

// DefaultSchedulingService is the production implementation.
type DefaultSchedulingService struct {
	Doctors      doctorRepo.DoctorRepository
	Appointments apptRepo.AppointmentRepository
	Pool         poolRepo.WalkInPoolRepository
	Patients     patientRepo.PatientRepository
	Store        store.TransactionalStore
	Notifier     notification.NotificationService
	Policy       CapacityPolicy
	Config       Config
	Cache        *redis.Client // optional grid/ticket cache
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}
