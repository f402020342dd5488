package apptRepo

import (
	"context"
	"time"

	"clinicdesk/models"
)

// AppointmentRepository defines data access for appointment records plus the
// transient allocation records (reservations and token counters) that guard
// slot claiming. Methods that participate in allocation transactions take a
// context so they can join a store transaction.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(id string) (*models.Appointment, error)
	// ActiveByDay returns Pending and Confirmed appointments for one
	// doctor-day, ascending by slot index.
	ActiveByDay(clinicID, doctorID, date string) ([]models.Appointment, error)
	// ByDay returns all appointments for one doctor-day regardless of status.
	ByDay(clinicID, doctorID, date string) ([]models.Appointment, error)
	// BySession returns all appointments for one doctor-day-session.
	BySession(clinicID, doctorID, date string, sessionIndex int) ([]models.Appointment, error)
	// UpdateStatus transitions an appointment from one status to another; it
	// fails if the appointment is not currently in the from status.
	UpdateStatus(id string, from, to models.AppointmentStatus) error
	// UpdatePlacement rewrites an appointment's slot assignment and token
	// (reschedule and rejoin).
	UpdatePlacement(id string, slotIndex, sessionIndex int, t time.Time, tokenNumber string, numericToken int, status models.AppointmentStatus) error
	Delete(id string) error

	// CreateReservation atomically claims a slot by creating the reservation
	// under its deterministic ID; returns store.ErrAlreadyExists when the
	// slot is already claimed.
	CreateReservation(ctx context.Context, res *models.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
	// NextTokenCount increments and returns the walk-in token counter.
	NextTokenCount(ctx context.Context, counterID string) (int, error)

	IncrementConsultationCount(clinicID, doctorID, date string, sessionIndex int) (int, error)
	ConsultationCount(clinicID, doctorID, date string, sessionIndex int) (int, error)
}
