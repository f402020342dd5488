package models

import "time"

// BookingChannel distinguishes how an appointment entered the system.
type BookingChannel string

const (
	BookedViaAdvance BookingChannel = "advance"
	BookedViaWalkIn  BookingChannel = "walkin"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusSkipped   AppointmentStatus = "Skipped"
	StatusNoShow    AppointmentStatus = "NoShow"
)

// Appointment is one claimed position in a doctor's daily slot grid.
type Appointment struct {
	ID           string            `bson:"id" json:"id"`
	ClinicID     string            `bson:"clinic_id" json:"clinicId"`
	DoctorID     string            `bson:"doctor_id" json:"doctorId"`
	DoctorName   string            `bson:"doctor_name" json:"doctorName"`
	Date         string            `bson:"date" json:"date"` // "YYYY-MM-DD"
	SlotIndex    int               `bson:"slot_index" json:"slotIndex"`
	SessionIndex int               `bson:"session_index" json:"sessionIndex"`
	Time         time.Time         `bson:"time" json:"time"`
	BookedVia    BookingChannel    `bson:"booked_via" json:"bookedVia"`
	Status       AppointmentStatus `bson:"status" json:"status"`
	TokenNumber  string            `bson:"token_number" json:"tokenNumber"`   // display token, e.g. "A003" or "14W"
	NumericToken int               `bson:"numeric_token" json:"numericToken"` // queue-ordering number
	PatientID    string            `bson:"patient_id" json:"patientId"`
	CreatedAt    time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updatedAt"`
}

// Active reports whether the appointment still occupies its slot.
func (a *Appointment) Active() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}
