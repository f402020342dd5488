package models

import "time"

// Pool entry statuses.
const (
	PoolStatusWaiting  = "waiting"
	PoolStatusAssigned = "assigned"
)

// PatientData is the registration payload carried by a pool entry until the
// walk-in is placed into the timeline.
type PatientData struct {
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone" json:"phone"`
	Gender   string `bson:"gender,omitempty" json:"gender,omitempty"`
	Age      int    `bson:"age,omitempty" json:"age,omitempty"`
	FCMToken string `bson:"fcm_token,omitempty" json:"fcmToken,omitempty"`
}

// WalkInPoolEntry holds a walk-in registered before its session's
// consultation has started. Entries are drained in FIFO order once
// consultation begins and deleted as each one is assigned a slot.
type WalkInPoolEntry struct {
	ID           string      `bson:"id" json:"id"`
	ClinicID     string      `bson:"clinic_id" json:"clinicId"`
	DoctorID     string      `bson:"doctor_id" json:"doctorId"`
	Date         string      `bson:"date" json:"date"`
	SessionIndex int         `bson:"session_index" json:"sessionIndex"`
	Patient      PatientData `bson:"patient" json:"patient"`
	RegisteredAt time.Time   `bson:"registered_at" json:"registeredAt"`
	Status       string      `bson:"status" json:"status"`
	Position     int         `bson:"position" json:"position"`
}

// WalkInTicket is the registration response handed to the kiosk/desk.
type WalkInTicket struct {
	TokenNumber   string    `json:"tokenNumber,omitempty"`
	NumericToken  int       `json:"numericToken,omitempty"`
	SlotIndex     int       `json:"slotIndex"`
	EstimatedTime time.Time `json:"estimatedTime"`
	PatientsAhead int       `json:"patientsAhead"`
	// Pooled is true when the registration landed in the pre-session pool;
	// the token is assigned when the pool drains at consultation start.
	Pooled bool `json:"pooled"`
}
