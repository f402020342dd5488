package models

import (
	"fmt"
	"strings"
	"time"
)

// Reservation is the transient mutex record that exclusively claims one slot
// index during allocation. Its deterministic ID makes the claim atomic: the
// store's conditional create guarantees only one concurrent writer can bring
// a given ID into existence. A reservation lives only for the duration of the
// allocation transaction plus a short grace window.
type Reservation struct {
	ID         string    `bson:"_id" json:"id"`
	ClinicID   string    `bson:"clinic_id" json:"clinicId"`
	DoctorName string    `bson:"doctor_name" json:"doctorName"`
	Date       string    `bson:"date" json:"date"`
	SlotIndex  int       `bson:"slot_index" json:"slotIndex"`
	ReservedBy string    `bson:"reserved_by" json:"reservedBy"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// ReservationID derives the deterministic document ID for a slot claim.
func ReservationID(clinicID, doctorName, date string, slotIndex int) string {
	return fmt.Sprintf("%s_%s_%s_%d", clinicID, slugify(doctorName), date, slotIndex)
}

// TokenCounter is a monotonically increasing per-scope counter. Walk-in
// numeric tokens come from here; advance tokens derive from slot index
// instead so they stay dense and predictable.
type TokenCounter struct {
	ID    string `bson:"_id" json:"id"`
	Count int    `bson:"count" json:"count"`
}

// TokenCounterID derives the counter document ID for one booking scope.
func TokenCounterID(clinicID, doctorName, date string, channel BookingChannel) string {
	return fmt.Sprintf("%s_%s_%s_%s", clinicID, slugify(doctorName), date, channel)
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
