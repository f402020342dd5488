package models

import "time"

// VisitRecord is one line of a patient's visit history.
type VisitRecord struct {
	Date        string         `bson:"date" json:"date"`
	DoctorID    string         `bson:"doctor_id" json:"doctorId"`
	DoctorName  string         `bson:"doctor_name" json:"doctorName"`
	TokenNumber string         `bson:"token_number" json:"tokenNumber"`
	BookedVia   BookingChannel `bson:"booked_via" json:"bookedVia"`
}

// Patient is the minimal patient record the scheduler needs: identity for
// appointments, a push token for notifications, and visit history.
type Patient struct {
	ID        string        `bson:"id" json:"id"`
	ClinicID  string        `bson:"clinic_id" json:"clinicId"`
	Name      string        `bson:"name" json:"name"`
	Phone     string        `bson:"phone" json:"phone"`
	Gender    string        `bson:"gender,omitempty" json:"gender,omitempty"`
	Age       int           `bson:"age,omitempty" json:"age,omitempty"`
	FCMToken  string        `bson:"fcm_token,omitempty" json:"fcmToken,omitempty"`
	Visits    []VisitRecord `bson:"visits,omitempty" json:"visits,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt"`
}
