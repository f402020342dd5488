package models

// Notification event names produced toward the notification collaborator.
const (
	EventAppointmentBooked    = "appointmentBooked"
	EventTokenCalled          = "tokenCalled"
	EventAppointmentCancelled = "appointmentCancelled"
	EventAppointmentSkipped   = "appointmentSkipped"
	EventPeopleAhead          = "peopleAhead"
	EventConsultationStarted  = "consultationStarted"
)

// NotificationPayload is the task payload carried through the queue to the
// delivery worker.
type NotificationPayload struct {
	Event       string `json:"event"`
	PatientID   string `json:"patientId"`
	ClinicID    string `json:"clinicId"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	TokenNumber string `json:"tokenNumber,omitempty"`
	PeopleAhead int    `json:"peopleAhead,omitempty"`
}
