package patientRepo

import "clinicdesk/models"

// PatientRepository is the patient-record collaborator: identity upsert plus
// visit history, nothing more.
type PatientRepository interface {
	// Upsert finds a patient by (clinic, phone) or creates one, returning
	// the patient ID either way.
	Upsert(patient *models.Patient) (string, error)
	GetByID(id string) (*models.Patient, error)
	AppendVisit(patientID string, visit models.VisitRecord) error
}
