package doctorRepo

import "clinicdesk/models"

// DoctorRepository defines data access for doctor profiles, availability
// windows and leave exceptions.
type DoctorRepository interface {
	Create(doctor *models.Doctor) error
	GetByID(id string) (*models.Doctor, error)
	GetAll(clinicID string) ([]models.Doctor, error)
	Update(doctor *models.Doctor) error
	Delete(id string) error
	SetAvailability(id string, windows []models.AvailabilityWindow) error
	AddLeave(id string, leave models.LeaveException) error
	RemoveLeave(id string, date string) error
}
