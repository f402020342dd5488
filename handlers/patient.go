package handlers

import (
	"net/http"

	patientRepo "clinicdesk/database/repository/patient"

	"github.com/gin-gonic/gin"
)

// PatientHandler exposes patient lookup with visit history.
type PatientHandler struct {
	Repo patientRepo.PatientRepository
}

func NewPatientHandler(repo patientRepo.PatientRepository) *PatientHandler {
	return &PatientHandler{Repo: repo}
}

func (h *PatientHandler) GetPatientHandler(c *gin.Context) {
	patient, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, patient)
}
