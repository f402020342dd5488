package handlers

import (
	"net/http"

	doctorRepo "clinicdesk/database/repository/doctor"
	"clinicdesk/models"
	"clinicdesk/utils"

	"github.com/gin-gonic/gin"
)

// DoctorHandler exposes doctor profile and availability management.
type DoctorHandler struct {
	Repo doctorRepo.DoctorRepository
}

func NewDoctorHandler(repo doctorRepo.DoctorRepository) *DoctorHandler {
	return &DoctorHandler{Repo: repo}
}

func (h *DoctorHandler) CreateDoctorHandler(c *gin.Context) {
	var doctor models.Doctor
	if err := c.ShouldBindJSON(&doctor); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := h.Repo.Create(&doctor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, doctor)
}

func (h *DoctorHandler) GetDoctorHandler(c *gin.Context) {
	doctor, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *DoctorHandler) ListDoctorsHandler(c *gin.Context) {
	doctors, err := h.Repo.GetAll(c.Query("clinicId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *DoctorHandler) UpdateDoctorHandler(c *gin.Context) {
	var doctor models.Doctor
	if err := c.ShouldBindJSON(&doctor); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	doctor.ID = c.Param("id")
	if err := h.Repo.Update(&doctor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *DoctorHandler) DeleteDoctorHandler(c *gin.Context) {
	if err := h.Repo.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "doctor deleted"})
}

func (h *DoctorHandler) SetAvailabilityHandler(c *gin.Context) {
	var input struct {
		Availability []models.AvailabilityWindow `json:"availability"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := h.Repo.SetAvailability(c.Param("id"), input.Availability); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "availability updated"})
}

func (h *DoctorHandler) AddLeaveHandler(c *gin.Context) {
	var leave models.LeaveException
	if err := c.ShouldBindJSON(&leave); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := h.Repo.AddLeave(c.Param("id"), leave); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "leave recorded"})
}

func (h *DoctorHandler) RemoveLeaveHandler(c *gin.Context) {
	if err := h.Repo.RemoveLeave(c.Param("id"), c.Param("date")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "leave removed"})
}
