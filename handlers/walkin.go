package handlers

import (
	"net/http"
	"strconv"

	"clinicdesk/services/scheduling"
	"clinicdesk/utils"

	"github.com/gin-gonic/gin"
)

// WalkInHandler exposes the kiosk/front-desk walk-in surface.
type WalkInHandler struct {
	Svc scheduling.SchedulingService
}

func NewWalkInHandler(svc scheduling.SchedulingService) *WalkInHandler {
	return &WalkInHandler{Svc: svc}
}

func (h *WalkInHandler) RegisterWalkInHandler(c *gin.Context) {
	var req scheduling.WalkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	ticket, err := h.Svc.RegisterWalkIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// DrainPoolHandler manually triggers a pool drain, normally covered by the
// background sweeper and queue reads.
func (h *WalkInHandler) DrainPoolHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date query parameter is required", "")
		return
	}
	sessionIndex, err := strconv.Atoi(c.DefaultQuery("session", "0"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid session index", err.Error())
		return
	}
	assigned, err := h.Svc.DrainWalkInPool(c.Request.Context(), c.Param("doctorId"), date, sessionIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": assigned})
}
