package handlers

import (
	"net/http"
	"strconv"

	"clinicdesk/services/scheduling"
	"clinicdesk/utils"

	"github.com/gin-gonic/gin"
)

// QueueHandler exposes the live consultation queue and its transitions.
type QueueHandler struct {
	Svc scheduling.SchedulingService
}

func NewQueueHandler(svc scheduling.SchedulingService) *QueueHandler {
	return &QueueHandler{Svc: svc}
}

func (h *QueueHandler) QueueStateHandler(c *gin.Context) {
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
	state, err := h.Svc.QueueState(c.Request.Context(), c.Param("doctorId"), date, sessionIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *QueueHandler) CompleteHandler(c *gin.Context) {
	if err := h.Svc.Complete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "consultation completed"})
}

func (h *QueueHandler) SkipHandler(c *gin.Context) {
	if err := h.Svc.Skip(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment skipped"})
}

func (h *QueueHandler) RejoinHandler(c *gin.Context) {
	appt, err := h.Svc.Rejoin(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}
