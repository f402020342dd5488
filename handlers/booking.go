package handlers

import (
	"net/http"

	"clinicdesk/services/scheduling"
	"clinicdesk/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the advance booking surface.
type BookingHandler struct {
	Svc scheduling.SchedulingService
}

func NewBookingHandler(svc scheduling.SchedulingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// GetSlotGridHandler returns the day's grid with per-slot availability.
func (h *BookingHandler) GetSlotGridHandler(c *gin.Context) {
	doctorID := c.Param("doctorId")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date query parameter is required", "")
		return
	}

	grid, occupied, err := h.Svc.GetSlotGrid(c.Request.Context(), doctorID, date)
	if err != nil {
		respondError(c, err)
		return
	}

	type slotView struct {
		Index        int    `json:"index"`
		Time         string `json:"time"`
		SessionIndex int    `json:"sessionIndex"`
		Available    bool   `json:"available"`
	}
	view := make([]slotView, 0, len(grid))
	for _, slot := range grid {
		view = append(view, slotView{
			Index:        slot.Index,
			Time:         slot.Time.Format("15:04"),
			SessionIndex: slot.SessionIndex,
			Available:    !occupied[slot.Index],
		})
	}
	c.JSON(http.StatusOK, gin.H{"doctorId": doctorID, "date": date, "slots": view})
}

func (h *BookingHandler) BookAdvanceHandler(c *gin.Context) {
	var req scheduling.AdvanceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	appt, err := h.Svc.BookAdvance(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *BookingHandler) RescheduleHandler(c *gin.Context) {
	var input struct {
		PreferredSlot *int `json:"preferredSlot,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	appt, err := h.Svc.Reschedule(c.Request.Context(), c.Param("id"), input.PreferredSlot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *BookingHandler) CancelHandler(c *gin.Context) {
	if err := h.Svc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment cancelled"})
}

func (h *BookingHandler) ConfirmArrivalHandler(c *gin.Context) {
	if err := h.Svc.ConfirmArrival(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "arrival confirmed"})
}

func (h *BookingHandler) MarkNoShowHandler(c *gin.Context) {
	if err := h.Svc.MarkNoShow(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment marked no-show"})
}

func (h *BookingHandler) DaySummaryHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date query parameter is required", "")
		return
	}
	summary, err := h.Svc.DaySummary(c.Request.Context(), c.Param("doctorId"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctorId": c.Param("doctorId"), "date": date, "sessions": summary})
}
