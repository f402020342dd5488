package routes

import (
	"net/http"
	"time"

	"clinicdesk/handlers"
	"clinicdesk/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle collects the handler groups the router wires up.
type HandlerBundle struct {
	Doctor  *handlers.DoctorHandler
	Booking *handlers.BookingHandler
	WalkIn  *handlers.WalkInHandler
	Queue   *handlers.QueueHandler
	Patient *handlers.PatientHandler
}

// RegisterDoctorRoutes registers doctor profile and availability endpoints.
func RegisterDoctorRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/doctors")
	{
		api.POST("", hb.Doctor.CreateDoctorHandler)
		api.GET("", hb.Doctor.ListDoctorsHandler)
		api.GET("/:id", hb.Doctor.GetDoctorHandler)
		api.PUT("/:id", hb.Doctor.UpdateDoctorHandler)
		api.DELETE("/:id", hb.Doctor.DeleteDoctorHandler)
		api.PUT("/:id/availability", hb.Doctor.SetAvailabilityHandler)
		api.POST("/:id/leaves", hb.Doctor.AddLeaveHandler)
		api.DELETE("/:id/leaves/:date", hb.Doctor.RemoveLeaveHandler)
	}
}

// RegisterBookingRoutes registers the advance booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.GET("/grid/:doctorId", hb.Booking.GetSlotGridHandler)
		api.GET("/summary/:doctorId", hb.Booking.DaySummaryHandler)
		api.POST("", hb.Booking.BookAdvanceHandler)
		api.PUT("/:id/reschedule", hb.Booking.RescheduleHandler)
		api.PUT("/:id/arrive", hb.Booking.ConfirmArrivalHandler)
		api.PUT("/:id/no-show", hb.Booking.MarkNoShowHandler)
		api.DELETE("/:id", hb.Booking.CancelHandler)
	}
}

// RegisterWalkInRoutes registers the kiosk walk-in endpoints.
func RegisterWalkInRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/walkins")
	{
		api.POST("", hb.WalkIn.RegisterWalkInHandler)
		api.POST("/drain/:doctorId", hb.WalkIn.DrainPoolHandler)
	}
}

// RegisterQueueRoutes registers the live queue and its transitions.
func RegisterQueueRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/queue")
	{
		api.GET("/:doctorId", hb.Queue.QueueStateHandler)
		api.PUT("/:id/complete", hb.Queue.CompleteHandler)
		api.PUT("/:id/skip", hb.Queue.SkipHandler)
		api.PUT("/:id/rejoin", hb.Queue.RejoinHandler)
	}
}

// RegisterPatientRoutes registers patient lookup endpoints.
func RegisterPatientRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/patients")
	{
		api.GET("/:id", hb.Patient.GetPatientHandler)
	}
}

// RegisterHealthRoute serves the monitor's latest snapshot; a degraded
// backing store turns the endpoint into a 503 for load balancers.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterDoctorRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWalkInRoutes(r, hb)
	RegisterQueueRoutes(r, hb)
	RegisterPatientRoutes(r, hb)
	RegisterHealthRoute(r)
}
