// File: clinicdesk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicdesk/config"
	"clinicdesk/cron"
	"clinicdesk/database"
	apptRepo "clinicdesk/database/repository/appointment"
	doctorRepo "clinicdesk/database/repository/doctor"
	patientRepo "clinicdesk/database/repository/patient"
	poolRepo "clinicdesk/database/repository/walkinpool"
	"clinicdesk/database/store"
	"clinicdesk/handlers"
	"clinicdesk/middleware"
	"clinicdesk/routes"
	"clinicdesk/services/notification"
	"clinicdesk/services/scheduling"
	"clinicdesk/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()
	utils.StartHealthMonitor(database.MongoClient, utils.GetCacheClient(), time.Minute)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// storage and repositories.
	txStore := store.NewMongoStore(database.DB())
	doctors := doctorRepo.NewMongoDoctorRepo()
	appointments := apptRepo.NewMongoAppointmentRepo(txStore)
	pool := poolRepo.NewMongoWalkInPoolRepo()
	patients := patientRepo.NewMongoPatientRepo()

	// services.
	notifier := notification.NewAsyncNotificationService()
	defer notifier.Close()

	schedulingService := &scheduling.DefaultSchedulingService{
		Doctors:      doctors,
		Appointments: appointments,
		Pool:         pool,
		Patients:     patients,
		Store:        txStore,
		Notifier:     notifier,
		Policy:       scheduling.CapacityPolicy{AdvanceRatio: config.AppConfig.AdvanceRatio},
		Config: scheduling.Config{
			SlotMinutes:      config.AppConfig.DefaultSlotMinutes,
			WalkInSpacing:    config.AppConfig.WalkInSpacing,
			AdvanceLead:      time.Duration(config.AppConfig.AdvanceLeadMinutes) * time.Minute,
			ReserveAttempts:  config.AppConfig.ReserveAttempts,
			ReservationGrace: time.Duration(config.AppConfig.ReservationGraceSeconds) * time.Second,
			SessionGrace:     time.Duration(config.AppConfig.SessionGraceMinutes) * time.Minute,
			PoolOpenLead:     time.Duration(config.AppConfig.PoolOpenLeadMinutes) * time.Minute,
		},
		Cache: utils.GetCacheClient(),
	}

	// Background workers: notification delivery plus the walk-in pool sweep.
	cron.InitNotificationWorker(notification.NewFCMDeliverer(patients))
	cron.StartPoolSweeper(schedulingService, doctors, time.Minute)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Doctor:  handlers.NewDoctorHandler(doctors),
		Booking: handlers.NewBookingHandler(schedulingService),
		WalkIn:  handlers.NewWalkInHandler(schedulingService),
		Queue:   handlers.NewQueueHandler(schedulingService),
		Patient: handlers.NewPatientHandler(patients),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
