package cron

import (
	"context"
	"log"
	"time"

	"clinicdesk/config"
	doctorRepo "clinicdesk/database/repository/doctor"
	"clinicdesk/services/notification"
	"clinicdesk/services/scheduling"
	"clinicdesk/services/tasks"
	"clinicdesk/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitNotificationWorker runs the async delivery worker in background.
func InitNotificationWorker(deliverer *notification.FCMDeliverer) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationDeliver, deliverer.HandleDeliverTask)

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[NotificationWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// StartPoolSweeper periodically drains every doctor's walk-in pool so pooled
// patients are assigned even when nobody is watching the queue screen.
func StartPoolSweeper(svc scheduling.SchedulingService, doctors doctorRepo.DoctorRepository, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			sweepPools(svc, doctors)
		}
	}()
}

func sweepPools(svc scheduling.SchedulingService, doctors doctorRepo.DoctorRepository) {
	logger := utils.GetLogger()
	all, err := doctors.GetAll("")
	if err != nil {
		logger.Warn("pool sweeper: failed to list doctors", zap.Error(err))
		return
	}
	date := time.Now().Format("2006-01-02")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, doctor := range all {
		window := doctor.AvailabilityFor(time.Now().Weekday())
		if window == nil {
			continue
		}
		for sessionIdx := range window.Sessions {
			assigned, err := svc.DrainWalkInPool(ctx, doctor.ID, date, sessionIdx)
			if err != nil {
				logger.Warn("pool sweeper: drain failed",
					zap.String("doctorId", doctor.ID),
					zap.Int("sessionIndex", sessionIdx),
					zap.Error(err))
				continue
			}
			if assigned > 0 {
				logger.Info("pool sweeper: assigned pooled walk-ins",
					zap.String("doctorId", doctor.ID),
					zap.Int("sessionIndex", sessionIdx),
					zap.Int("assigned", assigned))
			}
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[NotificationWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
