package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HealthStatus is the latest check result for the service's backing stores.
// Appointments and reservations live in Mongo; the cache holds slot grids
// and walk-in tickets.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Cache     bool      `json:"cache"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every backing store answered its last check.
func (h HealthStatus) Healthy() bool {
	return h.Mongo && h.Cache
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor checks Mongo and the cache once immediately and then
// on every tick, keeping the in-memory snapshot current for the health endpoint.
func StartHealthMonitor(mongoClient *mongo.Client, cache *redis.Client, interval time.Duration) {
	check := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status := HealthStatus{
			Mongo:     mongoClient.Ping(ctx, nil) == nil,
			Cache:     cache.Ping(ctx).Err() == nil,
			CheckedAt: time.Now(),
		}
		if !status.Healthy() {
			GetLogger().Warn("health check failed",
				zap.Bool("mongo", status.Mongo),
				zap.Bool("cache", status.Cache))
		}

		healthMu.Lock()
		currentHealth = status
		healthMu.Unlock()
	}

	check()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			check()
		}
	}()
}
