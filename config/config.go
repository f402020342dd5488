package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort      string `mapstructure:"APP_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	Env          string `mapstructure:"ENV"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisTaskDB   int    `mapstructure:"REDIS_TASK_DB"`

	// Firebase Cloud Messaging.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Scheduling knobs.
	DefaultSlotMinutes      int     `mapstructure:"DEFAULT_SLOT_MINUTES"`
	AdvanceRatio            float64 `mapstructure:"ADVANCE_RATIO"`
	WalkInSpacing           int     `mapstructure:"WALKIN_SPACING"`
	AdvanceLeadMinutes      int     `mapstructure:"ADVANCE_LEAD_MINUTES"`
	ReserveAttempts         int     `mapstructure:"RESERVE_ATTEMPTS"`
	ReservationGraceSeconds int     `mapstructure:"RESERVATION_GRACE_SECONDS"`
	SessionGraceMinutes     int     `mapstructure:"SESSION_GRACE_MINUTES"`
	PoolOpenLeadMinutes     int     `mapstructure:"POOL_OPEN_LEAD_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "clinicdesk")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 2)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")
	viper.SetDefault("DEFAULT_SLOT_MINUTES", 15)
	viper.SetDefault("ADVANCE_RATIO", 0.85)
	viper.SetDefault("WALKIN_SPACING", 5)
	viper.SetDefault("ADVANCE_LEAD_MINUTES", 60)
	viper.SetDefault("RESERVE_ATTEMPTS", 5)
	viper.SetDefault("RESERVATION_GRACE_SECONDS", 5)
	viper.SetDefault("SESSION_GRACE_MINUTES", 30)
	viper.SetDefault("POOL_OPEN_LEAD_MINUTES", 120)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
