package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"seatpao/internal/cache"
	"seatpao/internal/database"
	"seatpao/internal/external"
	"seatpao/internal/messaging"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	AllowedOrigins []string

	// Pending bookings older than this are cancelled by the expiration job; zero disables it
	PendingBookingTTL time.Duration
	ExpirationEvery   time.Duration

	Database database.Config
	NATS     messaging.Config
	Payment  external.PaymentConfig
	Redis    cache.Config
}

// Load reads configuration from the environment, after applying a .env file if present
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:              getEnv("PORT", "5000"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		AllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		PendingBookingTTL: getEnvDuration("PENDING_BOOKING_TTL", 24*time.Hour),
		ExpirationEvery:   getEnvDuration("EXPIRATION_CHECK_INTERVAL", time.Minute),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "seatpao"),
			Password:           getEnv("DB_PASSWORD", "seatpao"),
			DBName:             getEnv("DB_NAME", "seatpao"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "seatpao"),
			ClientID:  getEnv("NATS_CLIENT_ID", "seatpao-api"),
		},

		Payment: external.PaymentConfig{
			SecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
			Currency:   getEnv("PAYMENT_CURRENCY", "bdt"),
			SuccessURL: getEnv("CLIENT_URL", "http://localhost:5173") + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  getEnv("CLIENT_URL", "http://localhost:5173") + "/payment/cancel",
			Timeout:    getEnvDuration("PAYMENT_TIMEOUT", 15*time.Second),
		},

		Redis: cache.Config{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			ConfirmedTTL: getEnvDuration("CONFIRMED_SESSION_TTL", 72*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "15m")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
