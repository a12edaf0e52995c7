package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBMaxConns        int
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// HotelLocation is the time zone used to decide what "today" is at check-in.
	HotelLocation *time.Location
	// BookingCodeMaxAttempts caps the booking code collision retry loop.
	BookingCodeMaxAttempts int
	// TxMaxRetries caps how often a serialization failure is retried.
	TxMaxRetries int

	StoragePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimit     RateLimitConfig

	RabbitMQURL string
	NotifyQueue string
}

// RateLimitConfig configures the token bucket applied to booking mutations.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	Prefix         string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	tz := getEnv("HOTEL_TIMEZONE", "UTC")
	cfg.HotelLocation, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid HOTEL_TIMEZONE %q: %w", tz, err)
	}

	cfg.BookingCodeMaxAttempts, err = getEnvAsInt("BOOKING_CODE_MAX_ATTEMPTS", 10)
	if err != nil {
		return nil, err
	}
	if cfg.BookingCodeMaxAttempts < 1 {
		return nil, fmt.Errorf("BOOKING_CODE_MAX_ATTEMPTS must be at least 1")
	}

	cfg.TxMaxRetries, err = getEnvAsInt("TX_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	cfg.StoragePath = getEnv("STORAGE_PATH", "./data/storage")

	// Redis is optional; rate limiting is skipped when it cannot be reached.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg.RateLimit.Enabled, err = getEnvAsBool("RATE_LIMIT_ENABLED", true)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.Capacity, err = getEnvAsInt("RATE_LIMIT_CAPACITY", 20)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.RefillInterval, err = getEnvAsDuration("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.Prefix = getEnv("RATE_LIMIT_PREFIX", "rl")

	// Broker URL is optional; without it notifications are only stored in-app.
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", "")
	cfg.NotifyQueue = getEnv("NOTIFY_QUEUE", "hotel.notifications")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := strings.TrimSpace(getEnv(key, ""))
	if valStr == "" {
		return defaultValue, nil
	}

	switch strings.ToLower(valStr) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("env %s value %q is not a valid boolean", key, valStr)
}
