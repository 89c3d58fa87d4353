package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the tracking service.
// It is constructed once at process start and passed by reference into
// the packages that need it; core logic never reads the environment.
type Config struct {
	AppName     string
	Environment string
	Host        string
	Port        string

	// DatabaseURL is a Postgres DSN. When empty it is assembled from the
	// individual DB_* variables.
	DatabaseURL string

	// RedirectBaseURL is where click links send the visitor after the
	// click is recorded. Trailing slashes are stripped.
	RedirectBaseURL string

	LogLevel string
	LogFile  string

	// Redis backs the management-API rate limiter. Tracking endpoints are
	// never rate limited; they must always answer.
	RedisHost     string
	RedisPort     string
	RedisPassword string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	// OpenTelemetry tracing
	OTLPEndpoint   string
	TracingEnabled bool
	SamplingRate   float64
}

// Load builds a Config from the environment.
func Load() *Config {
	cfg := &Config{
		AppName:           getEnv("APP_NAME", "tracking-leads"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "8000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedirectBaseURL:   strings.TrimRight(getEnv("REDIRECT_BASE_URL", "https://apexneural.com"), "/"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", "server.log"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		OTLPEndpoint:      getEnv("OTLP_ENDPOINT", "localhost:4318"),
		TracingEnabled:    getEnvBool("TRACING_ENABLED", false),
		SamplingRate:      getEnvFloat("TRACE_SAMPLING_RATE", 1.0),
	}

	if cfg.DatabaseURL == "" {
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		dbname := getEnv("DB_NAME", "tracking")
		sslmode := getEnv("DB_SSLMODE", "disable")

		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	return cfg
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
