// Package config provides environment-driven configuration for the edge API.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the edge API. Every field is
// populated from environment variables; .env loading happens in the
// entrypoint via godotenv before Load is called.
type Config struct {
	Port     int
	LogLevel string

	// Gemini
	GeminiAPIKey string

	// Backend-as-a-service (auth REST endpoint + service key)
	BackendURL        string
	BackendServiceKey string

	// Usage tracking database
	DatabaseURL string

	// CORS
	AllowedOrigin string

	// Rate limiting
	RateLimitBypassKey string
	RateLimitAnonDaily int
	RateLimitUserDaily int
	RedisAddr          string

	// Object storage
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool

	// Cloud monitoring
	MonitoringServiceAccount string // raw service-account JSON
	MonitoringProjectID      string
}

// Load reads configuration from the environment, applying defaults for
// optional values.
func Load() *Config {
	return &Config{
		Port:     GetEnvInt("PORT", 8080),
		LogLevel: GetEnvString("LOG_LEVEL", "info"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		BackendURL:        os.Getenv("BACKEND_URL"),
		BackendServiceKey: os.Getenv("BACKEND_SERVICE_KEY"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		RateLimitBypassKey: os.Getenv("RATE_LIMIT_BYPASS_KEY"),
		RateLimitAnonDaily: GetEnvInt("RATE_LIMIT_ANON_DAILY", 3),
		RateLimitUserDaily: GetEnvInt("RATE_LIMIT_USER_DAILY", 25),
		RedisAddr:          os.Getenv("REDIS_ADDR"),

		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageUseSSL:    GetEnvBool("STORAGE_USE_SSL", true),

		MonitoringServiceAccount: os.Getenv("MONITORING_SERVICE_ACCOUNT"),
		MonitoringProjectID:      os.Getenv("MONITORING_PROJECT_ID"),
	}
}

// Validate checks that configuration required to serve requests is present.
// Optional integrations (storage, monitoring, redis) are validated lazily by
// the components that use them.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.RateLimitAnonDaily < 0 || c.RateLimitUserDaily < 0 {
		return fmt.Errorf("rate limit quotas must be non-negative")
	}
	return nil
}

// GetEnvString gets an environment variable as a string with a default value.
func GetEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an environment variable as an integer with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvBool gets an environment variable as a boolean with a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetEnvDuration gets an environment variable as a duration with a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
