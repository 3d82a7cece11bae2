package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// JWT
	JWTSecret string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Bitácora
	Timezone           string
	ClosureMinContent  int
	ClosureMaxContent  int
	EntryMaxContent    int
	LockRetries        int
	LockRepairInterval time.Duration
	LockRepairLookback time.Duration

	// Email (Resend)
	ResendAPIKey string
	FromEmail    string
	PublicAppURL string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith is Load with a hook that adjusts values (command-line flags) before validation
func LoadWith(override func(*Config)) (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:     strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:        getEnvAsInt("WORKER_COUNT", 4),
		AllowedOrigins:     getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		Timezone:           getEnv("BITACORA_TIMEZONE", "America/Mexico_City"),
		ClosureMinContent:  getEnvAsInt("CLOSURE_MIN_CONTENT", 50),
		ClosureMaxContent:  getEnvAsInt("CLOSURE_MAX_CONTENT", 5000),
		EntryMaxContent:    getEnvAsInt("ENTRY_MAX_CONTENT", 5000),
		LockRetries:        getEnvAsInt("CLOSURE_LOCK_RETRIES", 3),
		LockRepairInterval: getEnvAsDuration("LOCK_REPAIR_INTERVAL", 10*time.Minute),
		LockRepairLookback: getEnvAsDuration("LOCK_REPAIR_LOOKBACK", 72*time.Hour),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		FromEmail:          getEnv("FROM_EMAIL", "bitacora@besop.app"),
		PublicAppURL:       getEnv("PUBLIC_APP_URL", "http://localhost:3000"),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// Validate checks required and inter-dependent values
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}

	if c.JWTSecret == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("BITACORA_TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err)
	}

	if c.ClosureMinContent <= 0 || c.ClosureMaxContent < c.ClosureMinContent {
		return fmt.Errorf("closure content bounds are invalid: min=%d max=%d", c.ClosureMinContent, c.ClosureMaxContent)
	}

	if c.LockRetries < 1 {
		c.LockRetries = 1
	}

	return nil
}

// Location returns the reference timezone used for day bucketing
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EmailEnabled reports whether Resend credentials are present
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as a Go duration ("10m", "72h")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
