// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, data directory, timezone, and background refresh cadence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string
	InstanceID      string

	// Data Configuration
	DataDir  string // Data directory for the SQLite database
	Timezone string // IANA timezone name for schedule evaluation

	// Schedule Configuration
	ScheduleConfigPath string // Optional YAML file overriding the built-in bell schedules

	// Background Tasks
	SnapshotRefreshInterval time.Duration // How often the widget snapshot is rebuilt

	// Notifications
	NotificationHorizonDays int // How many days ahead notification plans cover

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword    string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry Configuration
	SentryEnabled          bool
	SentryDSN              string
	SentryEnvironment      string
	SentryRelease          string
	SentrySampleRate       float64
	SentryTracesSampleRate float64

	// Better Stack Configuration
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),
		ServerName:      getEnv(EnvServerName, "bellschedule"),
		InstanceID:      getEnv(EnvInstanceID, uuid.NewString()),

		// Data Configuration
		DataDir:  getEnv(EnvDataDir, getDefaultDataDir()),
		Timezone: getEnv(EnvTimezone, "America/Los_Angeles"),

		// Schedule Configuration
		ScheduleConfigPath: getEnv(EnvScheduleConfig, ""),

		// Background Tasks
		SnapshotRefreshInterval: getDurationEnv(EnvSnapshotRefreshInterval, time.Minute),

		// Notifications
		NotificationHorizonDays: getIntEnv(EnvNotificationHorizonDays, 7),

		// Metrics Authentication
		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		// Sentry Configuration
		SentryEnabled:          getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:              getEnv(EnvSentryDSN, ""),
		SentryEnvironment:      getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:          getEnv(EnvSentryRelease, ""),
		SentrySampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryTracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.1),

		// Better Stack Configuration
		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("BELL_PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("BELL_DATA_DIR is required"))
	}
	if c.Timezone == "" {
		errs = append(errs, errors.New("BELL_TIMEZONE is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("BELL_SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}
	if c.SnapshotRefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("BELL_SNAPSHOT_REFRESH_INTERVAL must be positive, got %v", c.SnapshotRefreshInterval))
	}
	if c.NotificationHorizonDays <= 0 {
		errs = append(errs, fmt.Errorf("BELL_NOTIFICATION_HORIZON_DAYS must be positive, got %d", c.NotificationHorizonDays))
	}
	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, errors.New("BELL_SENTRY_DSN is required when Sentry is enabled"))
	}
	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, errors.New("BELL_BETTERSTACK_TOKEN is required when Better Stack is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "bellschedule.db")
}

// Location resolves the configured timezone. When the name cannot be
// loaded (stripped tzdata images), evaluation falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
