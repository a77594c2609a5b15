// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "BELL_PORT"
	EnvLogLevel        = "BELL_LOG_LEVEL"
	EnvShutdownTimeout = "BELL_SHUTDOWN_TIMEOUT"
	EnvServerName      = "BELL_SERVER_NAME"
	EnvInstanceID      = "BELL_INSTANCE_ID"

	// Data
	EnvDataDir  = "BELL_DATA_DIR"
	EnvTimezone = "BELL_TIMEZONE"

	// Schedule
	EnvScheduleConfig = "BELL_SCHEDULE_CONFIG"

	// Background Tasks
	EnvSnapshotRefreshInterval = "BELL_SNAPSHOT_REFRESH_INTERVAL"

	// Notifications
	EnvNotificationHorizonDays = "BELL_NOTIFICATION_HORIZON_DAYS"

	// Sentry Feature
	EnvSentryEnabled          = "BELL_SENTRY_ENABLED"
	EnvSentryDSN              = "BELL_SENTRY_DSN"
	EnvSentryEnvironment      = "BELL_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "BELL_SENTRY_RELEASE"
	EnvSentrySampleRate       = "BELL_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "BELL_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "BELL_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "BELL_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "BELL_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "BELL_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "BELL_METRICS_USERNAME"
	EnvMetricsPassword    = "BELL_METRICS_PASSWORD"
)
