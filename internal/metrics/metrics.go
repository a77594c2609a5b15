package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec

	// Schedule engine metrics
	StatusEvaluationsTotal *prometheus.CounterVec

	// Notification metrics
	NotificationPlansTotal    prometheus.Counter
	NotificationsPlannedTotal *prometheus.CounterVec

	// Snapshot metrics
	SnapshotRefreshTotal    *prometheus.CounterVec
	SnapshotRefreshDuration prometheus.Histogram

	// Storage metrics
	SettingsWritesTotal *prometheus.CounterVec

	// Settings import/export metrics
	SettingsTransferTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bell_http_duration_seconds",
				Help:    "HTTP request duration in seconds by route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2}, // Local reads are fast
			},
			[]string{"route"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: bad_request, not_found, internal, etc.
		),

		// Schedule engine metrics
		StatusEvaluationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_status_evaluations_total",
				Help: "Total number of schedule status evaluations by resulting kind",
			},
			[]string{"kind"}, // kind: no_school, before_school, in_class, passing_period, after_school
		),

		// Notification metrics
		NotificationPlansTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "bell_notification_plans_total",
				Help: "Total number of notification plans generated",
			},
		),

		NotificationsPlannedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_notifications_planned_total",
				Help: "Total number of planned notification entries by category",
			},
			[]string{"category"}, // category: CLASS_ENDING, PASSING_PERIOD
		),

		// Snapshot metrics
		SnapshotRefreshTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_snapshot_refresh_total",
				Help: "Total number of widget snapshot refreshes by status",
			},
			[]string{"status"}, // status: success, error
		),

		SnapshotRefreshDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bell_snapshot_refresh_duration_seconds",
				Help:    "Duration of widget snapshot refresh cycles",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		// Storage metrics
		SettingsWritesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_settings_writes_total",
				Help: "Total number of settings writes by section",
			},
			[]string{"section"}, // section: display, notifications, class_info
		),

		// Settings import/export metrics
		SettingsTransferTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bell_settings_transfer_total",
				Help: "Total number of settings export/import operations by direction and status",
			},
			[]string{"direction", "status"}, // direction: export, import
		),
	}

	return m
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(route, code string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}

// RecordStatusEvaluation records a schedule status evaluation result
func (m *Metrics) RecordStatusEvaluation(kind string) {
	m.StatusEvaluationsTotal.WithLabelValues(kind).Inc()
}

// RecordNotificationPlan records a generated notification plan
func (m *Metrics) RecordNotificationPlan(countByCategory map[string]int) {
	m.NotificationPlansTotal.Inc()
	for category, count := range countByCategory {
		m.NotificationsPlannedTotal.WithLabelValues(category).Add(float64(count))
	}
}

// RecordSnapshotRefresh records a snapshot refresh cycle
func (m *Metrics) RecordSnapshotRefresh(status string, duration float64) {
	m.SnapshotRefreshTotal.WithLabelValues(status).Inc()
	m.SnapshotRefreshDuration.Observe(duration)
}

// RecordSettingsWrite records a settings write by section
func (m *Metrics) RecordSettingsWrite(section string) {
	m.SettingsWritesTotal.WithLabelValues(section).Inc()
}

// RecordSettingsTransfer records a settings export or import
func (m *Metrics) RecordSettingsTransfer(direction, status string) {
	m.SettingsTransferTotal.WithLabelValues(direction, status).Inc()
}
