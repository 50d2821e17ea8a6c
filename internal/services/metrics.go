package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	usersRegisteredTotal  prometheus.Counter
	loginAttemptsTotal    *prometheus.CounterVec
	transactionsTotal     *prometheus.CounterVec
	dashboardDuration     prometheus.Histogram
	feedSubscribersActive prometheus.Gauge
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		usersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of registered users",
			},
		),
		loginAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"},
		),
		transactionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_saved_total",
				Help: "Total number of transaction entry writes",
			},
			[]string{"operation"},
		),
		dashboardDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_query_duration_seconds",
				Help:    "Dashboard aggregation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		feedSubscribersActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "feed_subscribers_active",
				Help: "Current number of live feed subscribers",
			},
		),
	}
}

func (m *PrometheusMetrics) RecordUserRegistered() {
	m.usersRegisteredTotal.Inc()
}

func (m *PrometheusMetrics) RecordUserLogin(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.loginAttemptsTotal.WithLabelValues(status).Inc()
}

func (m *PrometheusMetrics) RecordTransactionSaved(operation string) {
	m.transactionsTotal.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordDashboardQuery(duration time.Duration) {
	m.dashboardDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordFeedSubscribers(count int) {
	m.feedSubscribersActive.Set(float64(count))
}

// NoopMetrics discards all measurements. Used in tests.
type NoopMetrics struct{}

func NewNoopMetrics() MetricsRecorderInterface {
	return &NoopMetrics{}
}

func (m *NoopMetrics) RecordUserRegistered()                       {}
func (m *NoopMetrics) RecordUserLogin(success bool)                {}
func (m *NoopMetrics) RecordTransactionSaved(operation string)     {}
func (m *NoopMetrics) RecordDashboardQuery(duration time.Duration) {}
func (m *NoopMetrics) RecordFeedSubscribers(count int)             {}
