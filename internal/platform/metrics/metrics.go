package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are safe
// on a nil receiver so tests can pass nil instead of registering collectors
// against the default registry twice.
type Metrics struct {
	AuditRecords        *prometheus.CounterVec
	AuditWriteFailures  prometheus.Counter
	AuditRecordsExpired prometheus.Counter

	NotificationsDispatched *prometheus.CounterVec
	NotificationsRead       prometheus.Counter
	NotificationsCleaned    prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AuditRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crmcore_audit_records_total",
			Help: "Total number of audit records written",
		}, []string{"action"}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crmcore_audit_write_failures_total",
			Help: "Total number of failed audit record writes",
		}),
		AuditRecordsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crmcore_audit_records_expired_total",
			Help: "Total number of audit records removed by the retention sweep",
		}),
		NotificationsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crmcore_notifications_dispatched_total",
			Help: "Total number of notifications dispatched",
		}, []string{"severity"}),
		NotificationsRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crmcore_notifications_read_total",
			Help: "Total number of notifications marked read",
		}),
		NotificationsCleaned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crmcore_notifications_cleaned_total",
			Help: "Total number of read notifications removed by cleanup",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crmcore_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncAuditRecords(action string) {
	if m == nil {
		return
	}
	m.AuditRecords.WithLabelValues(action).Inc()
}

func (m *Metrics) IncAuditWriteFailures() {
	if m == nil {
		return
	}
	m.AuditWriteFailures.Inc()
}

func (m *Metrics) AddAuditRecordsExpired(n int64) {
	if m == nil {
		return
	}
	m.AuditRecordsExpired.Add(float64(n))
}

func (m *Metrics) IncNotificationsDispatched(severity string) {
	if m == nil {
		return
	}
	m.NotificationsDispatched.WithLabelValues(severity).Inc()
}

func (m *Metrics) AddNotificationsRead(n int64) {
	if m == nil {
		return
	}
	m.NotificationsRead.Add(float64(n))
}

func (m *Metrics) AddNotificationsCleaned(n int64) {
	if m == nil {
		return
	}
	m.NotificationsCleaned.Add(float64(n))
}

func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}
