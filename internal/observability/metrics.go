package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec

	entitlementDecisionsTotal *prometheus.CounterVec
	expiryRunsTotal           *prometheus.CounterVec
	expiryNotificationsTotal  prometheus.Counter
	assistantLatencySeconds   prometheus.Histogram
	assistantFailuresTotal    *prometheus.CounterVec
	notificationsPublished    *prometheus.CounterVec
	sseClientsActive          prometheus.Gauge
	uploadLatencySeconds      prometheus.Histogram
	uploadRejectedTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		entitlementDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "entitlement_decisions_total",
			Help: "Access decisions grouped by outcome.",
		}, []string{"outcome"})

		expiryRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "expiry_job_runs_total",
			Help: "Subscription-expiry job runs grouped by result.",
		}, []string{"status"})

		expiryNotificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiry_notifications_sent_total",
			Help: "Expiry notifications inserted by the batch job.",
		})

		assistantLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "assistant_request_duration_seconds",
			Help: "Duration of assistant proxy requests.",
		})

		assistantFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_failures_total",
			Help: "Assistant proxy failures grouped by reason.",
		}, []string{"reason"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Notifications published grouped by kind.",
		}, []string{"kind"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_stream_clients_active",
			Help: "Currently connected notification stream clients.",
		})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "material_upload_duration_seconds",
			Help: "Duration of reference material uploads.",
		})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "material_upload_rejected_total",
			Help: "Material uploads rejected before storage, grouped by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			entitlementDecisionsTotal, expiryRunsTotal, expiryNotificationsTotal,
			assistantLatencySeconds, assistantFailuresTotal,
			notificationsPublished, sseClientsActive,
			uploadLatencySeconds, uploadRejectedTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// EntitlementDecisions exposes the access decision counter.
func EntitlementDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return entitlementDecisionsTotal
}

// ExpiryRuns exposes the expiry job run counter.
func ExpiryRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return expiryRunsTotal
}

// ExpiryNotificationsSent exposes the expiry notification counter.
func ExpiryNotificationsSent() prometheus.Counter {
	RegisterMetrics()
	return expiryNotificationsTotal
}

// AssistantLatency exposes the assistant latency histogram.
func AssistantLatency() prometheus.Histogram {
	RegisterMetrics()
	return assistantLatencySeconds
}

// AssistantFailures exposes the assistant failure counter.
func AssistantFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return assistantFailuresTotal
}

// NotificationsPublishedTotal exposes the published notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the active stream client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}
