package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the bus (count)",
		},
		[]string{"type", "status"},
	)

	PublishRetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_retry_attempts_total",
			Help: "Total number of publish retry attempts (count)",
		},
		[]string{"type"},
	)

	EventsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_received_total",
			Help: "Total number of events received by ingress handlers (count)",
		},
		[]string{"service", "type"},
	)

	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_broadcasts_total",
			Help: "Total number of push broadcasts attempted (count)",
		},
		[]string{"status"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "push_active_connections",
			Help: "Number of live push channel connections (count)",
		},
	)

	AuditWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_writes_total",
			Help: "Total number of audit entry writes to the state store (count)",
		},
		[]string{"status"},
	)

	RecurringTasksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recurring_tasks_created_total",
			Help: "Total number of next-occurrence task creations (count)",
		},
		[]string{"status"},
	)

	ReminderJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_jobs_total",
			Help: "Total number of reminder job operations (count)",
		},
		[]string{"operation", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through circuit breakers (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total failures recorded by circuit breakers (count)",
		},
		[]string{"name"},
	)

	RateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting (count)",
		},
		[]string{"path"},
	)
)

func RegisterPublisherMetrics() {
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(PublishRetryAttemptsTotal)
}

func RegisterPushMetrics() {
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(ActiveConnections)
}

func RegisterIngressMetrics() {
	prometheus.MustRegister(EventsReceivedTotal)
}

func RegisterAuditMetrics() {
	prometheus.MustRegister(AuditWritesTotal)
}

func RegisterRecurringMetrics() {
	prometheus.MustRegister(RecurringTasksCreatedTotal)
}

func RegisterReminderMetrics() {
	prometheus.MustRegister(ReminderJobsTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterRateLimitMetrics() {
	prometheus.MustRegister(RateLimitRejectionsTotal)
}
