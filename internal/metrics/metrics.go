package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitpass_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"source"},
	)

	SubscriptionsActivatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_subscriptions_activated_total",
			Help: "Total number of subscription activations",
		},
		[]string{"trigger"},
	)

	PaymentsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_payments_completed_total",
			Help: "Total number of completed payments",
		},
		[]string{"method"},
	)

	PaymentsFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitpass_payments_failed_total",
			Help: "Total number of failed payments",
		},
	)

	SettlementsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitpass_settlements_created_total",
			Help: "Total number of settlements created",
		},
	)

	SettlementAmountCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitpass_settlement_amount_cents_total",
			Help: "Total amount claimed into settlements, in minor units",
		},
	)

	JobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_jobs_processed_total",
			Help: "Total number of background jobs processed",
		},
		[]string{"queue", "status"},
	)

	JobQueueLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitpass_job_queue_length",
			Help: "Current length of a job queue",
		},
		[]string{"queue"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSubscriptionCreated(source string) {
	SubscriptionsCreatedTotal.WithLabelValues(source).Inc()
}

func RecordSubscriptionActivated(trigger string) {
	SubscriptionsActivatedTotal.WithLabelValues(trigger).Inc()
}

func RecordPaymentCompleted(method string) {
	PaymentsCompletedTotal.WithLabelValues(method).Inc()
}

func RecordPaymentFailed() {
	PaymentsFailedTotal.Inc()
}

func RecordSettlement(amountCents int64) {
	SettlementsCreatedTotal.Inc()
	SettlementAmountCents.Add(float64(amountCents))
}

func RecordJob(queue, status string) {
	JobsProcessedTotal.WithLabelValues(queue, status).Inc()
}
