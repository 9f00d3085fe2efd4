// Package metrics exposes Prometheus counters the service updates while
// handling webhooks. Served at /metrics in text exposition format.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	webhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Webhook requests by final status",
		},
		[]string{"status"}, // success|skipped|error|unauthorized|invalid
	)

	ordersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_orders_total",
			Help: "Orders submitted to the broker",
		},
		[]string{"side", "class"}, // side: buy|sell, class: market|bracket
	)

	entriesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_skipped_total",
			Help: "Signals skipped by a gate, split by reason",
		},
		[]string{"reason"},
	)

	brokerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_failures_total",
			Help: "Orders the broker rejected",
		},
	)

	notifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Best-effort notification sink failures (never fatal)",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(webhookRequests, ordersPlaced, entriesSkipped, brokerFailures, notifyFailures)
}

func IncWebhookRequest(status string)      { webhookRequests.WithLabelValues(status).Inc() }
func IncOrderPlaced(side, class string)    { ordersPlaced.WithLabelValues(side, class).Inc() }
func IncSkip(reason string)                { entriesSkipped.WithLabelValues(reason).Inc() }
func IncBrokerFailure()                    { brokerFailures.Inc() }
func IncNotifyFailure(sink string)         { notifyFailures.WithLabelValues(sink).Inc() }
