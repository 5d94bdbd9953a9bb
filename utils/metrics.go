// utils/metrics.go
package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters for the commission ledger. Registered on the default
// registry and exposed at /metrics.
var (
	CommissionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_commissions_recorded_total",
		Help: "Total number of commission earning records created, by type",
	}, []string{"type"})

	CommissionAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_commission_amount_total",
		Help: "Total commission amount recorded, by type",
	}, []string{"type"})

	PayoutsByStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_payouts_total",
		Help: "Total number of payout transitions, by resulting status",
	}, []string{"status"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_webhook_events_total",
		Help: "Total number of webhook events received, by type and outcome",
	}, []string{"type", "outcome"})
)
