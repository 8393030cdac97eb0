package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsInitiated tracks created payments by gateway
	PaymentsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Total number of initiated payments",
		},
		[]string{"gateway"},
	)

	// PaymentsFinalized tracks terminal transitions by resulting status
	PaymentsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_finalized_total",
			Help: "Total number of payments reaching a terminal status",
		},
		[]string{"status"},
	)

	// WebhooksReceived tracks inbound gateway webhooks by provider status
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_webhooks_received_total",
			Help: "Total number of gateway webhook notifications received",
		},
		[]string{"provider_status"},
	)

	// VouchersGenerated tracks generated vouchers by package type
	VouchersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vouchers_generated_total",
			Help: "Total number of generated vouchers",
		},
		[]string{"package_type"},
	)

	// VouchersRedeemed tracks consumed vouchers by finalizer path
	VouchersRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vouchers_redeemed_total",
			Help: "Total number of redeemed vouchers",
		},
		[]string{"path"},
	)
)
