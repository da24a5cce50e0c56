package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		callbacksTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/complete).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Total minor-unit value of completed payments, labeled by gateway.",
		},
		[]string{"gateway"},
	)

	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Gateway callbacks by outcome (confirmed/rejected/error).",
		},
		[]string{"gateway", "outcome"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(gateway string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(gateway)).Add(float64(amount))
}

func IncCallback(gateway, outcome string) {
	callbacksTotal.WithLabelValues(norm(gateway), norm(outcome)).Inc()
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
