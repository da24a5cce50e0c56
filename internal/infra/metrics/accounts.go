package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		methodOpsTotal,
		bundleOpsTotal,
	)
}

var (
	methodOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_method_ops_total",
			Help: "Payment method operations (create/set_main/delete).",
		},
		[]string{"op"},
	)

	bundleOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_ops_total",
			Help: "Bundle tier operations (upsert/delete).",
		},
		[]string{"op"},
	)
)

func IncMethodOp(op string) {
	methodOpsTotal.WithLabelValues(norm(op)).Inc()
}

func IncBundleOp(op string) {
	bundleOpsTotal.WithLabelValues(norm(op)).Inc()
}
