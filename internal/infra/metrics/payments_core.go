package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		paymentCompletionSeconds,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (initiated/completed/declined/rejected/error).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of completed payments.",
		},
	)

	paymentCompletionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_completion_seconds",
			Help:    "Latency of the payment completion flow by outcome.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(amount decimal.Decimal) {
	f, _ := amount.Float64()
	paymentsRevenueTotal.Add(f)
}

func ObserveCompletion(outcome string, d time.Duration) {
	paymentCompletionSeconds.WithLabelValues(norm(outcome)).Observe(d.Seconds())
}
