package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(accessGrantsExpiredTotal) }

var accessGrantsExpiredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "access_grants_expired_total",
		Help: "Access grants deactivated by the expiry worker.",
	},
)

func AddAccessGrantsExpired(n int) {
	if n > 0 {
		accessGrantsExpiredTotal.Add(float64(n))
	}
}
