package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminLoginTotal) }

var adminLoginTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_login_total",
		Help: "Tracks admin token requests.",
	},
	[]string{"status"}, // status: 'authorized', 'unauthorized'
)

func IncAdminLogin(status string) {
	adminLoginTotal.WithLabelValues(norm(status)).Inc()
}
