package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts handled requests.
	// Labels: method, route (chi pattern), status.
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locationshare_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locationshare_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// authAttempts counts credential operations.
	// Labels:
	//   - endpoint: "init", "login", "users"
	//   - outcome: "success", "missing", "admin_exists", "invalid", "unauthorized", "error"
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locationshare_auth_attempts_total",
			Help: "Total number of bootstrap, login and user creation attempts",
		},
		[]string{"endpoint", "outcome"},
	)

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locationshare_login_rate_limited_total",
		Help: "Login requests rejected by the rate limiter",
	})
)
