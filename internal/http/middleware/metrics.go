package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entangle",
			Subsystem: "ratelimit",
			Name:      "requests_total",
			Help:      "Requests that passed a rate limiter, by route",
		},
		[]string{"route"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entangle",
			Subsystem: "ratelimit",
			Name:      "blocked_total",
			Help:      "Requests rejected by a rate limiter, by route",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests, RLBlocked)
}
