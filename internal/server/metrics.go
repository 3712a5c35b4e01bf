package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catbot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catbot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// Chat metrics
	messagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catbot_messages_stored_total",
			Help: "Total chat turns written to the message log",
		},
		[]string{"sender"},
	)

	responderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catbot_responder_requests_total",
			Help: "Assistant replies requested, by responder and outcome",
		},
		[]string{"responder", "outcome"},
	)

	catFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catbot_cat_fetches_total",
			Help: "Random cat lookups, by outcome",
		},
		[]string{"outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
