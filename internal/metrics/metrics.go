// Package metrics exposes Prometheus counters for the chore board.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CompletionsRecorded counts completion events written to the log.
	CompletionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "choreboard_completions_recorded_total",
		Help: "Number of task completions recorded.",
	})

	// RequestsTotal counts HTTP requests by route and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "choreboard_http_requests_total",
		Help: "Number of HTTP requests handled.",
	}, []string{"route", "status"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
