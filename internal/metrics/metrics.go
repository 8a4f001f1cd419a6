// Package metrics holds the prometheus collectors shared by the validator and miner.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "eden"
)

var (
	// CyclesTotal counts validation cycles by outcome
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of validation cycles",
		},
		[]string{"outcome"}, // voted/skipped/aborted
	)

	// PhaseDuration measures time spent per cycle phase
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Validation phase latency in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"phase"},
	)

	// PeerRequestsTotal counts generate calls to peers
	PeerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_requests_total",
			Help:      "Total number of peer generate requests",
		},
		[]string{"status"}, // ok/failed
	)

	// VotesTotal counts vote submissions
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Total number of vote submissions",
		},
		[]string{"status"}, // ok/failed
	)

	// PeersScored tracks how many peers were scored in the last cycle
	PeersScored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers_scored",
			Help:      "Number of peers scored in the last cycle",
		},
	)

	// GenerateRequestsTotal counts requests served by the miner
	GenerateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_requests_total",
			Help:      "Total number of generate requests served",
		},
		[]string{"status"},
	)
)

// Handler exposes the default registry as a fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
