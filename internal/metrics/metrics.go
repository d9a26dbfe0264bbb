package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TaxonomyMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxonomy_mutations_total",
			Help: "Taxonomy mutations by entry kind, operation and result",
		},
		[]string{"kind", "op", "result"},
	)

	TaxonomyPartialWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taxonomy_partial_writes_total",
			Help: "Mutations that reached some locale files but not all",
		},
	)

	TaxonomyRevision = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taxonomy_revision",
			Help: "Revision of the live taxonomy snapshot",
		},
	)

	ProfileSignups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_signups_total",
			Help: "Sign-up submissions by result",
		},
		[]string{"result"},
	)

	ProfileFilterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_filter_duration_seconds",
			Help:    "Time spent filtering and assembling profile cards",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"filtered"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Connected change-notification clients",
		},
	)
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)
