package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TriagesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_completed_total",
			Help: "Total number of completed triages by specialty and level",
		},
		[]string{"specialty", "level"},
	)

	EarlyStops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_early_stops_total",
			Help: "Total number of answers that triggered an early stop",
		},
		[]string{"specialty"},
	)

	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_sessions_started_total",
			Help: "Total number of server-held triage sessions started",
		},
		[]string{"specialty"},
	)

	RejectedAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_rejected_answers_total",
			Help: "Total number of answers rejected as invalid transitions",
		},
		[]string{"specialty"},
	)

	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_catalog_loads_total",
			Help: "Total number of catalog loads from the backing store",
		},
		[]string{"source", "result"},
	)
)
