// Package metrics holds the Prometheus collectors shared by the copilot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrcopilot_requests_total",
			Help: "Total number of copilot requests by route and status code",
		},
		[]string{"route", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hrcopilot_request_duration_seconds",
			Help:    "Duration of copilot requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	RetrievalOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrcopilot_retrieval_outcomes_total",
			Help: "Retriever results by source and outcome (hit, not_found, error)",
		},
		[]string{"source", "outcome"},
	)
	TicketsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrcopilot_escalation_tickets_total",
			Help: "Escalation tickets created by priority",
		},
		[]string{"priority"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RetrievalOutcomes)
	prometheus.MustRegister(TicketsCreated)
}
