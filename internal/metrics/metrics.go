package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph API client
	GraphRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meta_graph_requests_total",
			Help: "Graph API requests by outcome",
		},
		[]string{"outcome"}, // "success", "retryable", "fatal", "rejected"
	)

	GraphRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meta_graph_retries_total",
			Help: "Graph API requests retried after a transient failure",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meta_graph_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Sync pipeline
	LeadsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_sync_leads_fetched_total",
			Help: "Raw lead rows fetched from lead forms",
		},
	)

	LeadsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_sync_leads_inserted_total",
			Help: "Leads inserted into the store",
		},
	)

	LeadsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_sync_leads_skipped_total",
			Help: "Leads skipped because they were already stored",
		},
	)

	CampaignsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_sync_campaigns_upserted_total",
			Help: "Campaign records written by campaign sync",
		},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sync_errors_total",
			Help: "Non-fatal sync errors by scope",
		},
		[]string{"scope"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_sync_run_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"},
	)
)
