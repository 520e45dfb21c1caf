package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Capability service calls (detection, identity, segmentation, classification, weather)
	CapabilityCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "capability_call_duration_seconds",
			Help:    "Duration of capability service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"capability"},
	)

	CapabilityCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capability_call_failures_total",
			Help: "Total number of failed capability service calls",
		},
		[]string{"capability", "reason"},
	)

	// Pipeline
	PipelineUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_units_total",
			Help: "Pipeline units (image, person, garment) by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	GarmentsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_garments_persisted_total",
			Help: "Total number of garment records written to the catalogue",
		},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_submissions_total",
			Help: "Submissions by outcome (completed, aborted)",
		},
		[]string{"outcome"},
	)

	// Suggestions
	Suggestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestions_total",
			Help: "Outfit suggestion requests by outcome",
		},
		[]string{"outcome"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)

	HTTPErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP responses with status >= 400 by route",
		},
		[]string{"handler", "method", "status"},
	)
)
