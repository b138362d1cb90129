package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded on docextract_requests_total.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

var (
	registry = prometheus.NewRegistry()

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docextract_requests_total",
		Help: "Extraction requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docextract_duration_seconds",
		Help:    "End-to-end extraction latency.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	providerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docextract_provider_failures_total",
		Help: "Failed calls to an extraction provider.",
	}, []string{"provider"})

	archivalFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docextract_archival_failures_total",
		Help: "Failed archival writes by backend.",
	}, []string{"backend"})

	tokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docextract_tokens_issued_total",
		Help: "Credential issuance attempts by outcome.",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(
		requestsTotal,
		duration,
		providerFailures,
		archivalFailures,
		tokensIssued,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveExtraction records one finished extraction request.
func ObserveExtraction(provider, outcome string, seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	requestsTotal.WithLabelValues(provider, outcome).Inc()
	duration.WithLabelValues(provider).Observe(seconds)
}

func IncProviderFailure(provider string) {
	providerFailures.WithLabelValues(provider).Inc()
}

func IncArchivalFailure(backend string) {
	archivalFailures.WithLabelValues(backend).Inc()
}

func IncTokenIssued(outcome string) {
	tokensIssued.WithLabelValues(outcome).Inc()
}

// Registry exposes the collector set, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
