package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hazard_products"

// Metrics holds the Prometheus counters, histograms, and gauges for product generation.
type Metrics struct {
	RequestsConsumed  prometheus.Counter
	ProductsPublished prometheus.Counter
	RequestErrors     *prometheus.CounterVec // labels: reason={rejected,external_service,internal}
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Generation metrics.
	Generations           *prometheus.CounterVec // labels: mode={preview,issue}, outcome={success,error}
	GenerationDuration    prometheus.Histogram
	ProductsGenerated     *prometheus.CounterVec // labels: product_id
	CancellationsDetected prometheus.Counter
	EventsEnded           prometheus.Counter
	IssuanceFailures      *prometheus.CounterVec // labels: stage={vtec_save,merge,lifecycle}

	// Collaborator metrics.
	ServiceCache     *prometheus.CounterVec // labels: service={metadata,river}, result={hit,miss}
	RiverRequests    *prometheus.CounterVec // labels: outcome={success,error,missing}
	RiverAPIDuration prometheus.Histogram
}

func newMetrics(help bool) *Metrics {
	h := func(s string) string {
		if help {
			return s
		}
		return ""
	}
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_consumed_total",
			Help:      h("Total event-set requests read from the request topic."),
		}),
		ProductsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_published_total",
			Help:      h("Total product dictionaries written to the product topic."),
		}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      h("Requests that could not be turned into products, by reason."),
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      h("1 when the pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      h("Number of requests per batch extracted from Kafka."),
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      h("Duration of a complete batch extract-generate-publish cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      h("Product generations by mode and outcome."),
		}, []string{"mode", "outcome"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      h("Duration of one product generation."),
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ProductsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_generated_total",
			Help:      h("Product dictionaries generated by product ID."),
		}, []string{"product_id"}),
		CancellationsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_detected_total",
			Help:      h("Events found partially or automatically cancelled."),
		}),
		EventsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ended_total",
			Help:      h("Hazard events moved to ended on issuance."),
		}),
		IssuanceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issuance_failures_total",
			Help:      h("Issuance failures by stage."),
		}, []string{"stage"}),
		ServiceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_cache_total",
			Help:      h("Collaborator cache lookups by service and result."),
		}, []string{"service", "result"}),
		RiverAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "river_api_duration_seconds",
			Help:      h("River forecast service request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RiverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "river_requests_total",
			Help:      h("River forecast service requests by outcome."),
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ProductsPublished,
		m.RequestErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Generations,
		m.GenerationDuration,
		m.ProductsGenerated,
		m.CancellationsDetected,
		m.EventsEnded,
		m.IssuanceFailures,
		m.ServiceCache,
		m.RiverAPIDuration,
		m.RiverRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
