package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "graphbatch"

// Registry holds all metrics for the application. A nil *Registry is valid
// and records nothing.
type Registry struct {
	// Render Metrics
	StatementsRendered *prometheus.CounterVec
	EntitiesRendered   *prometheus.CounterVec
	RenderErrors       *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec

	// Graph Metrics
	StatementsExecuted *prometheus.CounterVec
	StatementDuration  *prometheus.HistogramVec
	StatementsInFlight prometheus.Gauge

	// Ingest Metrics
	IngestGroupsTotal *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	namespace string
	registry  *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry(DefaultNamespace)
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized. An empty
// namespace falls back to DefaultNamespace.
func NewRegistry(namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		namespace: namespace,
		registry:  reg,
	}

	r.initRenderMetrics()
	r.initGraphMetrics()
	r.initIngestMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
