package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.StatementsRendered = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "statements_rendered_total",
			Help:      "Total number of statements generated",
		},
		[]string{"dialect", "label"},
	)

	r.EntitiesRendered = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "entities_rendered_total",
			Help:      "Total number of vertices and edges turned into statements",
		},
		[]string{"kind", "label"},
	)

	r.RenderErrors = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "render_errors_total",
			Help:      "Batches rejected during statement generation, by error kind",
		},
		[]string{"kind"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent generating the statements of one batch",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"dialect"},
	)
}
