package metrics

import (
	"time"
)

// RecordRender records one successfully rendered batch.
func (r *Registry) RecordRender(dialect, kind, label string, entities, statements int, duration time.Duration) {
	if r == nil {
		return
	}
	r.StatementsRendered.WithLabelValues(dialect, label).Add(float64(statements))
	r.EntitiesRendered.WithLabelValues(kind, label).Add(float64(entities))
	r.RenderDuration.WithLabelValues(dialect).Observe(duration.Seconds())
}

// RecordRenderError records a batch rejected with the given error kind.
func (r *Registry) RecordRenderError(kind string) {
	if r == nil {
		return
	}
	r.RenderErrors.WithLabelValues(kind).Inc()
}

// StatementStarted marks a statement as in flight.
func (r *Registry) StatementStarted() {
	if r == nil {
		return
	}
	r.StatementsInFlight.Inc()
}

// RecordStatement records a finished statement and clears it from in flight.
func (r *Registry) RecordStatement(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.StatementsInFlight.Dec()
	r.StatementsExecuted.WithLabelValues(status).Inc()
	r.StatementDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordIngestGroup records one label group handled by the ingestor.
func (r *Registry) RecordIngestGroup(kind, status string) {
	if r == nil {
		return
	}
	r.IngestGroupsTotal.WithLabelValues(kind, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
