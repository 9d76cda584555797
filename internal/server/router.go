package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vanshika/graphbatch/internal/metrics"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	Metrics          *metrics.Registry
	MetricsPath      string
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the service.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	routes := map[string]struct{}{"/healthz": {}}

	mux.HandleFunc("/healthz", healthHandler(logger, deps.Health))

	if deps.API != nil {
		for path, fn := range map[string]http.HandlerFunc{
			"/render":   deps.API.handleRender,
			"/ingest":   deps.API.handleIngest,
			"/vertices": deps.API.handleVertices,
			"/edges":    deps.API.handleEdges,
			"/schema":   deps.API.handleSchema,
		} {
			mux.HandleFunc(path, fn)
			routes[path] = struct{}{}
		}
	}

	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, deps.Metrics.Handler())
		routes[path] = struct{}{}
	}

	handler := http.Handler(loggingMiddleware(logger, deps.Metrics, routes, mux))
	if len(deps.AllowedOrigins) > 0 {
		handler = newCORSPolicy(deps.AllowedOrigins, deps.AllowCredentials).wrap(handler)
	}
	return handler
}

// loggingMiddleware logs every request and records it in reg. Paths outside
// routes are labelled "unmatched" to bound metric cardinality.
func loggingMiddleware(logger *slog.Logger, reg *metrics.Registry, routes map[string]struct{}, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		path := r.URL.Path
		if _, ok := routes[path]; !ok {
			path = "unmatched"
		}
		reg.RecordHTTPRequest(r.Method, path, strconv.Itoa(sw.status), elapsed)

		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// statusWriter remembers the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
