package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphbatch/internal/config"
	"github.com/vanshika/graphbatch/internal/graph"
	"github.com/vanshika/graphbatch/internal/logging"
	"github.com/vanshika/graphbatch/internal/metrics"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/repository"
	"github.com/vanshika/graphbatch/internal/schema"
	"github.com/vanshika/graphbatch/internal/service"
)

const catalogYAML = `
space: basketball
tags:
  - name: player
    fields:
      - {name: name, type: string}
      - {name: age, type: int}
edges:
  - name: follow
    fields:
      - {name: degree, type: int}
`

type fixture struct {
	mem     *graph.MemoryClient
	reg     *metrics.Registry
	handler http.Handler
}

func newFixture(t *testing.T, batch ngql.Options, maxBody int64) fixture {
	t.Helper()
	cat, err := schema.ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)

	mem := graph.NewMemoryClient()
	reg := metrics.NewRegistry("test")
	logger := logging.Discard()
	repo := repository.New(mem, repository.WithBatchOptions(batch), repository.WithMetrics(reg))
	ingestor := service.NewBulkIngestor(repo, cat, 2, reg, logger)
	api := NewAPIHandlers(logger, ingestor, APIOptions{Batch: batch, MaxBodyBytes: maxBody})

	return fixture{
		mem: mem,
		reg: reg,
		handler: NewRouter(logger, RouterDependencies{
			Health:         GraphHealthService{Client: mem},
			API:            api,
			Metrics:        reg,
			AllowedOrigins: []string{"http://localhost:3000"},
		}),
	}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRender(t *testing.T) {
	f := newFixture(t, ngql.Options{BatchSize: 2}, 0)
	body := `{"vertices": [
		{"tag": "player", "id": "100", "props": {"name": "Tim", "age": 42}},
		{"tag": "player", "id": "101", "props": {"name": "Tony"}},
		{"tag": "player", "id": "102", "props": {"name": "Manu", "age": 41}}
	], "edges": [
		{"type": "follow", "src": "100", "dst": "101", "rank": 1, "props": {"degree": 95}}
	]}`

	rec := f.do(http.MethodPost, "/render", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp renderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ngql", resp.Dialect)
	assert.Equal(t, 3, resp.Statements)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, []string{
		`INSERT VERTEX player ( name,age )  VALUES "100":( "Tim", 42),"101":( "Tony", NULL)`,
		`INSERT VERTEX player ( name,age )  VALUES "102":( "Manu", 41)`,
	}, resp.Groups[0].Statements)
	assert.Equal(t, []string{
		`INSERT EDGE follow ( degree )  VALUES "100"->"101"@1:( 95)`,
	}, resp.Groups[1].Statements)

	assert.Empty(t, f.mem.Statements(), "render must not execute")
}

func TestHandleRenderText(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	rec := f.do(http.MethodPost, "/render?format=text",
		`{"vertices": [{"tag": "player", "id": "1", "props": {"name": "a", "age": 1}}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `INSERT VERTEX player ( name,age )  VALUES "1":( "a", 1);`+"\n", rec.Body.String())
}

func TestHandleRenderErrors(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, `{"vertices": [`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, `{"nodes": []}`, http.StatusBadRequest},
		{"unknown tag", http.MethodPost, `{"vertices": [{"tag": "coach", "id": "1"}]}`, http.StatusBadRequest},
		{"bad value", http.MethodPost, `{"vertices": [{"tag": "player", "id": "1", "props": {"age": "old"}}]}`, http.StatusBadRequest},
		{"bad key", http.MethodPost, `{"vertices": [{"tag": "player", "id": ""}]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, "/render", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var payload map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestHandleVertices(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	rec := f.do(http.MethodPost, "/vertices", `[
		{"tag": "player", "id": "100", "props": {"name": "Tim", "age": 42}},
		{"tag": "player", "id": "101", "props": {"name": "Tony", "age": 36}}
	]`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ingestResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Vertices)
	assert.Equal(t, 1, resp.Groups)

	assert.Equal(t, []string{
		`INSERT VERTEX player ( name,age )  VALUES "100":( "Tim", 42),"101":( "Tony", 36)`,
	}, f.mem.Statements())
}

func TestHandleEdges(t *testing.T) {
	f := newFixture(t, ngql.Options{BatchSize: 1}, 0)
	rec := f.do(http.MethodPost, "/edges", `[
		{"type": "follow", "src": "100", "dst": "101", "props": {"degree": 95}},
		{"type": "follow", "src": "101", "dst": "100", "props": {"degree": 90}}
	]`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.ElementsMatch(t, []string{
		`INSERT EDGE follow ( degree )  VALUES "100"->"101":( 95)`,
		`INSERT EDGE follow ( degree )  VALUES "101"->"100":( 90)`,
	}, f.mem.Statements())

	empty := f.do(http.MethodPost, "/edges", `[]`)
	assert.Equal(t, http.StatusBadRequest, empty.Code)
}

func TestHandleIngest(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	rec := f.do(http.MethodPost, "/ingest", `{
		"vertices": [{"tag": "player", "id": "1", "props": {"name": "a", "age": 1}}],
		"edges": [{"type": "follow", "src": "1", "dst": "1", "props": {"degree": 1}}]
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	stmts := f.mem.Statements()
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "INSERT VERTEX"), "vertices are written before edges")
	assert.True(t, strings.HasPrefix(stmts[1], "INSERT EDGE"))
}

func TestHandleIngestGraphFailure(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	f.mem.WithError(&graph.ExecutionError{Code: -1005, Message: "SpaceNotFound"})

	rec := f.do(http.MethodPost, "/vertices", `[{"tag": "player", "id": "1"}]`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 32)
	body := `[{"tag": "player", "id": "1", "props": {"name": "` + strings.Repeat("x", 64) + `"}}]`

	rec := f.do(http.MethodPost, "/vertices", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.mem.Statements())
}

func TestHandleSchema(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	rec := f.do(http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp schemaResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "basketball", resp.Space)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "player", resp.Tags[0].Name)
	assert.Equal(t, "string_key", resp.Tags[0].KeyPolicy)
	assert.Equal(t, []fieldResponse{{Name: "name", Type: "string"}, {Name: "age", Type: "int"}}, resp.Tags[0].Fields)
	require.Len(t, resp.Edges, 1)
	assert.Equal(t, "edge", resp.Edges[0].Kind)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	f.mem.WithConnectivityError(errors.New("graphd unreachable"))
	rec = f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, "degraded", payload["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)
	f.do(http.MethodGet, "/healthz", "")
	f.do(http.MethodGet, "/nope", "")

	assert.Equal(t, float64(1), testutil.ToFloat64(f.reg.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.reg.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	rec := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(body, []byte("test_http_requests_total")))
}

func TestCORS(t *testing.T) {
	f := newFixture(t, ngql.Options{}, 0)

	req := httptest.NewRequest(http.MethodOptions, "/render", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/render", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := New(logging.Discard(), config.HTTPConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
