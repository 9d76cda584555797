package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphbatch/internal/cypher"
	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/graph"
	"github.com/vanshika/graphbatch/internal/metrics"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/schema"
)

var (
	playerTag  = schema.NewTag("player").Field("name", schema.String).Field("age", schema.Int).MustBuild()
	followEdge = schema.NewEdge("follow").Field("degree", schema.Int).MustBuild()
)

func players(n int) []domain.Vertex {
	vs := make([]domain.Vertex, n)
	for i := range vs {
		vs[i] = domain.Vertex{Schema: playerTag, ID: 100 + i, Props: map[string]any{"name": "p", "age": 30 + i}}
	}
	return vs
}

func TestRepository_SaveVertices(t *testing.T) {
	mem := graph.NewMemoryClient()
	reg := metrics.NewRegistry("test")
	repo := New(mem, WithBatchOptions(ngql.Options{BatchSize: 2}), WithMetrics(reg))

	n, err := repo.SaveVertices(context.Background(), players(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, []string{
		`INSERT VERTEX player ( name,age )  VALUES "100":( "p", 30),"101":( "p", 31)`,
		`INSERT VERTEX player ( name,age )  VALUES "102":( "p", 32)`,
	}, mem.Statements())
	for _, e := range mem.Executed() {
		assert.True(t, e.Write)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(reg.StatementsRendered.WithLabelValues("ngql", "player")))
	assert.Equal(t, float64(3), testutil.ToFloat64(reg.EntitiesRendered.WithLabelValues("tag", "player")))
	assert.Equal(t, float64(2), testutil.ToFloat64(reg.StatementsExecuted.WithLabelValues("success")))
}

func TestRepository_SaveEdgesConcurrently(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem, WithBatchOptions(ngql.Options{BatchSize: 1}), WithConcurrency(4))

	edges := []domain.Edge{
		{Schema: followEdge, Src: "a", Dst: "b", Props: map[string]any{"degree": 1}},
		{Schema: followEdge, Src: "b", Dst: "c", Props: map[string]any{"degree": 2}},
		{Schema: followEdge, Src: "c", Dst: "a", Rank: 1, Props: map[string]any{"degree": 3}},
	}

	n, err := repo.SaveEdges(context.Background(), edges)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.ElementsMatch(t, []string{
		`INSERT EDGE follow ( degree )  VALUES "a"->"b":( 1)`,
		`INSERT EDGE follow ( degree )  VALUES "b"->"c":( 2)`,
		`INSERT EDGE follow ( degree )  VALUES "c"->"a"@1:( 3)`,
	}, mem.Statements())
}

func TestRepository_CypherDialect(t *testing.T) {
	mem := graph.NewMemoryClient()
	d, err := DialectByName("neo4j")
	require.NoError(t, err)
	require.Same(t, cypher.Dialect, d)

	repo := New(mem, WithDialect(d))
	_, err = repo.SaveVertices(context.Background(), players(1))
	require.NoError(t, err)
	assert.Equal(t, []string{`MERGE (v0:player {vid: "100"}) SET v0.name = "p", v0.age = 30`}, mem.Statements())
}

func TestRepository_RenderFailureSubmitsNothing(t *testing.T) {
	mem := graph.NewMemoryClient()
	reg := metrics.NewRegistry("test")
	repo := New(mem, WithMetrics(reg))

	vs := players(2)
	vs[1].ID = nil

	_, err := repo.SaveVertices(context.Background(), vs)
	require.Error(t, err)
	assert.True(t, ngql.IsInvalidKey(err))
	assert.Empty(t, mem.Executed())
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.RenderErrors.WithLabelValues("invalid_key")))

	_, err = repo.SaveVertices(context.Background(), nil)
	assert.ErrorIs(t, err, ngql.ErrEmptyInput)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.RenderErrors.WithLabelValues("empty_input")))
}

func TestRepository_ClientFailure(t *testing.T) {
	boom := errors.New("SemanticError: tag not found")
	mem := graph.NewMemoryClient().FailOn(`"101"`, boom)
	reg := metrics.NewRegistry("test")
	repo := New(mem, WithBatchOptions(ngql.Options{BatchSize: 1}), WithMetrics(reg))

	n, err := repo.SaveVertices(context.Background(), players(3))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.StatementsExecuted.WithLabelValues("error")))
	assert.Equal(t, float64(0), testutil.ToFloat64(reg.StatementsInFlight))
}

func TestRepository_CancelledContext(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.SaveVertices(ctx, players(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.Executed())
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("")
	require.NoError(t, err)
	assert.Equal(t, "ngql", d.Name())

	_, err = DialectByName("gremlin")
	assert.Error(t, err)
}
