package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/graphbatch/internal/cypher"
	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/graph"
	"github.com/vanshika/graphbatch/internal/logging"
	"github.com/vanshika/graphbatch/internal/metrics"
	"github.com/vanshika/graphbatch/internal/ngql"
)

const defaultConcurrency = 1

// Repository renders entity batches in the configured dialect and submits the
// statements through a graph client.
type Repository struct {
	client      graph.Client
	dialect     ngql.Dialect
	batch       ngql.Options
	concurrency int
	metrics     *metrics.Registry
	logger      *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithDialect selects the statement dialect. The default is nGQL.
func WithDialect(d ngql.Dialect) Option {
	return func(r *Repository) {
		if d != nil {
			r.dialect = d
		}
	}
}

// WithBatchOptions sets the options every engine is built with.
func WithBatchOptions(opts ngql.Options) Option {
	return func(r *Repository) { r.batch = opts }
}

// WithConcurrency bounds the statements of one batch in flight at once.
func WithConcurrency(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithMetrics records render and execution metrics into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Repository) { r.metrics = reg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client, opts ...Option) *Repository {
	r := &Repository{
		client:      client,
		dialect:     ngql.NGQL,
		concurrency: defaultConcurrency,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "repository", "dialect", r.dialect.Name())
	return r
}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (ngql.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ngql", "nebula":
		return ngql.NGQL, nil
	case "cypher", "opencypher", "neo4j":
		return cypher.Dialect, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// Dialect returns the dialect statements are rendered in.
func (r *Repository) Dialect() ngql.Dialect { return r.dialect }

// VertexEngine builds an engine for vertices sharing one tag.
func (r *Repository) VertexEngine(vertices []domain.Vertex) (ngql.Engine, error) {
	eng, err := r.dialect.VertexEngine(vertices, ngql.WithOptions(r.batch))
	if err != nil {
		r.metrics.RecordRenderError(ngql.ErrorKind(err))
		return nil, fmt.Errorf("build vertex batch: %w", err)
	}
	return eng, nil
}

// EdgeEngine builds an engine for edges sharing one edge type.
func (r *Repository) EdgeEngine(edges []domain.Edge) (ngql.Engine, error) {
	eng, err := r.dialect.EdgeEngine(edges, ngql.WithOptions(r.batch))
	if err != nil {
		r.metrics.RecordRenderError(ngql.ErrorKind(err))
		return nil, fmt.Errorf("build edge batch: %w", err)
	}
	return eng, nil
}

// SaveVertices writes vertices sharing one tag and returns how many were
// written.
func (r *Repository) SaveVertices(ctx context.Context, vertices []domain.Vertex) (int, error) {
	eng, err := r.VertexEngine(vertices)
	if err != nil {
		return 0, err
	}
	return r.Apply(ctx, eng)
}

// SaveEdges writes edges sharing one edge type and returns how many were
// written.
func (r *Repository) SaveEdges(ctx context.Context, edges []domain.Edge) (int, error) {
	eng, err := r.EdgeEngine(edges)
	if err != nil {
		return 0, err
	}
	return r.Apply(ctx, eng)
}

// Render returns the statements of eng, recording render metrics.
func (r *Repository) Render(eng ngql.Engine) ([]string, error) {
	d := eng.Schema()
	start := time.Now()
	stmts, err := eng.Statements()
	if err != nil {
		r.metrics.RecordRenderError(ngql.ErrorKind(err))
		return nil, fmt.Errorf("render %s: %w", d, err)
	}

	entities := len(eng.Entities())
	r.metrics.RecordRender(r.dialect.Name(), d.Kind().String(), d.Name(), entities, len(stmts), time.Since(start))
	r.logger.Debug("rendered batch", "label", d.Name(), "kind", d.Kind().String(), "entities", entities, "statements", len(stmts))
	return stmts, nil
}

// Apply renders eng and submits every statement. Nothing is submitted when
// rendering fails. Submission stops at the first failing statement; earlier
// statements may already have been applied.
func (r *Repository) Apply(ctx context.Context, eng ngql.Engine) (int, error) {
	stmts, err := r.Render(eng)
	if err != nil {
		return 0, err
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)
	for i, stmt := range stmts {
		if gctx.Err() != nil {
			break
		}
		i, stmt := i, stmt
		eg.Go(func() error {
			return r.execute(gctx, i, stmt)
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, fmt.Errorf("write %s: %w", eng.Schema(), err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(eng.Entities()), nil
}

func (r *Repository) execute(ctx context.Context, idx int, stmt string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.metrics.StatementStarted()
	start := time.Now()
	_, err := r.client.ExecuteWrite(ctx, stmt, nil)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.RecordStatement("error", elapsed)
		r.logger.Error("statement failed", "index", idx, "error", err)
		return fmt.Errorf("statement %d: %w", idx, err)
	}
	r.metrics.RecordStatement("success", elapsed)
	return nil
}
