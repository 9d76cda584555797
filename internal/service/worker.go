package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/logging"
	"github.com/vanshika/graphbatch/internal/metrics"
	"github.com/vanshika/graphbatch/internal/schema"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString(" " + err.Error() + ";")
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Writer persists batches of one label. *repository.Repository implements it.
type Writer interface {
	SaveVertices(ctx context.Context, vertices []domain.Vertex) (int, error)
	SaveEdges(ctx context.Context, edges []domain.Edge) (int, error)
}

// Summary counts what an ingestion wrote.
type Summary struct {
	Vertices int `json:"vertices"`
	Edges    int `json:"edges"`
	Groups   int `json:"groups"`
}

// BulkIngestor writes mixed entity streams one label group at a time, with
// several groups in flight.
type BulkIngestor struct {
	writer  Writer
	catalog *schema.Catalog
	workers int
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided
// concurrency. reg and logger may be nil.
func NewBulkIngestor(writer Writer, catalog *schema.Catalog, workers int, reg *metrics.Registry, logger *slog.Logger) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &BulkIngestor{
		writer:  writer,
		catalog: catalog,
		workers: workers,
		metrics: reg,
		logger:  logger.With("component", "ingestor"),
	}
}

// Catalog returns the catalog inputs are resolved against.
func (bi *BulkIngestor) Catalog() *schema.Catalog { return bi.catalog }

// Ingest writes all vertices of ds, then all of its edges.
func (bi *BulkIngestor) Ingest(ctx context.Context, ds Dataset) (Summary, error) {
	vs, err := bi.IngestVertices(ctx, ds.Vertices)
	if err != nil {
		return vs, err
	}
	es, err := bi.IngestEdges(ctx, ds.Edges)
	return Summary{
		Vertices: vs.Vertices,
		Edges:    es.Edges,
		Groups:   vs.Groups + es.Groups,
	}, err
}

// IngestVertices groups the inputs by tag and writes the groups concurrently.
// Nothing is written if any input names an unknown tag.
func (bi *BulkIngestor) IngestVertices(ctx context.Context, inputs []VertexInput) (Summary, error) {
	groups, err := GroupVertices(bi.catalog, inputs)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		summary = Summary{Groups: len(groups)}
	)
	err = bi.run(ctx, len(groups), func(idx int) error {
		g := groups[idx]
		n, err := bi.writer.SaveVertices(ctx, g.Vertices)
		bi.record("tag", g.Label, len(g.Vertices), err)
		if err != nil {
			return fmt.Errorf("tag %s: %w", g.Label, err)
		}
		mu.Lock()
		summary.Vertices += n
		mu.Unlock()
		return nil
	})
	return summary, err
}

// IngestEdges groups the inputs by edge type and writes the groups
// concurrently.
func (bi *BulkIngestor) IngestEdges(ctx context.Context, inputs []EdgeInput) (Summary, error) {
	groups, err := GroupEdges(bi.catalog, inputs)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		summary = Summary{Groups: len(groups)}
	)
	err = bi.run(ctx, len(groups), func(idx int) error {
		g := groups[idx]
		n, err := bi.writer.SaveEdges(ctx, g.Edges)
		bi.record("edge", g.Label, len(g.Edges), err)
		if err != nil {
			return fmt.Errorf("edge %s: %w", g.Label, err)
		}
		mu.Lock()
		summary.Edges += n
		mu.Unlock()
		return nil
	})
	return summary, err
}

func (bi *BulkIngestor) record(kind, label string, size int, err error) {
	if err != nil {
		bi.metrics.RecordIngestGroup(kind, "error")
		bi.logger.Warn("group failed", "kind", kind, "label", label, "entities", size, "error", err)
		return
	}
	bi.metrics.RecordIngestGroup(kind, "success")
	bi.logger.Info("group written", "kind", kind, "label", label, "entities", size)
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < min(bi.workers, total); i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
