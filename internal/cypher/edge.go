package cypher

import (
	"errors"

	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/schema"
)

// EdgeBatch merges both endpoints by vid and then the relationship:
//
//	MERGE (s0 {vid: "a"}) MERGE (d0 {vid: "b"}) MERGE (s0)-[e0:follow {rank: 1}]->(d0) SET e0.degree = 5
type EdgeBatch struct {
	batch
	edges []domain.Edge
}

var _ ngql.Engine = (*EdgeBatch)(nil)

// NewEdgeBatch validates the batch like ngql.NewEdgeBatch.
func NewEdgeBatch(edges []domain.Edge, opts ...ngql.Option) (*EdgeBatch, error) {
	d, err := ngql.Capture(schema.KindEdge, len(edges), func(i int) *schema.Descriptor {
		return edges[i].Schema
	})
	if err != nil {
		return nil, err
	}
	return &EdgeBatch{batch: newBatch(d, len(edges), opts), edges: edges}, nil
}

func (b *EdgeBatch) Entities() []domain.Entity {
	out := make([]domain.Entity, len(b.edges))
	for i, e := range b.edges {
		out[i] = e
	}
	return out
}

func (b *EdgeBatch) clause(e domain.Edge, j int) (string, error) {
	rawSrc, rawDst, rawRank := e.Endpoints()
	src, err := b.key(b.schema.SrcPolicy(), rawSrc, "src")
	if err != nil {
		return "", err
	}
	dst, err := b.key(b.schema.DstPolicy(), rawDst, "dst")
	if err != nil {
		return "", err
	}
	rank, ok, err := b.format.Rank(rawRank)
	if err != nil {
		return "", b.rankError(err)
	}

	s, d, r := alias("s", j), alias("d", j), alias("e", j)
	rel := r + ":" + b.schema.Name()
	if ok {
		rel += " {rank: " + rank + "}"
	}
	set, err := b.set(r, "", e.Props)
	if err != nil {
		return "", err
	}
	return "MERGE (" + s + " {" + IDProperty + ": " + src + "}) " +
		"MERGE (" + d + " {" + IDProperty + ": " + dst + "}) " +
		"MERGE (" + s + ")-[" + rel + "]->(" + d + ")" + set, nil
}

func (b *EdgeBatch) rankError(err error) error {
	var ke *ngql.KeyError
	if errors.As(err, &ke) {
		ke.Label = b.schema.Name()
	}
	return err
}

// RenderSingle renders a statement for one edge of the batch edge type.
func (b *EdgeBatch) RenderSingle(e domain.Edge) (string, error) {
	if !b.schema.Equal(e.Schema) {
		return "", &ngql.SchemaMismatchError{Index: -1, Want: b.schema, Got: e.Schema}
	}
	return b.clause(e, 0)
}

// RenderBatch renders statements of at most limit edge clauses.
func (b *EdgeBatch) RenderBatch(limit int) ([]string, error) {
	return b.render(len(b.edges), limit, func(i, j int) (string, error) {
		return b.clause(b.edges[i], j)
	})
}

func (b *EdgeBatch) Statements() ([]string, error) {
	return b.RenderBatch(b.opts.BatchSize)
}
