package ngql

import (
	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/schema"
)

// EdgeBatch renders INSERT EDGE statements for edges sharing one edge type.
// Like VertexBatch it holds the caller's slice without copying it.
type EdgeBatch struct {
	batch
	edges []domain.Edge
}

var _ Engine = (*EdgeBatch)(nil)

// NewEdgeBatch captures the edge type of the first edge and checks every other
// edge against it.
func NewEdgeBatch(edges []domain.Edge, opts ...Option) (*EdgeBatch, error) {
	d, err := Capture(schema.KindEdge, len(edges), func(i int) *schema.Descriptor {
		return edges[i].Schema
	})
	if err != nil {
		return nil, err
	}
	return &EdgeBatch{
		batch: newBatch(d, len(edges), opts),
		edges: edges,
	}, nil
}

// Edges returns the batch contents.
func (b *EdgeBatch) Edges() []domain.Edge { return b.edges }

// Entities implements Engine.
func (b *EdgeBatch) Entities() []domain.Entity {
	out := make([]domain.Entity, len(b.edges))
	for i, e := range b.edges {
		out[i] = e
	}
	return out
}

// Endpoints renders the source, destination and optional rank literals of e.
func (b *EdgeBatch) Endpoints(e domain.Edge) (src, dst, rank string, err error) {
	return EdgeEndpoints(b.format, b.schema, e)
}

// EdgeEndpoints resolves the identity literals of e under d. rank is empty
// when the edge has none.
func EdgeEndpoints(f Formatter, d *schema.Descriptor, e domain.Edge) (src, dst, rank string, err error) {
	rawSrc, rawDst, rawRank := e.Endpoints()
	if src, err = f.Key(d.SrcPolicy(), rawSrc); err != nil {
		return "", "", "", withRole(err, d.Name(), "src")
	}
	if dst, err = f.Key(d.DstPolicy(), rawDst); err != nil {
		return "", "", "", withRole(err, d.Name(), "dst")
	}
	rank, _, err = f.Rank(rawRank)
	if err != nil {
		return "", "", "", withRole(err, d.Name(), "rank")
	}
	return src, dst, rank, nil
}

// Identity renders `<src>-><dst>` or `<src>-><dst>@<rank>`.
func (b *EdgeBatch) Identity(e domain.Edge) (string, error) {
	src, dst, rank, err := b.Endpoints(e)
	if err != nil {
		return "", err
	}
	id := src + "->" + dst
	if rank != "" {
		id += "@" + rank
	}
	return id, nil
}

// Fragment renders `<src>-><dst>[@<rank>]:( <values>)` for one edge.
func (b *EdgeBatch) Fragment(e domain.Edge) (string, error) {
	id, err := b.Identity(e)
	if err != nil {
		return "", err
	}
	return b.fragment(id, e.Props)
}

// RenderSingle renders one complete statement for e, which must share the
// batch edge type.
func (b *EdgeBatch) RenderSingle(e domain.Edge) (string, error) {
	if err := b.checkSchema(e.Schema); err != nil {
		return "", err
	}
	frag, err := b.Fragment(e)
	if err != nil {
		return "", err
	}
	return b.prefix + frag, nil
}

// RenderBatch renders the whole batch as statements of at most limit edges.
func (b *EdgeBatch) RenderBatch(limit int) ([]string, error) {
	return b.chunk(len(b.edges), limit, func(i int) (string, error) {
		return b.Fragment(b.edges[i])
	})
}

// Statements implements Engine.
func (b *EdgeBatch) Statements() ([]string, error) {
	return b.statements(len(b.edges),
		func(i int) (string, error) { return b.RenderSingle(b.edges[i]) },
		b.RenderBatch)
}

// Script renders Statements as one `;` separated script.
func (b *EdgeBatch) Script() (string, error) {
	stmts, err := b.Statements()
	if err != nil {
		return "", err
	}
	return Script(stmts), nil
}
