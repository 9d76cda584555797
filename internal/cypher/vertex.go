package cypher

import (
	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/schema"
)

// VertexBatch renders one MERGE clause per vertex:
//
//	MERGE (v0 {vid: "100"}) SET v0:player, v0.name = "Tim", v0.age = 42
type VertexBatch struct {
	batch
	vertices []domain.Vertex
}

var _ ngql.Engine = (*VertexBatch)(nil)

// NewVertexBatch validates the batch like ngql.NewVertexBatch.
func NewVertexBatch(vertices []domain.Vertex, opts ...ngql.Option) (*VertexBatch, error) {
	d, err := ngql.Capture(schema.KindTag, len(vertices), func(i int) *schema.Descriptor {
		return vertices[i].Schema
	})
	if err != nil {
		return nil, err
	}
	return &VertexBatch{batch: newBatch(d, len(vertices), opts), vertices: vertices}, nil
}

func (b *VertexBatch) Entities() []domain.Entity {
	out := make([]domain.Entity, len(b.vertices))
	for i, v := range b.vertices {
		out[i] = v
	}
	return out
}

func (b *VertexBatch) clause(v domain.Vertex, j int) (string, error) {
	key, err := b.key(b.schema.KeyPolicy(), v.ID, "vid")
	if err != nil {
		return "", err
	}
	a := alias("v", j)
	set, err := b.set(a, b.schema.Name(), v.Props)
	if err != nil {
		return "", err
	}
	return "MERGE (" + a + " {" + IDProperty + ": " + key + "})" + set, nil
}

// RenderSingle renders a statement for one vertex of the batch tag.
func (b *VertexBatch) RenderSingle(v domain.Vertex) (string, error) {
	if !b.schema.Equal(v.Schema) {
		return "", &ngql.SchemaMismatchError{Index: -1, Want: b.schema, Got: v.Schema}
	}
	return b.clause(v, 0)
}

// RenderBatch renders statements of at most limit MERGE clauses.
func (b *VertexBatch) RenderBatch(limit int) ([]string, error) {
	return b.render(len(b.vertices), limit, func(i, j int) (string, error) {
		return b.clause(b.vertices[i], j)
	})
}

func (b *VertexBatch) Statements() ([]string, error) {
	return b.RenderBatch(b.opts.BatchSize)
}
