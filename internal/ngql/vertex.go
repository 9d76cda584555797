package ngql

import (
	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/schema"
)

// VertexBatch renders INSERT VERTEX statements for vertices sharing one tag.
// It keeps a read-only view of the slice it was built from; callers must not
// modify the vertices while the batch is in use.
type VertexBatch struct {
	batch
	vertices []domain.Vertex
}

var _ Engine = (*VertexBatch)(nil)

// NewVertexBatch captures the tag of the first vertex and checks every other
// vertex against it. An empty slice fails with ErrEmptyInput.
func NewVertexBatch(vertices []domain.Vertex, opts ...Option) (*VertexBatch, error) {
	d, err := Capture(schema.KindTag, len(vertices), func(i int) *schema.Descriptor {
		return vertices[i].Schema
	})
	if err != nil {
		return nil, err
	}
	return &VertexBatch{
		batch:    newBatch(d, len(vertices), opts),
		vertices: vertices,
	}, nil
}

// Vertices returns the batch contents.
func (b *VertexBatch) Vertices() []domain.Vertex { return b.vertices }

// Entities implements Engine.
func (b *VertexBatch) Entities() []domain.Entity {
	out := make([]domain.Entity, len(b.vertices))
	for i, v := range b.vertices {
		out[i] = v
	}
	return out
}

// Identity renders the vid literal of v under the tag's key policy.
func (b *VertexBatch) Identity(v domain.Vertex) (string, error) {
	key, err := b.format.Key(b.schema.KeyPolicy(), v.ID)
	if err != nil {
		return "", withRole(err, b.schema.Name(), "vid")
	}
	return key, nil
}

// Fragment renders `<vid>:( <values>)` for one vertex.
func (b *VertexBatch) Fragment(v domain.Vertex) (string, error) {
	key, err := b.Identity(v)
	if err != nil {
		return "", err
	}
	return b.fragment(key, v.Props)
}

// RenderSingle renders one complete statement for v, which must share the
// batch tag.
func (b *VertexBatch) RenderSingle(v domain.Vertex) (string, error) {
	if err := b.checkSchema(v.Schema); err != nil {
		return "", err
	}
	frag, err := b.Fragment(v)
	if err != nil {
		return "", err
	}
	return b.prefix + frag, nil
}

// RenderBatch renders the whole batch as statements of at most limit vertices.
// A limit of zero or less puts everything in one statement.
func (b *VertexBatch) RenderBatch(limit int) ([]string, error) {
	return b.chunk(len(b.vertices), limit, func(i int) (string, error) {
		return b.Fragment(b.vertices[i])
	})
}

// Statements implements Engine. A batch size of one yields one single-entity
// statement per vertex; anything larger yields chunked statements.
func (b *VertexBatch) Statements() ([]string, error) {
	return b.statements(len(b.vertices),
		func(i int) (string, error) { return b.RenderSingle(b.vertices[i]) },
		b.RenderBatch)
}

// Script renders Statements as one `;` separated script.
func (b *VertexBatch) Script() (string, error) {
	stmts, err := b.Statements()
	if err != nil {
		return "", err
	}
	return Script(stmts), nil
}
