package ngql

import (
	"fmt"

	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/schema"
)

// StatementSeparator separates statements in a multi-statement script.
const StatementSeparator = ";"

// Engine is what the transport side sees of a batch: the entities it was
// built from, their schema and the statements that write them.
type Engine interface {
	Entities() []domain.Entity
	Schema() *schema.Descriptor
	Statements() ([]string, error)
	Labels() []*schema.Descriptor
}

// Dialect builds engines for one target query language.
type Dialect interface {
	Name() string
	VertexEngine(vertices []domain.Vertex, opts ...Option) (Engine, error)
	EdgeEngine(edges []domain.Edge, opts ...Option) (Engine, error)
}

// NGQL is the nGQL dialect.
var NGQL Dialect = nebulaDialect{}

type nebulaDialect struct{}

func (nebulaDialect) Name() string { return "ngql" }

func (nebulaDialect) VertexEngine(vertices []domain.Vertex, opts ...Option) (Engine, error) {
	b, err := NewVertexBatch(vertices, opts...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (nebulaDialect) EdgeEngine(edges []domain.Edge, opts ...Option) (Engine, error) {
	b, err := NewEdgeBatch(edges, opts...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Capture checks that a batch of n entities is non-empty, that the first
// entity carries a valid schema of the wanted kind and that every other
// entity shares it. schemaAt returns the schema of entity i.
func Capture(kind schema.Kind, n int, schemaAt func(i int) *schema.Descriptor) (*schema.Descriptor, error) {
	if n == 0 {
		return nil, ErrEmptyInput
	}
	d := schemaAt(0)
	if d == nil {
		return nil, fmt.Errorf("%w: entity 0 has no schema", schema.ErrInvalidSchema)
	}
	if d.Kind() != kind {
		return nil, fmt.Errorf("%w: %s cannot be written as a %s", schema.ErrInvalidSchema, d, kind)
	}
	if err := schema.Validate(d); err != nil {
		return nil, err
	}
	for i := 1; i < n; i++ {
		if got := schemaAt(i); !d.Equal(got) {
			return nil, &SchemaMismatchError{Index: i, Want: d, Got: got}
		}
	}
	return d, nil
}

// batch holds what vertex and edge engines share: the captured schema, the
// options and the statement prefix.
type batch struct {
	schema *schema.Descriptor
	opts   Options
	format Formatter
	prefix string
}

func newBatch(d *schema.Descriptor, n int, opts []Option) batch {
	o := NewOptions(opts...)
	if o.BatchSize <= 0 {
		o.BatchSize = n
	}
	return batch{
		schema: d,
		opts:   o,
		format: o.Formatter(),
		prefix: insertPrefix(d),
	}
}

// insertPrefix renders `INSERT VERTEX <label> ( f1,f2 )  VALUES `.
func insertPrefix(d *schema.Descriptor) string {
	keyword := "VERTEX"
	if d.IsEdge() {
		keyword = "EDGE"
	}
	fields := d.Fields()
	n := len("INSERT  ( )  VALUES ") + len(keyword) + len(d.Name()) + len(fields)
	for _, f := range fields {
		n += len(f)
	}
	buf := make([]byte, 0, n)
	buf = append(buf, "INSERT "...)
	buf = append(buf, keyword...)
	buf = append(buf, ' ')
	buf = append(buf, d.Name()...)
	buf = append(buf, " ( "...)
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, f...)
	}
	buf = append(buf, " )  VALUES "...)
	return string(buf)
}

// Schema returns the captured schema.
func (b *batch) Schema() *schema.Descriptor { return b.schema }

// Labels returns the single label a batch touches.
func (b *batch) Labels() []*schema.Descriptor { return []*schema.Descriptor{b.schema} }

// Options returns the effective options, with the batch size resolved.
func (b *batch) Options() Options { return b.opts }

func (b *batch) checkSchema(d *schema.Descriptor) error {
	if !b.schema.Equal(d) {
		return &SchemaMismatchError{Index: -1, Want: b.schema, Got: d}
	}
	return nil
}

// fragment renders `<identity>:(<values>)`.
func (b *batch) fragment(identity string, props map[string]any) (string, error) {
	values, err := b.format.Values(b.schema, props)
	if err != nil {
		return "", err
	}
	return identity + ":(" + values + ")", nil
}

// chunk renders all n fragments, then groups them into statements of at most
// limit fragments each. The first failing entity aborts the render.
func (b *batch) chunk(n, limit int, fragmentAt func(i int) (string, error)) ([]string, error) {
	frags := make([]string, n)
	for i := range frags {
		f, err := fragmentAt(i)
		if err != nil {
			return nil, err
		}
		frags[i] = f
	}
	stmts := Aggregate(frags, limit, ",")
	for i, s := range stmts {
		stmts[i] = b.prefix + s
	}
	return stmts, nil
}

// statements picks the statement shape from the configured batch size.
func (b *batch) statements(n int, single func(i int) (string, error), batched func(limit int) ([]string, error)) ([]string, error) {
	if b.opts.BatchSize != 1 {
		return batched(b.opts.BatchSize)
	}
	out := make([]string, n)
	for i := range out {
		s, err := single(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
