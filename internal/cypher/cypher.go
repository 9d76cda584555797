// Package cypher renders vertex and edge batches as openCypher MERGE
// statements, so the same entities can be written to a Neo4j compatible
// server. Vertex ids are stored in a vid property and every node is merged
// on that property alone, so one vid carrying several tags stays one node.
package cypher

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/schema"
)

// IDProperty holds the rendered vertex id on every merged node.
const IDProperty = "vid"

// Dialect is the openCypher dialect.
var Dialect ngql.Dialect = dialect{}

type dialect struct{}

func (dialect) Name() string { return "cypher" }

func (dialect) VertexEngine(vertices []domain.Vertex, opts ...ngql.Option) (ngql.Engine, error) {
	b, err := NewVertexBatch(vertices, opts...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (dialect) EdgeEngine(edges []domain.Edge, opts ...ngql.Option) (ngql.Engine, error) {
	b, err := NewEdgeBatch(edges, opts...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// keyPolicy maps policies without an openCypher form onto one that has it.
// server_hash becomes the client-side hash.
func keyPolicy(p schema.KeyPolicy) schema.KeyPolicy {
	if p == schema.KeyServerHash {
		return schema.KeyHash
	}
	return p
}

type batch struct {
	schema *schema.Descriptor
	opts   ngql.Options
	format ngql.Formatter
}

func newBatch(d *schema.Descriptor, n int, opts []ngql.Option) batch {
	o := ngql.NewOptions(opts...)
	if o.BatchSize <= 0 {
		o.BatchSize = n
	}
	return batch{schema: d, opts: o, format: o.Formatter()}
}

func (b *batch) Schema() *schema.Descriptor { return b.schema }

func (b *batch) Labels() []*schema.Descriptor { return []*schema.Descriptor{b.schema} }

func (b *batch) key(policy schema.KeyPolicy, raw any, role string) (string, error) {
	lit, err := b.format.Key(keyPolicy(policy), raw)
	if err != nil {
		var ke *ngql.KeyError
		if errors.As(err, &ke) {
			ke.Label, ke.Role = b.schema.Name(), role
		}
		return "", err
	}
	return lit, nil
}

// set renders ` SET a:<label>, a.f1 = <v1>, a.f2 = <v2>`. An empty label
// is left out.
func (b *batch) set(alias, label string, props map[string]any) (string, error) {
	items := make([]string, 0, len(b.schema.Fields())+1)
	if label != "" {
		items = append(items, alias+":"+label)
	}
	for _, field := range b.schema.Fields() {
		t, _ := b.schema.Type(field)
		lit := ngql.Null
		if v, ok := props[field]; ok {
			var err error
			if lit, err = b.value(t, v); err != nil {
				return "", fieldError(err, b.schema.Name(), field)
			}
		}
		items = append(items, alias+"."+field+" = "+lit)
	}
	if len(items) == 0 {
		return "", nil
	}
	return " SET " + strings.Join(items, ", "), nil
}

// value renders v like ngql.Formatter.Value. openCypher has no timestamp()
// constructor, so timestamp strings become epoch seconds of a datetime.
func (b *batch) value(t schema.DataType, v any) (string, error) {
	if t == schema.Timestamp {
		switch s := v.(type) {
		case string:
			return "datetime(" + b.format.Quote(s) + ").epochSeconds", nil
		case *string:
			if s != nil {
				return "datetime(" + b.format.Quote(*s) + ").epochSeconds", nil
			}
		}
	}
	return b.format.Value(t, v)
}

func fieldError(err error, label, field string) error {
	var ve *ngql.ValueError
	if errors.As(err, &ve) {
		ve.Label, ve.Field = label, field
	}
	var de *ngql.DataTypeError
	if errors.As(err, &de) {
		de.Label, de.Field = label, field
	}
	return err
}

// render groups n entities into statements of at most limit clauses. Aliases
// are numbered from zero within each statement.
func (b *batch) render(n, limit int, clause func(i, j int) (string, error)) ([]string, error) {
	if limit <= 0 || limit > n {
		limit = n
	}
	stmts := make([]string, 0, (n+limit-1)/limit)
	for start := 0; start < n; start += limit {
		end := min(start+limit, n)
		clauses := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			c, err := clause(i, i-start)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, c)
		}
		stmts = append(stmts, strings.Join(clauses, " "))
	}
	return stmts, nil
}

func alias(prefix string, j int) string {
	return prefix + strconv.Itoa(j)
}
