package service

import (
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/schema"
)

// RenderedGroup is the statement list of one label group.
type RenderedGroup struct {
	Kind       string   `json:"kind"`
	Label      string   `json:"label"`
	Entities   int      `json:"entities"`
	Statements []string `json:"statements"`
}

// Render generates statements for ds without submitting them. Vertex groups
// come first, then edge groups, each in first-seen order. The first failing
// group aborts the render.
func Render(cat *schema.Catalog, dialect ngql.Dialect, ds Dataset, opts ...ngql.Option) ([]RenderedGroup, error) {
	vgroups, err := GroupVertices(cat, ds.Vertices)
	if err != nil {
		return nil, err
	}
	egroups, err := GroupEdges(cat, ds.Edges)
	if err != nil {
		return nil, err
	}

	out := make([]RenderedGroup, 0, len(vgroups)+len(egroups))
	for _, g := range vgroups {
		eng, err := dialect.VertexEngine(g.Vertices, opts...)
		if err != nil {
			return nil, err
		}
		rg, err := renderGroup(eng, len(g.Vertices))
		if err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	for _, g := range egroups {
		eng, err := dialect.EdgeEngine(g.Edges, opts...)
		if err != nil {
			return nil, err
		}
		rg, err := renderGroup(eng, len(g.Edges))
		if err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, nil
}

func renderGroup(eng ngql.Engine, n int) (RenderedGroup, error) {
	stmts, err := eng.Statements()
	if err != nil {
		return RenderedGroup{}, err
	}
	d := eng.Schema()
	return RenderedGroup{
		Kind:       d.Kind().String(),
		Label:      d.Name(),
		Entities:   n,
		Statements: stmts,
	}, nil
}

// Statements flattens rendered groups into one ordered statement list.
func Statements(groups []RenderedGroup) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Statements...)
	}
	return out
}
