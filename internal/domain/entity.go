package domain

import "github.com/vanshika/graphbatch/internal/schema"

// Entity is a vertex or an edge bound to its schema.
type Entity interface {
	Label() *schema.Descriptor
	Properties() map[string]any
}

// Vertex is a graph node under one tag. ID is the raw identifier; the tag's
// key policy decides how it is rendered.
type Vertex struct {
	Schema *schema.Descriptor
	ID     any
	Props  map[string]any
}

// Label implements Entity.
func (v Vertex) Label() *schema.Descriptor { return v.Schema }

// Properties implements Entity.
func (v Vertex) Properties() map[string]any { return v.Props }

// Edge is a relationship under one edge type, identified by (Src, Dst, Rank).
// Src, Dst and Rank may be nil when the edge type names role fields that
// carry them in Props. A nil Rank with no rank field leaves the rank to the
// server default.
type Edge struct {
	Schema *schema.Descriptor
	Src    any
	Dst    any
	Rank   any
	Props  map[string]any
}

// Label implements Entity.
func (e Edge) Label() *schema.Descriptor { return e.Schema }

// Properties implements Entity.
func (e Edge) Properties() map[string]any { return e.Props }

// Endpoints returns the source, destination and rank, falling back to the
// role fields declared on the edge type.
func (e Edge) Endpoints() (src, dst, rank any) {
	src, dst, rank = e.Src, e.Dst, e.Rank
	if e.Schema == nil {
		return src, dst, rank
	}
	if src == nil && e.Schema.SrcField() != "" {
		src = e.Props[e.Schema.SrcField()]
	}
	if dst == nil && e.Schema.DstField() != "" {
		dst = e.Props[e.Schema.DstField()]
	}
	if rank == nil && e.Schema.RankField() != "" {
		rank = e.Props[e.Schema.RankField()]
	}
	return src, dst, rank
}
