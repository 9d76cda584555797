package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vanshika/graphbatch/internal/domain"
	"github.com/vanshika/graphbatch/internal/schema"
)

// ErrUnknownLabel is returned when an input names a tag or edge type missing
// from the catalog.
var ErrUnknownLabel = errors.New("unknown label")

// VertexInput is the inbound payload for one vertex.
type VertexInput struct {
	Tag   string         `json:"tag"`
	ID    any            `json:"id"`
	Props map[string]any `json:"props,omitempty"`
}

// EdgeInput is the inbound payload for one edge. Src, Dst and Rank may be
// omitted when the edge type declares role fields.
type EdgeInput struct {
	Type  string         `json:"type"`
	Src   any            `json:"src,omitempty"`
	Dst   any            `json:"dst,omitempty"`
	Rank  any            `json:"rank,omitempty"`
	Props map[string]any `json:"props,omitempty"`
}

// Dataset is a mixed collection of vertices and edges, as read from a
// dataset file or an HTTP body.
type Dataset struct {
	Vertices []VertexInput `json:"vertices"`
	Edges    []EdgeInput   `json:"edges"`
}

// DecodeDataset reads a JSON dataset. Numbers are kept as json.Number so
// large integer ids survive intact.
func DecodeDataset(r io.Reader) (Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// LoadDataset reads a JSON dataset file.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return DecodeDataset(bytes.NewReader(data))
}

// Resolve binds the input to its tag in the catalog.
func (in VertexInput) Resolve(cat *schema.Catalog) (domain.Vertex, error) {
	d, ok := cat.Tag(normalizeLabel(in.Tag))
	if !ok {
		return domain.Vertex{}, fmt.Errorf("%w: tag %q", ErrUnknownLabel, in.Tag)
	}
	return domain.Vertex{Schema: d, ID: in.ID, Props: normalizeProps(in.Props)}, nil
}

// Resolve binds the input to its edge type in the catalog.
func (in EdgeInput) Resolve(cat *schema.Catalog) (domain.Edge, error) {
	d, ok := cat.Edge(normalizeLabel(in.Type))
	if !ok {
		return domain.Edge{}, fmt.Errorf("%w: edge %q", ErrUnknownLabel, in.Type)
	}
	return domain.Edge{Schema: d, Src: in.Src, Dst: in.Dst, Rank: in.Rank, Props: normalizeProps(in.Props)}, nil
}

// VertexGroup holds the vertices of one tag in input order.
type VertexGroup struct {
	Label    string
	Vertices []domain.Vertex
}

// EdgeGroup holds the edges of one edge type in input order.
type EdgeGroup struct {
	Label string
	Edges []domain.Edge
}

// GroupVertices resolves inputs and groups them by tag in first-seen order.
// Every resolution failure is reported in one TaskError.
func GroupVertices(cat *schema.Catalog, inputs []VertexInput) ([]VertexGroup, error) {
	var (
		groups  []VertexGroup
		index   = make(map[string]int)
		taskErr TaskError
	)
	for i, in := range inputs {
		v, err := in.Resolve(cat)
		if err != nil {
			taskErr.append(fmt.Errorf("vertex %d: %w", i, err))
			continue
		}
		label := v.Schema.Name()
		g, ok := index[label]
		if !ok {
			g = len(groups)
			index[label] = g
			groups = append(groups, VertexGroup{Label: label})
		}
		groups[g].Vertices = append(groups[g].Vertices, v)
	}
	if err := taskErr.asError(); err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupEdges resolves inputs and groups them by edge type in first-seen order.
func GroupEdges(cat *schema.Catalog, inputs []EdgeInput) ([]EdgeGroup, error) {
	var (
		groups  []EdgeGroup
		index   = make(map[string]int)
		taskErr TaskError
	)
	for i, in := range inputs {
		e, err := in.Resolve(cat)
		if err != nil {
			taskErr.append(fmt.Errorf("edge %d: %w", i, err))
			continue
		}
		label := e.Schema.Name()
		g, ok := index[label]
		if !ok {
			g = len(groups)
			index[label] = g
			groups = append(groups, EdgeGroup{Label: label})
		}
		groups[g].Edges = append(groups[g].Edges, e)
	}
	if err := taskErr.asError(); err != nil {
		return nil, err
	}
	return groups, nil
}
