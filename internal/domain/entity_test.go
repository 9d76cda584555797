package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanshika/graphbatch/internal/schema"
)

func TestEdgeEndpoints(t *testing.T) {
	plain := schema.NewEdge("follow").Field("degree", schema.Int).MustBuild()
	roles := schema.NewEdge("transfer").
		Field("from", schema.String).
		Field("to", schema.String).
		Field("seq", schema.Int).
		SrcField("from").DstField("to").RankField("seq").
		MustBuild()

	tests := []struct {
		name                string
		edge                Edge
		wantSrc, wantDst, r any
	}{
		{
			name:    "explicit",
			edge:    Edge{Schema: plain, Src: "a", Dst: "b", Rank: 2},
			wantSrc: "a", wantDst: "b", r: 2,
		},
		{
			name:    "no rank",
			edge:    Edge{Schema: plain, Src: "a", Dst: "b"},
			wantSrc: "a", wantDst: "b", r: nil,
		},
		{
			name:    "role fields",
			edge:    Edge{Schema: roles, Props: map[string]any{"from": "x", "to": "y", "seq": 7}},
			wantSrc: "x", wantDst: "y", r: 7,
		},
		{
			name:    "explicit wins over role fields",
			edge:    Edge{Schema: roles, Src: "s", Props: map[string]any{"from": "x", "to": "y"}},
			wantSrc: "s", wantDst: "y", r: nil,
		},
		{
			name:    "nil schema",
			edge:    Edge{Src: "a", Props: map[string]any{"from": "x"}},
			wantSrc: "a", wantDst: nil, r: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst, rank := tt.edge.Endpoints()
			assert.Equal(t, tt.wantSrc, src)
			assert.Equal(t, tt.wantDst, dst)
			assert.Equal(t, tt.r, rank)
		})
	}
}

func TestEntityInterface(t *testing.T) {
	tag := schema.NewTag("player").Field("name", schema.String).MustBuild()
	props := map[string]any{"name": "Tim"}

	var e Entity = Vertex{Schema: tag, ID: "100", Props: props}
	assert.Same(t, tag, e.Label())
	assert.Equal(t, props, e.Properties())

	e = Edge{Schema: tag, Props: props}
	assert.Equal(t, props, e.Properties())
}
