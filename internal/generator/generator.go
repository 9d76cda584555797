package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/graphbatch/internal/schema"
	"github.com/vanshika/graphbatch/internal/service"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("graphbatch/generator"))

// Generator produces synthetic vertices and edges for every label of a
// catalog. Output is deterministic for a given seed.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
	pools         map[string][]string
	epoch         time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.VerticesPerTag <= 0 {
		cfg.VerticesPerTag = DefaultConfig().VerticesPerTag
	}
	if cfg.EdgesPerType < 0 {
		cfg.EdgesPerType = 0
	}
	if cfg.NullChance < 0 {
		cfg.NullChance = 0
	}
	if cfg.ShareChance < 0 {
		cfg.ShareChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
		pools:         make(map[string][]string),
		epoch:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate synthesises a dataset for cat. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context, cat *schema.Catalog) (service.Dataset, error) {
	var ds service.Dataset

	// ids keyed by whether they are textual, so edge endpoints match the
	// identifier shape their policy expects
	ids := map[bool][]any{}

	for _, tag := range cat.Tags() {
		for i := 0; i < g.cfg.VerticesPerTag; i++ {
			if err := ctx.Err(); err != nil {
				return service.Dataset{}, err
			}
			id := g.vertexID(tag, i)
			textual := tag.KeyPolicy() != schema.KeyInt
			ids[textual] = append(ids[textual], id)
			ds.Vertices = append(ds.Vertices, service.VertexInput{
				Tag:   tag.Name(),
				ID:    id,
				Props: g.props(tag),
			})
		}
	}

	for _, edge := range cat.Edges() {
		for i := 0; i < g.cfg.EdgesPerType; i++ {
			if err := ctx.Err(); err != nil {
				return service.Dataset{}, err
			}
			ds.Edges = append(ds.Edges, g.edge(edge, i, ids))
		}
	}
	return ds, nil
}

func (g *Generator) vertexID(tag *schema.Descriptor, i int) any {
	switch tag.KeyPolicy() {
	case schema.KeyInt:
		return int64(i + 1)
	case schema.KeyString:
		return fmt.Sprintf("%s-%06d", tag.Name(), i+1)
	default:
		return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%d/%s/%d", g.cfg.Seed, tag.Name(), i))).String()
	}
}

func (g *Generator) endpoint(policy schema.KeyPolicy, ids map[bool][]any) any {
	pool := ids[policy != schema.KeyInt]
	if len(pool) > 0 {
		return pool[g.rand.Intn(len(pool))]
	}
	if policy == schema.KeyInt {
		return int64(g.rand.Intn(g.cfg.VerticesPerTag) + 1)
	}
	return fmt.Sprintf("v-%06d", g.rand.Intn(g.cfg.VerticesPerTag)+1)
}

func (g *Generator) edge(d *schema.Descriptor, i int, ids map[bool][]any) service.EdgeInput {
	in := service.EdgeInput{
		Type:  d.Name(),
		Src:   g.endpoint(d.SrcPolicy(), ids),
		Dst:   g.endpoint(d.DstPolicy(), ids),
		Props: g.props(d),
	}
	if i%4 == 3 {
		in.Rank = int64(i / 4)
	}

	if f := d.SrcField(); f != "" {
		in.Props[f], in.Src = in.Src, nil
	}
	if f := d.DstField(); f != "" {
		in.Props[f], in.Dst = in.Dst, nil
	}
	if f := d.RankField(); f != "" {
		if in.Rank == nil {
			in.Rank = int64(0)
		}
		in.Props[f], in.Rank = in.Rank, nil
	}
	return in
}

func (g *Generator) props(d *schema.Descriptor) map[string]any {
	props := make(map[string]any, d.NumFields())
	for _, field := range d.Fields() {
		if g.rand.Float64() < g.cfg.NullChance {
			continue
		}
		t, _ := d.Type(field)
		props[field] = g.value(field, t)
	}
	return props
}

func (g *Generator) value(field string, t schema.DataType) any {
	ts := g.epoch.Add(time.Duration(g.rand.Intn(365*24*3600)) * time.Second)
	switch t {
	case schema.String, schema.FixedString:
		return g.maybeSharedString(field, g.randomText)
	case schema.Int8:
		return int64(g.rand.Intn(math.MaxInt8))
	case schema.Int16:
		return int64(g.rand.Intn(math.MaxInt16))
	case schema.Int, schema.Int32, schema.Int64:
		return int64(g.rand.Intn(100000))
	case schema.Float, schema.Double:
		return math.Round(g.rand.Float64()*10000) / 100
	case schema.Bool:
		return g.rand.Intn(2) == 1
	case schema.Date:
		return ts.Format("2006-01-02")
	case schema.DateTime:
		return ts.Format("2006-01-02T15:04:05")
	case schema.Time:
		return ts.Format("15:04:05")
	case schema.Timestamp:
		return ts.Unix()
	default:
		return nil
	}
}

func (g *Generator) maybeSharedString(field string, newValue func() string) string {
	pool := g.pools[field]
	if len(pool) > 0 && g.rand.Float64() < g.cfg.ShareChance {
		return pool[g.rand.Intn(len(pool))]
	}
	val := newValue()
	g.pools[field] = append(pool, val)
	return val
}

func (g *Generator) randomText() string {
	return fmt.Sprintf("%s %s", g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))])
}

type nameFragments struct {
	first []string
	last  []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first: []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:  []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "O'Brien", "Lee"},
	}
}
