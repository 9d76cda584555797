package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldDefinition declares one property column.
type FieldDefinition struct {
	Name string   `yaml:"name" json:"name" validate:"required,identifier"`
	Type DataType `yaml:"type" json:"type" validate:"required"`
}

// Definition is the declarative form of a Descriptor, as written in a
// catalog file.
type Definition struct {
	Name      string            `yaml:"name" json:"name" validate:"required,identifier"`
	KeyPolicy KeyPolicy         `yaml:"key_policy" json:"keyPolicy"`
	SrcPolicy *KeyPolicy        `yaml:"src_policy,omitempty" json:"srcPolicy,omitempty"`
	DstPolicy *KeyPolicy        `yaml:"dst_policy,omitempty" json:"dstPolicy,omitempty"`
	SrcField  string            `yaml:"src_field,omitempty" json:"srcField,omitempty" validate:"omitempty,identifier"`
	DstField  string            `yaml:"dst_field,omitempty" json:"dstField,omitempty" validate:"omitempty,identifier"`
	RankField string            `yaml:"rank_field,omitempty" json:"rankField,omitempty" validate:"omitempty,identifier"`
	Fields    []FieldDefinition `yaml:"fields" json:"fields" validate:"required,min=1,dive"`
}

// Descriptor builds the descriptor of the given kind from the definition.
func (def Definition) Descriptor(kind Kind) (*Descriptor, error) {
	if err := validate.Struct(def); err != nil {
		return nil, formatValidationError(kind.String()+" "+def.Name, err)
	}
	var b *Builder
	if kind == KindEdge {
		b = NewEdge(def.Name)
	} else {
		b = NewTag(def.Name)
	}
	for _, f := range def.Fields {
		b.Field(f.Name, f.Type)
	}
	b.KeyPolicy(def.KeyPolicy)
	if def.SrcPolicy != nil {
		b.SrcPolicy(*def.SrcPolicy)
	}
	if def.DstPolicy != nil {
		b.DstPolicy(*def.DstPolicy)
	}
	b.SrcField(def.SrcField).DstField(def.DstField).RankField(def.RankField)
	return b.Build()
}

// catalogFile is the on-disk layout of a catalog.
type catalogFile struct {
	Space string       `yaml:"space"`
	Tags  []Definition `yaml:"tags"`
	Edges []Definition `yaml:"edges"`
}

// Catalog indexes the tags and edge types of one graph space.
type Catalog struct {
	space string
	tags  map[string]*Descriptor
	edges map[string]*Descriptor
	order []*Descriptor
}

// NewCatalog returns a catalog over the given descriptors. Names must be
// unique per kind.
func NewCatalog(space string, descriptors ...*Descriptor) (*Catalog, error) {
	c := &Catalog{
		space: space,
		tags:  make(map[string]*Descriptor),
		edges: make(map[string]*Descriptor),
	}
	for _, d := range descriptors {
		if err := c.add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(d *Descriptor) error {
	index := c.tags
	if d.IsEdge() {
		index = c.edges
	}
	if _, dup := index[d.name]; dup {
		return invalidf("duplicate %s %q in catalog", d.kind, d.name)
	}
	index[d.name] = d
	c.order = append(c.order, d)
	return nil
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c, _ := NewCatalog(file.Space)
	for _, def := range file.Tags {
		d, err := def.Descriptor(KindTag)
		if err != nil {
			return nil, err
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}
	for _, def := range file.Edges {
		d, err := def.Descriptor(KindEdge)
		if err != nil {
			return nil, err
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadCatalog reads and decodes a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Space returns the graph space named by the catalog, if any.
func (c *Catalog) Space() string { return c.space }

// Tag looks up a vertex tag.
func (c *Catalog) Tag(name string) (*Descriptor, bool) {
	d, ok := c.tags[name]
	return d, ok
}

// Edge looks up an edge type.
func (c *Catalog) Edge(name string) (*Descriptor, bool) {
	d, ok := c.edges[name]
	return d, ok
}

// Tags returns the tags in declaration order.
func (c *Catalog) Tags() []*Descriptor { return c.filter(KindTag) }

// Edges returns the edge types in declaration order.
func (c *Catalog) Edges() []*Descriptor { return c.filter(KindEdge) }

func (c *Catalog) filter(kind Kind) []*Descriptor {
	var out []*Descriptor
	for _, d := range c.order {
		if d.kind == kind {
			out = append(out, d)
		}
	}
	return out
}
