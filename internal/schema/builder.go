package schema

// Builder assembles a Descriptor field by field.
//
//	tag, err := schema.NewTag("player").
//		Field("name", schema.String).
//		Field("age", schema.Int).
//		KeyPolicy(schema.KeyString).
//		Build()
type Builder struct {
	d        Descriptor
	srcSet   bool
	dstSet   bool
	dupField string
}

// NewTag starts a vertex tag descriptor.
func NewTag(name string) *Builder {
	return &Builder{d: Descriptor{name: name, kind: KindTag, types: map[string]DataType{}}}
}

// NewEdge starts an edge type descriptor.
func NewEdge(name string) *Builder {
	return &Builder{d: Descriptor{name: name, kind: KindEdge, types: map[string]DataType{}}}
}

// Field appends a field. Declaration order is statement column order.
func (b *Builder) Field(name string, t DataType) *Builder {
	if _, ok := b.d.types[name]; ok && b.dupField == "" {
		b.dupField = name
	}
	b.d.fields = append(b.d.fields, name)
	b.d.types[name] = t
	return b
}

// KeyPolicy sets the id policy. On edges it also becomes the default for
// both endpoints.
func (b *Builder) KeyPolicy(p KeyPolicy) *Builder {
	b.d.keyPolicy = p
	return b
}

// SrcPolicy overrides the key policy of the source vertex.
func (b *Builder) SrcPolicy(p KeyPolicy) *Builder {
	b.d.srcPolicy = p
	b.srcSet = true
	return b
}

// DstPolicy overrides the key policy of the destination vertex.
func (b *Builder) DstPolicy(p KeyPolicy) *Builder {
	b.d.dstPolicy = p
	b.dstSet = true
	return b
}

// SrcField names the property carrying the source id.
func (b *Builder) SrcField(name string) *Builder {
	b.d.srcField = name
	return b
}

// DstField names the property carrying the destination id.
func (b *Builder) DstField(name string) *Builder {
	b.d.dstField = name
	return b
}

// RankField names the property carrying the edge rank.
func (b *Builder) RankField(name string) *Builder {
	b.d.rankField = name
	return b
}

// Build validates and returns the descriptor. The builder must not be reused
// afterwards.
func (b *Builder) Build() (*Descriptor, error) {
	if b.dupField != "" {
		return nil, invalidf("%s %s: duplicate field %q", b.d.kind, b.d.name, b.dupField)
	}
	d := b.d
	if !b.srcSet {
		d.srcPolicy = d.keyPolicy
	}
	if !b.dstSet {
		d.dstPolicy = d.keyPolicy
	}
	if d.kind == KindTag {
		d.srcPolicy, d.dstPolicy = d.keyPolicy, d.keyPolicy
		d.srcField, d.dstField, d.rankField = "", "", ""
	}
	d.fields = append([]string(nil), b.d.fields...)
	d.types = make(map[string]DataType, len(b.d.types))
	for k, v := range b.d.types {
		d.types[k] = v
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// MustBuild is Build for package-level declarations; it panics on error.
func (b *Builder) MustBuild() *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
