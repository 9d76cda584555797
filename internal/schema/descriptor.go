package schema

import "slices"

// Descriptor is the immutable metadata for one label: a vertex tag or an edge
// type. Build it with NewTag, NewEdge or Definition.Descriptor.
type Descriptor struct {
	name      string
	kind      Kind
	fields    []string
	types     map[string]DataType
	keyPolicy KeyPolicy

	// edge only
	srcPolicy KeyPolicy
	dstPolicy KeyPolicy
	srcField  string
	dstField  string
	rankField string
}

// Name returns the tag or edge type name.
func (d *Descriptor) Name() string { return d.name }

// Kind returns whether the descriptor is a tag or an edge type.
func (d *Descriptor) Kind() Kind { return d.kind }

// IsEdge reports whether the descriptor describes an edge type.
func (d *Descriptor) IsEdge() bool { return d.kind == KindEdge }

// Fields returns the ordered field names. The order is the column order of
// every statement generated for this label.
func (d *Descriptor) Fields() []string {
	return slices.Clone(d.fields)
}

// NumFields returns the number of declared fields.
func (d *Descriptor) NumFields() int { return len(d.fields) }

// Type returns the declared type of a field.
func (d *Descriptor) Type(field string) (DataType, bool) {
	t, ok := d.types[field]
	return t, ok
}

// Types returns a copy of the field to type mapping.
func (d *Descriptor) Types() map[string]DataType {
	out := make(map[string]DataType, len(d.types))
	for k, v := range d.types {
		out[k] = v
	}
	return out
}

// KeyPolicy returns the vertex id policy. For edges it is the default used by
// both endpoints unless overridden.
func (d *Descriptor) KeyPolicy() KeyPolicy { return d.keyPolicy }

// SrcPolicy returns the key policy for the source vertex of an edge.
func (d *Descriptor) SrcPolicy() KeyPolicy { return d.srcPolicy }

// DstPolicy returns the key policy for the destination vertex of an edge.
func (d *Descriptor) DstPolicy() KeyPolicy { return d.dstPolicy }

// SrcField names the property holding the source id when an edge entity does
// not carry it explicitly. Empty if unset.
func (d *Descriptor) SrcField() string { return d.srcField }

// DstField is the destination counterpart of SrcField.
func (d *Descriptor) DstField() string { return d.dstField }

// RankField names the property holding the edge rank. Empty if unset.
func (d *Descriptor) RankField() string { return d.rankField }

// Equal reports whether two descriptors describe the same label with the same
// columns, types and key policies.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	if d.name != o.name || d.kind != o.kind || d.keyPolicy != o.keyPolicy {
		return false
	}
	if d.srcPolicy != o.srcPolicy || d.dstPolicy != o.dstPolicy {
		return false
	}
	if d.srcField != o.srcField || d.dstField != o.dstField || d.rankField != o.rankField {
		return false
	}
	if !slices.Equal(d.fields, o.fields) || len(d.types) != len(o.types) {
		return false
	}
	for k, v := range d.types {
		if ov, ok := o.types[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (d *Descriptor) String() string {
	return d.kind.String() + " " + d.name
}
