// Package deserialize decodes wire values through the Attribute hooks declared
// on a shape. It assumes its input already passed validation and performs no
// checks of its own.
package deserialize

import (
	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// Deserializer is immutable and safe for concurrent use.
type Deserializer struct {
	reg      *schema.Registry
	maxDepth int
}

// New returns a Deserializer resolving named types through reg.
func New(reg *schema.Registry) *Deserializer {
	return &Deserializer{reg: reg, maxDepth: ps.DefaultMaxDepth}
}

// Deserialize returns a copy of data with every attribute-bearing field
// decoded. A hook that fails leaves the wire value in place.
func (d *Deserializer) Deserialize(shape *schema.Shape, data any) any {
	return d.shape(shape, data, 0)
}

// Deserialize is a one-shot helper around New(reg).Deserialize.
func Deserialize(reg *schema.Registry, shape *schema.Shape, data any) any {
	return New(reg).Deserialize(shape, data)
}

func (d *Deserializer) shape(s *schema.Shape, data any, depth int) any {
	in, ok := norm.Map(data)
	if !ok || depth > d.maxDepth {
		return data
	}
	out := norm.Copy(in)
	for _, p := range s.Params() {
		if v, ok := in[p.Name]; ok {
			out[p.Name] = d.field(p, v, depth)
		}
	}
	return out
}

func (d *Deserializer) field(p *schema.Param, val any, depth int) any {
	if val == nil {
		return nil
	}
	if a := p.Attribute(); a != nil {
		if dec, err := a.Decode(val); err == nil {
			val = dec
		}
	}
	switch c := p.Content.(type) {
	case schema.ObjectContent:
		return d.shape(c.Shape, val, depth+1)
	case schema.ArrayContent:
		items, ok := norm.Slice(val)
		if !ok {
			return val
		}
		itemDepth := depth
		if _, nested := c.Elem.Content.(schema.ArrayContent); nested {
			itemDepth++
		}
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = d.field(c.Elem, it, itemDepth)
		}
		return out
	case schema.UnionContent:
		return d.union(c.Union, val, depth)
	case *schema.RefContent:
		def, ok := d.reg.Target(c)
		if !ok {
			return val
		}
		switch def.Kind {
		case schema.DefType:
			return d.shape(def.Shape, val, depth+1)
		case schema.DefUnion:
			return d.union(def.Union, val, depth)
		}
	}
	return val
}

// union decodes through the tagged variant; undiscriminated unions only
// descend into the first object variant when val is a map.
func (d *Deserializer) union(u *schema.Union, val any, depth int) any {
	m, ok := norm.Map(val)
	if !ok {
		return val
	}
	if u.Discriminated() {
		dv, has := m[u.Discriminator]
		if !has || dv == nil {
			return val
		}
		if vr, ok := u.VariantFor(norm.Stringify(dv)); ok {
			return d.field(vr.Param, m, depth)
		}
		return val
	}
	for _, vr := range u.Variants {
		switch c := vr.Param.Content.(type) {
		case schema.ObjectContent:
			return d.field(vr.Param, m, depth)
		case *schema.RefContent:
			if def, ok := d.reg.Target(c); ok && def.Kind == schema.DefType {
				return d.field(vr.Param, m, depth)
			}
		}
	}
	return val
}
