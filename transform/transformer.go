// Package transform maps validated parameters to their internal form: keys
// are renamed, store and transform hooks run, and union discriminators are
// retargeted to their persisted values.
package transform

import (
	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// TagMapper maps a wire discriminator value to the value stored for the
// owning subtype.
type TagMapper interface {
	StorageTag(discriminator, tag string) (string, bool)
}

// TagMap is a TagMapper keyed by wire tag, independent of the discriminator.
type TagMap map[string]string

// StorageTag implements TagMapper.
func (m TagMap) StorageTag(_ string, tag string) (string, bool) {
	s, ok := m[tag]
	return s, ok
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithTagMapper enables the discriminator retargeting walk.
func WithTagMapper(m TagMapper) Option { return func(t *Transformer) { t.tags = m } }

// WithMaxDepth stops descending past n levels.
func WithMaxDepth(n int) Option {
	return func(t *Transformer) {
		if n >= 0 {
			t.maxDepth = n
		}
	}
}

// Transformer is immutable after New and safe for concurrent use.
type Transformer struct {
	reg      *schema.Registry
	tags     TagMapper
	maxDepth int
}

// New returns a Transformer resolving named types through reg.
func New(reg *schema.Registry, opts ...Option) *Transformer {
	t := &Transformer{reg: reg, maxDepth: ps.DefaultMaxDepth}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Transform expects data that already passed validation. Keys not declared by
// shape are copied through unchanged.
func (t *Transformer) Transform(shape *schema.Shape, data any) any {
	out := t.shape(shape, data, 0)
	if t.tags != nil {
		out = t.retargetShape(shape, out, 0)
	}
	return out
}

func (t *Transformer) shape(s *schema.Shape, data any, depth int) any {
	in, ok := norm.Map(data)
	if !ok || depth > t.maxDepth {
		return data
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if _, declared := s.Lookup(k); !declared {
			out[k] = v
		}
	}
	for _, p := range s.Params() {
		v, ok := in[p.Name]
		if !ok {
			continue
		}
		out[p.Key()] = t.field(p, v, depth)
	}
	return out
}

func (t *Transformer) field(p *schema.Param, val any, depth int) any {
	if sv, ok := p.StoreValue(); ok {
		return sv
	}
	out := t.value(p, val, depth)
	if fn := p.TransformFunc(); fn != nil {
		out = fn(out)
	}
	return out
}

func (t *Transformer) value(p *schema.Param, val any, depth int) any {
	if val == nil {
		return nil
	}
	switch c := p.Content.(type) {
	case schema.ObjectContent:
		return t.shape(c.Shape, val, depth+1)
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
			out[i] = t.field(c.Elem, it, itemDepth)
		}
		return out
	case schema.UnionContent:
		return t.union(c.Union, val, depth)
	case *schema.RefContent:
		def, ok := t.reg.Target(c)
		if !ok {
			return val
		}
		switch def.Kind {
		case schema.DefType:
			return t.shape(def.Shape, val, depth+1)
		case schema.DefUnion:
			return t.union(def.Union, val, depth)
		}
	}
	return val
}

func (t *Transformer) union(u *schema.Union, val any, depth int) any {
	p, ok := t.variant(u, val)
	if !ok {
		return val
	}
	return t.field(p, val, depth)
}

// variant picks the variant that describes val: the tagged one for a
// discriminated union, otherwise the first whose content kind matches.
func (t *Transformer) variant(u *schema.Union, val any) (*schema.Param, bool) {
	m, isMap := norm.Map(val)
	if u.Discriminated() {
		if !isMap {
			return nil, false
		}
		dv, ok := m[u.Discriminator]
		if !ok || dv == nil {
			return nil, false
		}
		vr, ok := u.VariantFor(norm.Stringify(dv))
		return vr.Param, ok
	}
	_, isSlice := norm.Slice(val)
	for _, vr := range u.Variants {
		switch c := vr.Param.Content.(type) {
		case schema.ObjectContent:
			if isMap {
				return vr.Param, true
			}
		case schema.ArrayContent:
			if isSlice {
				return vr.Param, true
			}
		case *schema.RefContent:
			if def, ok := t.reg.Target(c); ok && def.Kind == schema.DefType && isMap {
				return vr.Param, true
			}
		}
	}
	return nil, false
}
