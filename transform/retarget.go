package transform

import (
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// The retarget walk runs over already transformed output, so every lookup goes
// through Param.Key. Values produced by store or transform hooks are opaque and
// are not descended into. Maps are copied before they are changed.

func (t *Transformer) retargetShape(s *schema.Shape, data any, depth int) any {
	m, ok := norm.Map(data)
	if !ok || depth > t.maxDepth {
		return data
	}
	out := norm.Copy(m)
	for _, p := range s.Params() {
		v, ok := m[p.Key()]
		if !ok || opaque(p) {
			continue
		}
		out[p.Key()] = t.retargetValue(p, v, depth)
	}
	return out
}

func opaque(p *schema.Param) bool {
	_, stored := p.StoreValue()
	return stored || p.TransformFunc() != nil
}

func (t *Transformer) retargetValue(p *schema.Param, val any, depth int) any {
	if val == nil {
		return nil
	}
	switch c := p.Content.(type) {
	case schema.ObjectContent:
		return t.retargetShape(c.Shape, val, depth+1)
	case schema.ArrayContent:
		items, ok := norm.Slice(val)
		if !ok || opaque(c.Elem) {
			return val
		}
		itemDepth := depth
		if _, nested := c.Elem.Content.(schema.ArrayContent); nested {
			itemDepth++
		}
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = t.retargetValue(c.Elem, it, itemDepth)
		}
		return out
	case schema.UnionContent:
		return t.retargetUnion(c.Union, val, depth)
	case *schema.RefContent:
		def, ok := t.reg.Target(c)
		if !ok {
			return val
		}
		switch def.Kind {
		case schema.DefType:
			return t.retargetShape(def.Shape, val, depth+1)
		case schema.DefUnion:
			return t.retargetUnion(def.Union, val, depth)
		}
	}
	return val
}

func (t *Transformer) retargetUnion(u *schema.Union, val any, depth int) any {
	if !u.Discriminated() {
		p, ok := t.variant(u, val)
		if !ok || opaque(p) {
			return val
		}
		return t.retargetValue(p, val, depth)
	}
	m, ok := norm.Map(val)
	if !ok {
		return val
	}
	for _, vr := range u.Variants {
		shape := t.variantShape(vr.Param)
		key := u.Discriminator
		if shape != nil {
			if dp, declared := shape.Lookup(u.Discriminator); declared {
				key = dp.Key()
			}
		}
		dv, ok := m[key]
		if !ok || dv == nil || norm.Stringify(dv) != vr.Tag {
			continue
		}
		var out map[string]any
		if opaque(vr.Param) {
			out = norm.Copy(m)
		} else if res, ok := norm.Map(t.retargetValue(vr.Param, m, depth)); ok {
			out = norm.Copy(res)
		} else {
			return val
		}
		if st, ok := t.tags.StorageTag(u.Discriminator, vr.Tag); ok {
			out[key] = st
		}
		return out
	}
	return val
}

func (t *Transformer) variantShape(p *schema.Param) *schema.Shape {
	switch c := p.Content.(type) {
	case schema.ObjectContent:
		return c.Shape
	case *schema.RefContent:
		if def, ok := t.reg.Target(c); ok && def.Kind == schema.DefType {
			return def.Shape
		}
	}
	return nil
}
