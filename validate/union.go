package validate

import (
	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

func (v *Validator) union(u *schema.Union, val any, depth int, path ps.Path) (any, ps.Issues) {
	if depth > v.maxDepth {
		return nil, ps.Issues{v.issue(nil, path, ps.CodeDepthExceeded, "max_depth", v.maxDepth)}
	}
	if u.Discriminated() {
		return v.discriminated(u, val, depth, path)
	}
	return v.undiscriminated(u, val, depth, path)
}

func (v *Validator) discriminated(u *schema.Union, val any, depth int, path ps.Path) (any, ps.Issues) {
	m, ok := norm.Map(val)
	if !ok {
		return nil, ps.Issues{v.issue(nil, path, ps.CodeTypeInvalid, "expected", "object", "actual", norm.TypeOf(val))}
	}
	key := u.Discriminator
	dv, has := m[key]
	if !has || dv == nil {
		if v.discriminatorOptional(u) {
			return v.untagged(u, m, depth, path)
		}
		return nil, ps.Issues{v.issue(nil, path.Field(key), ps.CodeFieldMissing)}
	}
	tag := norm.Stringify(dv)
	variant, ok := u.VariantFor(tag)
	if !ok {
		return nil, ps.Issues{v.issue(nil, path.Field(key), ps.CodeValueInvalid, "expected", u.Tags(), "actual", dv)}
	}
	shape, target, resolved := v.variantShape(variant.Param)
	if !resolved {
		return m, nil
	}
	if target != nil {
		// variant names another union; it sees the payload unchanged
		return v.union(target, m, depth, path)
	}
	body := m
	if _, declared := shape.Lookup(key); !declared {
		body = norm.Copy(m)
		delete(body, key)
	}
	iss, out := v.shape(shape, body, depth+1, path)
	if len(iss) > 0 {
		return nil, iss
	}
	if _, declared := shape.Lookup(key); !declared {
		out[key] = dv
	}
	return out, nil
}

// variantShape returns the object shape of a discriminated variant, or the
// union it names. resolved is false for a dangling reference.
func (v *Validator) variantShape(p *schema.Param) (*schema.Shape, *schema.Union, bool) {
	switch c := p.Content.(type) {
	case schema.ObjectContent:
		return c.Shape, nil, true
	case *schema.RefContent:
		def, ok := v.reg.Target(c)
		if !ok {
			return nil, nil, false
		}
		if def.Kind == schema.DefUnion {
			return nil, def.Union, true
		}
		return def.Shape, nil, def.Shape != nil
	}
	return nil, nil, false
}

// discriminatorOptional reports whether every variant declares the
// discriminator itself as optional, in which case a missing discriminator is
// accepted.
func (v *Validator) discriminatorOptional(u *schema.Union) bool {
	for _, vr := range u.Variants {
		shape, _, ok := v.variantShape(vr.Param)
		if !ok || shape == nil {
			return false
		}
		p, declared := shape.Lookup(u.Discriminator)
		if !declared || !p.IsOptional() {
			return false
		}
	}
	return true
}

// untagged validates a payload that omits an optional discriminator. The
// first variant the body satisfies wins; otherwise an unknown key is reported
// ahead of the first variant's issues.
func (v *Validator) untagged(u *schema.Union, m map[string]any, depth int, path ps.Path) (any, ps.Issues) {
	var first, all ps.Issues
	for i, vr := range u.Variants {
		shape, _, _ := v.variantShape(vr.Param)
		iss, out := v.shape(shape, m, depth+1, path)
		if len(iss) == 0 {
			return out, nil
		}
		if i == 0 {
			first = iss
		}
		all = append(all, iss...)
	}
	if it, ok := all.First(ps.CodeFieldUnknown); ok {
		return nil, ps.Issues{it}
	}
	return nil, first
}

func (v *Validator) undiscriminated(u *schema.Union, val any, depth int, path ps.Path) (any, ps.Issues) {
	if u.HasBoolean() {
		switch b := val.(type) {
		case bool:
			return b, nil
		case string:
			switch b {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
	}
	var all ps.Issues
	for _, vr := range u.Variants {
		out, _, iss := v.field(vr.Param, val, true, true, depth, path)
		if len(iss) == 0 {
			return out, nil
		}
		all = append(all, iss...)
	}
	if it, ok := all.First(ps.CodeFieldUnknown); ok {
		return nil, ps.Issues{it}
	}
	if it, ok := all.First(ps.CodeValueInvalid); ok {
		return nil, ps.Issues{it}
	}
	return nil, ps.Issues{v.issue(nil, path, ps.CodeTypeInvalid, "expected", u.TypeNames(), "actual", norm.TypeOf(val))}
}
