// Package validate implements the recursive, depth-bounded Validator. It walks
// a schema.Shape over loosely typed input (maps, arrays, scalars) and returns
// every issue found together with the accepted parameter tree.
package validate

import (
	"sort"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/i18n"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// Option configures a Validator.
type Option func(*Validator)

// WithMaxDepth bounds recursion; the root shape is depth 0.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		if n >= 0 {
			v.maxDepth = n
		}
	}
}

// WithLocale renders issue details for locale instead of the catalog default.
func WithLocale(locale string) Option { return func(v *Validator) { v.locale = locale } }

// Validator checks input against shapes bound in a registry. It holds no
// per-call state and is safe for concurrent use.
type Validator struct {
	reg      *schema.Registry
	maxDepth int
	locale   string
}

// New returns a Validator resolving named types through reg. reg may be nil
// when no shape references a named type.
func New(reg *schema.Registry, opts ...Option) *Validator {
	v := &Validator{reg: reg, maxDepth: ps.DefaultMaxDepth}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks data against shape from the root.
func (v *Validator) Validate(shape *schema.Shape, data any) ps.Result {
	return v.ValidateAt(shape, data, 0, nil)
}

// ValidateAt checks data against shape as if it were found at path, depth
// levels below the root.
func (v *Validator) ValidateAt(shape *schema.Shape, data any, depth int, path ps.Path) ps.Result {
	iss, out := v.shape(shape, data, depth, path)
	return ps.Result{Issues: singleDepthIssue(iss), Params: out}
}

// singleDepthIssue keeps only the first depth_exceeded so that a tree cut off
// at the bound is reported once, whatever its branching factor.
func singleDepthIssue(iss ps.Issues) ps.Issues {
	seen := false
	out := iss[:0:0]
	for _, it := range iss {
		if it.Code == ps.CodeDepthExceeded {
			if seen {
				continue
			}
			seen = true
		}
		out = append(out, it)
	}
	if len(out) == 0 {
		return iss
	}
	return out
}

// Validate is a one-shot helper around New(reg).Validate.
func Validate(reg *schema.Registry, shape *schema.Shape, data any) ps.Result {
	return New(reg).Validate(shape, data)
}

func (v *Validator) shape(s *schema.Shape, data any, depth int, path ps.Path) (ps.Issues, map[string]any) {
	if depth > v.maxDepth {
		return ps.Issues{v.issue(nil, path, ps.CodeDepthExceeded, "max_depth", v.maxDepth)}, map[string]any{}
	}
	in, ok := norm.Map(data)
	if !ok {
		return ps.Issues{v.issue(nil, path, ps.CodeTypeInvalid, "expected", "object", "actual", norm.TypeOf(data))}, map[string]any{}
	}
	out := make(map[string]any, s.Len())
	var iss ps.Issues
	for _, p := range s.Params() {
		val, present := in[p.Name]
		res, keep, fi := v.field(p, val, present, false, depth, path.Field(p.Name))
		if len(fi) > 0 {
			iss = ps.AppendIssues(iss, fi...)
			continue
		}
		if keep {
			out[p.Name] = res
		}
	}
	// unknown keys in key-sorted order
	var unknown []string
	for k := range in {
		if _, known := s.Lookup(k); !known {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		iss = ps.AppendIssues(iss, v.issue(nil, path.Field(k), ps.CodeFieldUnknown, "key", k))
	}
	return iss, out
}

// absent applies the type-specific absence rule: booleans are absent only when
// missing or null; other kinds also treat blank strings and empty collections
// as absent. An explicit null on a nullable field is a value.
func absent(p *schema.Param, val any, present bool) bool {
	if !present {
		return true
	}
	if val == nil {
		return !p.IsNullable()
	}
	if t, ok := p.Primitive(); ok && t == schema.BooleanType {
		return false
	}
	return norm.Blank(val)
}

// field runs the per-field chain. item is set for array elements and union
// variants, which are always present and skip the required check. keep is
// false when an optional field is absent and has no default.
func (v *Validator) field(p *schema.Param, val any, present, item bool, depth int, path ps.Path) (any, bool, ps.Issues) {
	_, hasDefault := p.DefaultValue()
	if !item && !p.IsOptional() && !hasDefault && absent(p, val, present) {
		if e := p.EnumSpec(); e != nil {
			if list, ok := e.List(); ok {
				return nil, false, ps.Issues{v.issue(p, path, ps.CodeValueInvalid, "expected", list)}
			}
		}
		return nil, false, ps.Issues{v.issue(p, path, ps.CodeFieldMissing)}
	}
	// a configured default stands in for an absent value, so it also
	// satisfies the required check above
	if def, ok := p.DefaultValue(); ok && (!present || (val == nil && !p.IsNullable())) {
		val, present = def, true
	}
	if !present && !item {
		return nil, false, nil
	}
	if val == nil {
		if p.IsNullable() {
			return nil, true, nil
		}
		return nil, false, ps.Issues{v.issue(p, path, ps.CodeValueNull)}
	}
	if e := p.EnumSpec(); e != nil {
		if list, ok := e.List(); ok && !inEnum(list, val) {
			return nil, false, ps.Issues{v.issue(p, path, ps.CodeValueInvalid, "expected", list, "actual", val)}
		}
	}
	switch c := p.Content.(type) {
	case schema.LiteralContent:
		if !norm.Equal(val, c.Value) {
			return nil, false, ps.Issues{v.issue(p, path, ps.CodeValueInvalid, "expected", c.Value, "actual", val)}
		}
		return val, true, nil
	case schema.UnionContent:
		out, iss := v.union(c.Union, val, depth, path)
		return out, len(iss) == 0, iss
	case schema.PrimitiveContent:
		if !checkPrimitive(c.Type, val) {
			return nil, false, ps.Issues{v.issue(p, path, ps.CodeTypeInvalid, "expected", c.Type.String(), "actual", norm.TypeOf(val))}
		}
		if iss := v.bounds(p, c.Type, val, path); len(iss) > 0 {
			return nil, false, iss
		}
		return val, true, nil
	case schema.ObjectContent:
		iss, out := v.shape(c.Shape, val, depth+1, path)
		if len(iss) > 0 {
			return nil, false, iss
		}
		return out, true, nil
	case schema.ArrayContent:
		out, iss := v.array(p, c.Elem, val, depth, path)
		return out, len(iss) == 0, iss
	case *schema.RefContent:
		out, iss := v.ref(c, val, depth, path)
		return out, len(iss) == 0, iss
	}
	return val, true, nil
}

// ref validates against a named definition. An unresolved name is skipped.
func (v *Validator) ref(r *schema.RefContent, val any, depth int, path ps.Path) (any, ps.Issues) {
	def, ok := v.reg.Target(r)
	if !ok {
		return val, nil
	}
	switch def.Kind {
	case schema.DefType:
		iss, out := v.shape(def.Shape, val, depth+1, path)
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	case schema.DefUnion:
		return v.union(def.Union, val, depth, path)
	}
	return val, nil
}

func (v *Validator) array(p, elem *schema.Param, val any, depth int, path ps.Path) (any, ps.Issues) {
	items, ok := norm.Slice(val)
	if !ok {
		return nil, ps.Issues{v.issue(p, path, ps.CodeTypeInvalid, "expected", "array", "actual", norm.TypeOf(val))}
	}
	lo, hi := p.Bounds()
	if lo != nil && float64(len(items)) < *lo {
		return nil, ps.Issues{v.issue(p, path, ps.CodeArrayTooSmall, "min", bound(*lo), "actual", len(items))}
	}
	if hi != nil && float64(len(items)) > *hi {
		return nil, ps.Issues{v.issue(p, path, ps.CodeArrayTooLarge, "max", bound(*hi), "actual", len(items))}
	}
	// one issue for the whole array rather than one per item
	if len(items) > 0 && v.nests(elem, nil) && depth+1 > v.maxDepth {
		return nil, ps.Issues{v.issue(p, path, ps.CodeDepthExceeded, "max_depth", v.maxDepth)}
	}
	itemDepth := depth
	if _, ok := elem.Content.(schema.ArrayContent); ok {
		itemDepth = depth + 1
	}
	out := make([]any, 0, len(items))
	var iss ps.Issues
	for i, it := range items {
		res, _, ii := v.field(elem, it, true, true, itemDepth, path.Index(i))
		if len(ii) > 0 {
			iss = ps.AppendIssues(iss, ii...)
			continue
		}
		out = append(out, res)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// nests reports whether validating an element descends a level. A union
// nests only through a variant that does; seen guards named unions already
// being inspected.
func (v *Validator) nests(elem *schema.Param, seen map[*schema.Union]bool) bool {
	switch c := elem.Content.(type) {
	case schema.ObjectContent, schema.ArrayContent:
		return true
	case schema.UnionContent:
		return v.unionNests(c.Union, seen)
	case *schema.RefContent:
		def, ok := v.reg.Target(c)
		if !ok {
			return false
		}
		switch def.Kind {
		case schema.DefType:
			return true
		case schema.DefUnion:
			return v.unionNests(def.Union, seen)
		}
	}
	return false
}

func (v *Validator) unionNests(u *schema.Union, seen map[*schema.Union]bool) bool {
	if seen[u] {
		return false
	}
	if seen == nil {
		seen = map[*schema.Union]bool{}
	}
	seen[u] = true
	for _, vr := range u.Variants {
		if v.nests(vr.Param, seen) {
			return true
		}
	}
	return false
}

func inEnum(list []any, val any) bool {
	for _, e := range list {
		if norm.Equal(e, val) {
			return true
		}
	}
	s := norm.Stringify(val)
	for _, e := range list {
		if norm.Stringify(e) == s {
			return true
		}
	}
	return false
}

// issue builds an Issue with its catalog detail, honoring a field-level
// override and the configured locale.
func (v *Validator) issue(p *schema.Param, path ps.Path, code string, kv ...any) ps.Issue {
	it := ps.IssueAt(path, code, kv...)
	if p != nil {
		if d, ok := p.DetailFor(code); ok {
			it.Detail = d
			return it
		}
	}
	if v.locale != "" {
		it.Detail = i18n.TL(code, v.locale, it.Meta)
	}
	return it
}
