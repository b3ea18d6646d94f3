// Package coerce converts string-origin input (query strings, form values,
// loosely typed JSON) toward the types a shape declares. Coercion is best
// effort: a value that cannot be parsed is returned unchanged so the
// Validator can report it.
package coerce

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// Option configures a Coercer.
type Option func(*Coercer)

// WithMaxDepth stops descending past n levels; deeper values are left as-is.
func WithMaxDepth(n int) Option {
	return func(c *Coercer) {
		if n >= 0 {
			c.maxDepth = n
		}
	}
}

// Coercer walks a shape and rewrites values it can parse. It never mutates
// its input and is safe for concurrent use.
type Coercer struct {
	reg      *schema.Registry
	maxDepth int
}

// New returns a Coercer resolving named types through reg.
func New(reg *schema.Registry, opts ...Option) *Coercer {
	c := &Coercer{reg: reg, maxDepth: ps.DefaultMaxDepth}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Coerce returns a copy of data with declared fields converted where
// possible. Undeclared keys are carried over untouched.
func (c *Coercer) Coerce(shape *schema.Shape, data any) any {
	return c.shape(shape, data, 0)
}

// Coerce is a one-shot helper around New(reg).Coerce.
func Coerce(reg *schema.Registry, shape *schema.Shape, data any) any {
	return New(reg).Coerce(shape, data)
}

func (c *Coercer) shape(s *schema.Shape, data any, depth int) any {
	if depth > c.maxDepth {
		return data
	}
	in, ok := norm.Map(data)
	if !ok {
		return data
	}
	out := norm.Copy(in)
	for _, p := range s.Params() {
		if v, ok := in[p.Name]; ok {
			out[p.Name] = c.value(p, v, depth)
		}
	}
	return out
}

func (c *Coercer) value(p *schema.Param, val any, depth int) any {
	if val == nil {
		return nil
	}
	var out any
	switch ct := p.Content.(type) {
	case schema.PrimitiveContent:
		out = primitive(ct.Type, val)
	case schema.ObjectContent:
		out = c.shape(ct.Shape, val, depth+1)
	case schema.ArrayContent:
		out = c.array(ct.Elem, val, depth)
	case schema.UnionContent:
		out = c.union(ct.Union, val, depth)
	case schema.LiteralContent:
		out = val
		if !norm.Equal(val, ct.Value) && norm.Stringify(val) == norm.Stringify(ct.Value) {
			out = ct.Value
		}
	case *schema.RefContent:
		out = c.ref(ct, val, depth)
	default:
		out = val
	}
	return enumValue(p, out)
}

// enumValue maps a string-origin value onto the enum member it spells.
func enumValue(p *schema.Param, val any) any {
	e := p.EnumSpec()
	if e == nil {
		return val
	}
	list, ok := e.List()
	if !ok {
		return val
	}
	for _, m := range list {
		if norm.Equal(m, val) {
			return val
		}
	}
	s := norm.Stringify(val)
	for _, m := range list {
		if norm.Stringify(m) == s {
			return m
		}
	}
	return val
}

func (c *Coercer) ref(r *schema.RefContent, val any, depth int) any {
	def, ok := c.reg.Target(r)
	if !ok {
		return val
	}
	switch def.Kind {
	case schema.DefType:
		return c.shape(def.Shape, val, depth+1)
	case schema.DefUnion:
		return c.union(def.Union, val, depth)
	}
	return val
}

func (c *Coercer) array(elem *schema.Param, val any, depth int) any {
	items, ok := norm.Slice(val)
	if !ok {
		return val
	}
	itemDepth := depth
	if _, ok := elem.Content.(schema.ArrayContent); ok {
		itemDepth = depth + 1
	}
	if itemDepth > c.maxDepth {
		return val
	}
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = c.value(elem, it, itemDepth)
	}
	return out
}

func (c *Coercer) union(u *schema.Union, val any, depth int) any {
	if u.HasBoolean() {
		if b, ok := ParseBool(val); ok {
			return b
		}
	}
	if u.Discriminated() {
		return c.discriminated(u, val, depth)
	}
	for _, vr := range u.Variants {
		out := c.value(vr.Param, val, depth)
		if c.fits(vr.Param, out) {
			return out
		}
	}
	return val
}

func (c *Coercer) discriminated(u *schema.Union, val any, depth int) any {
	m, ok := norm.Map(val)
	if !ok {
		return val
	}
	dv, ok := m[u.Discriminator]
	if !ok || dv == nil {
		return val
	}
	vr, ok := u.VariantFor(norm.Stringify(dv))
	if !ok {
		return val
	}
	return c.value(vr.Param, m, depth)
}

// fits reports whether a coerced value structurally matches a variant, which
// is how the first matching variant of an undiscriminated union is chosen.
func (c *Coercer) fits(p *schema.Param, val any) bool {
	switch ct := p.Content.(type) {
	case schema.PrimitiveContent:
		return native(ct.Type, val)
	case schema.ObjectContent:
		_, ok := norm.Map(val)
		return ok
	case schema.ArrayContent:
		_, ok := norm.Slice(val)
		return ok
	case schema.LiteralContent:
		return norm.Equal(val, ct.Value)
	case *schema.RefContent:
		def, ok := c.reg.Target(ct)
		if !ok || def.Kind != schema.DefType {
			return true
		}
		_, ok = norm.Map(val)
		return ok
	}
	return true
}

// primitive converts string-origin values to the Go type used for t. Values
// already of a compatible type are returned as-is.
func primitive(t schema.Primitive, val any) any {
	switch t {
	case schema.StringType:
		if n, ok := val.(json.Number); ok {
			return string(n)
		}
		return val
	case schema.BooleanType:
		if _, ok := val.(bool); ok {
			return val
		}
		if b, ok := ParseBool(val); ok {
			return b
		}
	case schema.IntegerType:
		if !stringish(val) {
			return val
		}
		if i, ok := ParseInteger(val); ok {
			return i
		}
	case schema.NumberType:
		if !stringish(val) {
			return val
		}
		if f, ok := ParseNumber(val); ok {
			return f
		}
	case schema.DecimalType:
		if !stringish(val) {
			return val
		}
		if d, ok := ParseDecimal(val); ok {
			return d
		}
	case schema.DateType:
		if tm, ok := ParseDate(val); ok {
			return tm
		}
	case schema.DateTimeType:
		if tm, ok := ParseDateTime(val); ok {
			return tm
		}
	case schema.TimeType:
		if tm, ok := ParseTime(val); ok {
			return tm
		}
	case schema.UUIDType:
		if u, ok := ParseUUID(val); ok {
			return u
		}
	}
	return val
}

// native reports whether val already has the Go type primitive produces.
func native(t schema.Primitive, val any) bool {
	switch t {
	case schema.StringType:
		_, ok := val.(string)
		return ok
	case schema.BooleanType:
		_, ok := val.(bool)
		return ok
	case schema.IntegerType:
		_, ok := norm.Int64(val)
		return ok && !stringish(val)
	case schema.NumberType, schema.DecimalType:
		return norm.Numeric(val) && !stringish(val)
	case schema.DateType, schema.DateTimeType, schema.TimeType:
		_, ok := val.(time.Time)
		return ok
	case schema.UUIDType:
		_, ok := val.(uuid.UUID)
		return ok
	}
	return false
}

func stringish(v any) bool {
	switch v.(type) {
	case string, json.Number, []byte:
		return true
	}
	return false
}
