package schema

import (
	"fmt"
	"maps"
)

// ContentKind identifies which variant of Content a Param carries.
type ContentKind int

const (
	ContentPrimitive ContentKind = iota + 1
	ContentObject
	ContentArray
	ContentUnion
	ContentLiteral
	ContentRef
)

// Content is the tagged variant describing what a Param holds. Exactly one of
// the concrete types below is set on every Param.
type Content interface {
	Kind() ContentKind
}

// PrimitiveContent is a scalar with a primitive tag.
type PrimitiveContent struct{ Type Primitive }

// ObjectContent is a nested, closed Shape.
type ObjectContent struct{ Shape *Shape }

// ArrayContent holds elements described by Elem. Item-count bounds come from
// the owning Param's Min/Max.
type ArrayContent struct{ Elem *Param }

// UnionContent is an inline union.
type UnionContent struct{ Union *Union }

// LiteralContent requires the exact configured constant.
type LiteralContent struct{ Value any }

// RefContent names a registered type or union. Its target is bound once by
// RegistryBuilder.Build from the lexical scope of the enclosing shape.
type RefContent struct {
	Name   string
	target DefID
	scope  *Scope
}

func (PrimitiveContent) Kind() ContentKind { return ContentPrimitive }
func (ObjectContent) Kind() ContentKind    { return ContentObject }
func (ArrayContent) Kind() ContentKind     { return ContentArray }
func (UnionContent) Kind() ContentKind     { return ContentUnion }
func (LiteralContent) Kind() ContentKind   { return ContentLiteral }
func (*RefContent) Kind() ContentKind      { return ContentRef }

// Target returns the bound definition id (0 when unresolved).
func (r *RefContent) Target() DefID { return r.target }

// Enum is an allowed-value list, inline or by named reference.
type Enum struct {
	Values []any
	Name   string
	bound  []any
	ok     bool
	scope  *Scope
}

// List returns the allowed values. For a named enum that failed to resolve it
// returns false and callers skip the check.
func (e *Enum) List() ([]any, bool) {
	if e.Name == "" {
		return e.Values, true
	}
	return e.bound, e.ok
}

// Attribute is an externally supplied descriptor whose hooks move a field's
// value between wire and domain form.
type Attribute interface {
	Decode(v any) (any, error)
	Encode(v any) (any, error)
}

// Param declares one field. Name is ignored for array elements and union
// variants.
type Param struct {
	Name    string
	Content Content

	optional   bool
	nullable   bool
	def        any
	hasDefault bool
	enum       *Enum
	min, max   *float64
	as         string
	store      any
	hasStore   bool
	transform  func(any) any
	attr       Attribute
	details    map[string]string
	err        error
}

func newParam(name string, c Content) *Param { return &Param{Name: name, Content: c} }

// String declares a string field.
func String(name string) *Param { return Prim(name, StringType) }

// Integer declares an integer field.
func Integer(name string) *Param { return Prim(name, IntegerType) }

// Number declares a floating point field.
func Number(name string) *Param { return Prim(name, NumberType) }

// Decimal declares an arbitrary precision decimal field.
func Decimal(name string) *Param { return Prim(name, DecimalType) }

// Boolean declares a boolean field.
func Boolean(name string) *Param { return Prim(name, BooleanType) }

// Date declares a calendar date field (2006-01-02).
func Date(name string) *Param { return Prim(name, DateType) }

// DateTime declares an RFC 3339 timestamp field.
func DateTime(name string) *Param { return Prim(name, DateTimeType) }

// Time declares a time-of-day field.
func Time(name string) *Param { return Prim(name, TimeType) }

// UUID declares a canonical 8-4-4-4-12 uuid field.
func UUID(name string) *Param { return Prim(name, UUIDType) }

// Prim declares a field with an explicit primitive tag.
func Prim(name string, t Primitive) *Param { return newParam(name, PrimitiveContent{Type: t}) }

// Nested declares an object field described by shape.
func Nested(name string, shape *Shape) *Param {
	p := newParam(name, ObjectContent{Shape: shape})
	if shape == nil {
		p.err = fmt.Errorf("%w: %q has nil shape", ErrNoContent, name)
	}
	return p
}

// ArrayOf declares an array field whose elements are described by elem.
func ArrayOf(name string, elem *Param) *Param {
	p := newParam(name, ArrayContent{Elem: elem})
	if elem == nil {
		p.err = fmt.Errorf("%w: %q has nil element", ErrNoContent, name)
	}
	return p
}

// UnionOf declares a field holding one of u's variants.
func UnionOf(name string, u *Union) *Param {
	p := newParam(name, UnionContent{Union: u})
	if u == nil {
		p.err = fmt.Errorf("%w: %q has nil union", ErrNoContent, name)
	}
	return p
}

// Literal declares a field that must equal value exactly.
func Literal(name string, value any) *Param {
	p := newParam(name, LiteralContent{Value: value})
	if value == nil {
		p.err = fmt.Errorf("%w: %q", ErrLiteralValue, name)
	}
	return p
}

// Ref declares a field of a named custom type or union.
func Ref(name, typeName string) *Param {
	p := newParam(name, &RefContent{Name: typeName})
	if typeName == "" {
		p.err = fmt.Errorf("%w: ref for %q", ErrEmptyName, name)
	}
	return p
}

// Optional marks the field as not required.
func (p *Param) Optional() *Param { p.optional = true; return p }

// Nullable accepts an explicit null.
func (p *Param) Nullable() *Param { p.nullable = true; return p }

// Default substitutes v when the field is absent, so the field is no longer
// required.
func (p *Param) Default(v any) *Param { p.def, p.hasDefault = v, true; return p }

// Enum restricts the value to the given list.
func (p *Param) Enum(values ...any) *Param { p.enum = &Enum{Values: values}; return p }

// EnumRef restricts the value to a named, registered enum.
func (p *Param) EnumRef(name string) *Param {
	if name == "" {
		p.setErr(fmt.Errorf("%w: enum ref for %q", ErrEmptyName, p.Name))
	}
	p.enum = &Enum{Name: name}
	return p
}

// Min sets the lower bound: length for strings, value for numbers, item count
// for arrays.
func (p *Param) Min(v float64) *Param { p.min = &v; return p.checkBounds() }

// Max sets the upper bound; see Min.
func (p *Param) Max(v float64) *Param { p.max = &v; return p.checkBounds() }

// As renames the field when the Transformer hands data to persistence.
func (p *Param) As(name string) *Param { p.as = name; return p }

// Store replaces the value with v during the Transformer pass.
func (p *Param) Store(v any) *Param { p.store, p.hasStore = v, true; return p }

// Transform maps the value through fn during the Transformer pass.
func (p *Param) Transform(fn func(any) any) *Param { p.transform = fn; return p }

// Attr attaches an attribute descriptor used by the Deserializer.
func (p *Param) Attr(a Attribute) *Param { p.attr = a; return p }

// Detail overrides the human text emitted for code on this field.
func (p *Param) Detail(code, text string) *Param {
	if p.details == nil {
		p.details = map[string]string{}
	}
	p.details[code] = text
	return p
}

func (p *Param) setErr(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Param) checkBounds() *Param {
	if p.min != nil && p.max != nil && *p.min > *p.max {
		p.setErr(fmt.Errorf("%w: %q", ErrBoundsReversed, p.Name))
	}
	return p
}

// IsOptional reports whether the field may be absent.
func (p *Param) IsOptional() bool { return p.optional }

// IsNullable reports whether an explicit null is accepted.
func (p *Param) IsNullable() bool { return p.nullable }

// DefaultValue returns the configured default.
func (p *Param) DefaultValue() (any, bool) { return p.def, p.hasDefault }

// EnumSpec returns the enum restriction, if any.
func (p *Param) EnumSpec() *Enum { return p.enum }

// Bounds returns the configured min and max.
func (p *Param) Bounds() (lo, hi *float64) { return p.min, p.max }

// StoreValue returns the fixed value substituted by the Transformer.
func (p *Param) StoreValue() (any, bool) { return p.store, p.hasStore }

// TransformFunc returns the value-mapping func applied by the Transformer.
func (p *Param) TransformFunc() func(any) any { return p.transform }

// Attribute returns the attached attribute descriptor.
func (p *Param) Attribute() Attribute { return p.attr }

// Key returns the output key used by the Transformer.
func (p *Param) Key() string {
	if p.as != "" {
		return p.as
	}
	return p.Name
}

// DetailFor returns a field-level override for code.
func (p *Param) DetailFor(code string) (string, bool) {
	s, ok := p.details[code]
	return s, ok
}

// Details returns a copy of every detail override.
func (p *Param) Details() map[string]string { return maps.Clone(p.details) }

// Primitive returns the primitive tag when the content is primitive.
func (p *Param) Primitive() (Primitive, bool) {
	if pc, ok := p.Content.(PrimitiveContent); ok {
		return pc.Type, true
	}
	return 0, false
}

// TypeName names the param's content for diagnostics: the primitive name,
// "object", "array", "union", "literal" or the referenced type name.
func (p *Param) TypeName() string {
	switch c := p.Content.(type) {
	case PrimitiveContent:
		return c.Type.String()
	case ObjectContent:
		return "object"
	case ArrayContent:
		return "array"
	case UnionContent:
		return "union"
	case LiteralContent:
		return "literal"
	case *RefContent:
		return c.Name
	}
	return "unknown"
}

// check reports the first configuration error of p and its inline children.
func (p *Param) check() error {
	if p == nil {
		return ErrNoContent
	}
	if p.err != nil {
		return p.err
	}
	switch c := p.Content.(type) {
	case nil:
		return fmt.Errorf("%w: %q", ErrNoContent, p.Name)
	case PrimitiveContent:
		if _, ok := primitiveNames[c.Type]; !ok {
			return fmt.Errorf("%w: %q has unknown primitive", ErrNoContent, p.Name)
		}
	case ArrayContent:
		if err := c.Elem.check(); err != nil {
			return fmt.Errorf("%s[]: %w", p.Name, err)
		}
	case LiteralContent:
		if c.Value == nil {
			return fmt.Errorf("%w: %q", ErrLiteralValue, p.Name)
		}
	}
	if p.min != nil || p.max != nil {
		switch c := p.Content.(type) {
		case ArrayContent:
		case PrimitiveContent:
			if c.Type != StringType && !c.Type.Numeric() {
				return fmt.Errorf("%w: %q (%s)", ErrBoundsContent, p.Name, c.Type)
			}
		default:
			return fmt.Errorf("%w: %q (%s)", ErrBoundsContent, p.Name, p.TypeName())
		}
	}
	return nil
}
