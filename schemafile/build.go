package schemafile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reoring/paramshape/schema"
)

type loader struct {
	log    zerolog.Logger
	b      *schema.RegistryBuilder
	shapes map[string]*schema.Shape
}

func (ld *loader) load(doc *document) (*Bundle, error) {
	if err := ld.scope(ld.b.Global(), &doc.scopeDef); err != nil {
		return nil, err
	}
	for i := range doc.Contracts {
		c := &doc.Contracts[i]
		cs := ld.b.Global().Contract(c.Name)
		if err := ld.scope(cs, &c.scopeDef); err != nil {
			return nil, err
		}
		for k := range c.Actions {
			if err := ld.action(cs, c.Name, &c.Actions[k]); err != nil {
				return nil, err
			}
		}
	}
	reg, err := ld.b.Build()
	if err != nil {
		return nil, err
	}
	for _, u := range reg.Unresolved() {
		ld.log.Warn().Str("scope", u.Scope.String()).Str("kind", u.Kind.String()).Str("name", u.Name).
			Msg("unresolved reference; values are accepted unchecked")
	}
	ld.log.Debug().Int("definitions", len(reg.Definitions())).Int("shapes", len(ld.shapes)).Msg("schema loaded")
	return &Bundle{Registry: reg, shapes: ld.shapes}, nil
}

func (ld *loader) action(cs *schema.Scope, contract string, a *actionDef) error {
	as := cs.Action(a.Name)
	if err := ld.scope(as, &a.scopeDef); err != nil {
		return err
	}
	sides := []struct {
		def   *shapeDef
		scope *schema.Scope
		kind  schema.ScopeKind
	}{
		{a.Request, as.Request(), schema.ScopeRequest},
		{a.Response, as.Response(), schema.ScopeResponse},
	}
	for _, side := range sides {
		if side.def == nil {
			continue
		}
		key := Key(contract, a.Name, side.kind)
		if _, dup := ld.shapes[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateShape, key)
		}
		if err := ld.scope(side.scope, &side.def.scopeDef); err != nil {
			return err
		}
		shape, err := ld.shape(key, side.def.Fields)
		if err != nil {
			return err
		}
		ld.b.Attach(side.scope, shape)
		ld.shapes[key] = shape
		ld.log.Debug().Str("shape", key).Int("fields", shape.Len()).Msg("attached shape")
	}
	return nil
}

// scope registers the named definitions declared directly in one scope.
func (ld *loader) scope(s *schema.Scope, d *scopeDef) error {
	names := make([]string, 0, len(d.Enums))
	for name := range d.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ld.b.DefineEnum(s, name, d.Enums[name]...)
		ld.log.Debug().Str("scope", s.String()).Str("enum", name).Msg("defined enum")
	}
	for _, t := range d.Types {
		shape, err := ld.shape(s.String()+"."+t.Name, t.Fields)
		if err != nil {
			return err
		}
		ld.b.DefineType(s, t.Name, shape)
		ld.log.Debug().Str("scope", s.String()).Str("type", t.Name).Msg("defined type")
	}
	for i := range d.Unions {
		u := &d.Unions[i]
		un, err := ld.union(s.String()+"."+u.Name, u)
		if err != nil {
			return err
		}
		ld.b.DefineUnion(s, u.Name, un)
		ld.log.Debug().Str("scope", s.String()).Str("union", u.Name).Msg("defined union")
	}
	return nil
}

func (ld *loader) shape(where string, fields []fieldDef) (*schema.Shape, error) {
	params := make([]*schema.Param, 0, len(fields))
	for i := range fields {
		p, err := ld.param(where+"."+fields[i].Name, &fields[i])
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	s, err := schema.NewShape(params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	return s, nil
}

func (ld *loader) union(where string, u *unionDef) (*schema.Union, error) {
	variants := make([]schema.VariantSpec, 0, len(u.Variants))
	for i := range u.Variants {
		v := &u.Variants[i]
		p, err := ld.param(fmt.Sprintf("%s[%d]", where, i), &v.fieldDef)
		if err != nil {
			return nil, err
		}
		variants = append(variants, schema.Variant(v.Tag, p))
	}
	un, err := schema.NewUnion(u.Discriminator, variants...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	return un, nil
}

func (ld *loader) param(where string, f *fieldDef) (*schema.Param, error) {
	var p *schema.Param
	typ := strings.ToLower(strings.TrimSpace(f.Type))
	if typ == "" && len(f.Fields) > 0 {
		typ = "object"
	}
	switch typ {
	case "":
		return nil, fmt.Errorf("%w: %s", ErrFieldType, where)
	case "object":
		s, err := ld.shape(where, f.Fields)
		if err != nil {
			return nil, err
		}
		p = schema.Nested(f.Name, s)
	case "array":
		if f.Items == nil {
			return nil, fmt.Errorf("%w: %s: array without items", ErrFieldType, where)
		}
		elem, err := ld.param(where+"[]", f.Items)
		if err != nil {
			return nil, err
		}
		p = schema.ArrayOf(f.Name, elem)
	case "union":
		if f.Union == nil {
			return nil, fmt.Errorf("%w: %s: union without variants", ErrFieldType, where)
		}
		u, err := ld.union(where, f.Union)
		if err != nil {
			return nil, err
		}
		p = schema.UnionOf(f.Name, u)
	case "literal":
		p = schema.Literal(f.Name, f.Value)
	default:
		if t, ok := schema.ParsePrimitive(typ); ok {
			p = schema.Prim(f.Name, t)
		} else {
			// named type, kept as written since names are case-sensitive
			p = schema.Ref(f.Name, strings.TrimSpace(f.Type))
		}
	}
	if err := ld.modifiers(where, p, f); err != nil {
		return nil, err
	}
	return p, nil
}

func (ld *loader) modifiers(where string, p *schema.Param, f *fieldDef) error {
	if f.Optional {
		p.Optional()
	}
	if f.Nullable {
		p.Nullable()
	}
	if f.Default != nil {
		p.Default(f.Default)
	}
	if len(f.Enum) > 0 {
		p.Enum(f.Enum...)
	}
	if f.EnumRef != "" {
		p.EnumRef(f.EnumRef)
	}
	if f.Min != nil {
		p.Min(*f.Min)
	}
	if f.Max != nil {
		p.Max(*f.Max)
	}
	if f.As != "" {
		p.As(f.As)
	}
	if f.Codec != "" {
		mk, ok := Codecs[strings.ToLower(f.Codec)]
		if !ok {
			return fmt.Errorf("%w: %s: %q", ErrUnknownCodec, where, f.Codec)
		}
		p.Attr(mk())
	}
	for code, text := range f.Details {
		p.Detail(code, text)
	}
	return nil
}
