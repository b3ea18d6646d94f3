package schema

import (
	"errors"
	"fmt"
)

// DefID indexes a definition in the registry arena. 0 means "unresolved".
type DefID int

// DefKind tells what a definition carries.
type DefKind int

const (
	DefType DefKind = iota + 1
	DefUnion
	DefEnum
)

func (k DefKind) String() string {
	switch k {
	case DefType:
		return "type"
	case DefUnion:
		return "union"
	case DefEnum:
		return "enum"
	}
	return "unknown"
}

// Definition is a named type, union or enum registered at a scope.
type Definition struct {
	ID    DefID
	Name  string
	Kind  DefKind
	Scope *Scope
	Shape *Shape
	Union *Union
	Enum  []any
}

// Unresolved records a reference whose name no scope in its chain declares.
// Validation treats such fields permissively.
type Unresolved struct {
	Name  string
	Kind  DefKind
	Scope *Scope
}

// table maps a scope to its names; enums live in their own namespace.
type table map[*Scope]map[string]DefID

func (t table) put(s *Scope, name string, id DefID) bool {
	m := t[s]
	if m == nil {
		m = map[string]DefID{}
		t[s] = m
	}
	if _, dup := m[name]; dup {
		return false
	}
	m[name] = id
	return true
}

func (t table) resolve(name string, s *Scope) DefID {
	for _, c := range s.Chain() {
		if id, ok := t[c][name]; ok {
			return id
		}
	}
	return 0
}

type attachment struct {
	scope *Scope
	shape *Shape
}

// RegistryBuilder collects declarations during configuration. Build turns it
// into an immutable Registry; the builder cannot be used afterwards.
type RegistryBuilder struct {
	global   *Scope
	defs     []Definition
	types    table
	enums    table
	attached []attachment
	errs     []error
	built    bool
}

// NewRegistryBuilder returns a builder with an empty global scope.
func NewRegistryBuilder() *RegistryBuilder {
	b := &RegistryBuilder{
		defs:  []Definition{{}}, // slot 0 reserved for "unresolved"
		types: table{},
		enums: table{},
	}
	b.global = &Scope{kind: ScopeGlobal, name: "global", b: b}
	return b
}

// Global returns the root scope.
func (b *RegistryBuilder) Global() *Scope { return b.global }

func (b *RegistryBuilder) fail(err error) {
	if !b.built {
		b.errs = append(b.errs, err)
	}
}

func (b *RegistryBuilder) define(scope *Scope, d Definition, t table) DefID {
	if b.built {
		b.errs = append(b.errs, ErrRegistryBuilt)
		return 0
	}
	if scope == nil || scope.b != b {
		scope = b.global
	}
	if d.Name == "" {
		b.fail(fmt.Errorf("%w: %s definition", ErrEmptyName, d.Kind))
		return 0
	}
	d.ID = DefID(len(b.defs))
	d.Scope = scope
	if !t.put(scope, d.Name, d.ID) {
		b.fail(fmt.Errorf("%w: %s %q in %s", ErrDuplicateName, d.Kind, d.Name, scope))
		return 0
	}
	b.defs = append(b.defs, d)
	return d.ID
}

// DefineType registers a named object type.
func (b *RegistryBuilder) DefineType(scope *Scope, name string, shape *Shape) DefID {
	if shape == nil {
		b.fail(fmt.Errorf("%w: type %q", ErrNoContent, name))
		return 0
	}
	return b.define(scope, Definition{Name: name, Kind: DefType, Shape: shape}, b.types)
}

// DefineUnion registers a named union. Types and unions share a namespace.
func (b *RegistryBuilder) DefineUnion(scope *Scope, name string, u *Union) DefID {
	if u == nil {
		b.fail(fmt.Errorf("%w: union %q", ErrNoContent, name))
		return 0
	}
	return b.define(scope, Definition{Name: name, Kind: DefUnion, Union: u}, b.types)
}

// DefineEnum registers a named list of allowed values.
func (b *RegistryBuilder) DefineEnum(scope *Scope, name string, values ...any) DefID {
	return b.define(scope, Definition{Name: name, Kind: DefEnum, Enum: values}, b.enums)
}

// Attach binds a root shape (a request body, a query, a response payload) to
// the scope its references resolve from.
func (b *RegistryBuilder) Attach(scope *Scope, shape *Shape) {
	if b.built {
		b.errs = append(b.errs, ErrRegistryBuilt)
		return
	}
	if shape == nil {
		b.fail(fmt.Errorf("%w: attached shape", ErrNoContent))
		return
	}
	if scope == nil || scope.b != b {
		scope = b.global
	}
	b.attached = append(b.attached, attachment{scope: scope, shape: shape})
}

// Build binds every reference to its definition and returns the immutable
// Registry. References with no visible declaration are recorded, not failed.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if b.built {
		return nil, ErrRegistryBuilt
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	bd := &binder{b: b}
	for i := 1; i < len(b.defs); i++ {
		d := &b.defs[i]
		switch d.Kind {
		case DefType:
			bd.shape(d.Scope, d.Shape)
		case DefUnion:
			bd.union(d.Scope, d.Union)
		}
	}
	for _, a := range b.attached {
		bd.shape(a.scope, a.shape)
	}
	if len(bd.errs) > 0 {
		return nil, errors.Join(bd.errs...)
	}
	if err := b.unionCycles(); err != nil {
		return nil, err
	}
	b.built = true
	return &Registry{
		global:     b.global,
		defs:       b.defs,
		types:      b.types,
		enums:      b.enums,
		unresolved: bd.unresolved,
	}, nil
}

// unionCycles rejects a named union that reaches itself through union
// variants alone. Such a cycle consumes no input, so no walker could stop it.
func (b *RegistryBuilder) unionCycles() error {
	const (
		open = iota + 1
		done
	)
	state := map[*Union]int{}
	var visit func(u *Union) bool
	visit = func(u *Union) bool {
		switch state[u] {
		case open:
			return false
		case done:
			return true
		}
		state[u] = open
		for _, v := range u.Variants {
			if next := b.unionOf(v.Param); next != nil && !visit(next) {
				return false
			}
		}
		state[u] = done
		return true
	}
	for i := 1; i < len(b.defs); i++ {
		d := &b.defs[i]
		if d.Kind == DefUnion && !visit(d.Union) {
			return fmt.Errorf("%w: %s", ErrUnionCycle, d.Name)
		}
	}
	return nil
}

// unionOf returns the union a variant stands for directly, inline or by
// reference.
func (b *RegistryBuilder) unionOf(p *Param) *Union {
	switch c := p.Content.(type) {
	case UnionContent:
		return c.Union
	case *RefContent:
		if c.target != 0 && b.defs[c.target].Kind == DefUnion {
			return b.defs[c.target].Union
		}
	}
	return nil
}

// MustBuild is Build that panics on configuration errors.
func (b *RegistryBuilder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// binder walks shapes once, fixing each reference's target from the lexical
// scope of the shape that declares it.
type binder struct {
	b          *RegistryBuilder
	errs       []error
	unresolved []Unresolved
}

func (bd *binder) shape(scope *Scope, s *Shape) {
	if s.scope != nil {
		if s.scope != scope {
			bd.errs = append(bd.errs, fmt.Errorf("%w: %s and %s", ErrScopeRebind, s.scope, scope))
		}
		return
	}
	s.scope = scope
	for _, p := range s.params {
		bd.param(scope, p)
	}
}

func (bd *binder) union(scope *Scope, u *Union) {
	for _, v := range u.Variants {
		bd.param(scope, v.Param)
	}
}

func (bd *binder) param(scope *Scope, p *Param) {
	if e := p.enum; e != nil && e.Name != "" {
		bd.enum(scope, e)
	}
	switch c := p.Content.(type) {
	case ObjectContent:
		bd.shape(scope, c.Shape)
	case ArrayContent:
		bd.param(scope, c.Elem)
	case UnionContent:
		bd.union(scope, c.Union)
	case *RefContent:
		bd.ref(scope, c)
	}
}

func (bd *binder) ref(scope *Scope, r *RefContent) {
	if r.scope != nil {
		if r.scope != scope {
			bd.errs = append(bd.errs, fmt.Errorf("%w: ref %q in %s and %s", ErrScopeRebind, r.Name, r.scope, scope))
		}
		return
	}
	r.scope = scope
	r.target = bd.b.types.resolve(r.Name, scope)
	if r.target == 0 {
		bd.unresolved = append(bd.unresolved, Unresolved{Name: r.Name, Kind: DefType, Scope: scope})
	}
}

func (bd *binder) enum(scope *Scope, e *Enum) {
	if e.scope != nil {
		if e.scope != scope {
			bd.errs = append(bd.errs, fmt.Errorf("%w: enum %q in %s and %s", ErrScopeRebind, e.Name, e.scope, scope))
		}
		return
	}
	e.scope = scope
	id := bd.b.enums.resolve(e.Name, scope)
	if id == 0 {
		bd.unresolved = append(bd.unresolved, Unresolved{Name: e.Name, Kind: DefEnum, Scope: scope})
		return
	}
	e.bound, e.ok = bd.b.defs[id].Enum, true
}

// Registry is the immutable table of named definitions. All methods are safe
// for concurrent use.
type Registry struct {
	global     *Scope
	defs       []Definition
	types      table
	enums      table
	unresolved []Unresolved
}

// Global returns the root scope.
func (r *Registry) Global() *Scope { return r.global }

// Def returns the definition with id.
func (r *Registry) Def(id DefID) (*Definition, bool) {
	if r == nil || id <= 0 || int(id) >= len(r.defs) {
		return nil, false
	}
	return &r.defs[id], true
}

// Target returns the definition a reference was bound to.
func (r *Registry) Target(ref *RefContent) (*Definition, bool) { return r.Def(ref.target) }

// Resolve finds a type or union visible from scope, innermost declaration
// first.
func (r *Registry) Resolve(name string, scope *Scope) (*Definition, bool) {
	if r == nil || scope == nil {
		return nil, false
	}
	return r.Def(r.types.resolve(name, scope))
}

// ResolveEnum finds an enum visible from scope.
func (r *Registry) ResolveEnum(name string, scope *Scope) (*Definition, bool) {
	if r == nil || scope == nil {
		return nil, false
	}
	return r.Def(r.enums.resolve(name, scope))
}

// Definitions returns every definition in registration order.
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	out := make([]Definition, len(r.defs)-1)
	copy(out, r.defs[1:])
	return out
}

// Unresolved lists references that resolved to nothing.
func (r *Registry) Unresolved() []Unresolved {
	if r == nil {
		return nil
	}
	out := make([]Unresolved, len(r.unresolved))
	copy(out, r.unresolved)
	return out
}
