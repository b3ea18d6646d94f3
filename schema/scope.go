package schema

import (
	"fmt"
	"strings"
)

// ScopeKind orders lexical scopes from outermost to innermost.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeContract
	ScopeAction
	ScopeRequest
	ScopeResponse
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeContract:
		return "contract"
	case ScopeAction:
		return "action"
	case ScopeRequest:
		return "request"
	case ScopeResponse:
		return "response"
	}
	return "unknown"
}

// Scope is a node in the lexical scope tree. Scopes are created through a
// RegistryBuilder and are identity-compared.
type Scope struct {
	kind     ScopeKind
	name     string
	parent   *Scope
	b        *RegistryBuilder
	children map[string]*Scope
}

func (s *Scope) Kind() ScopeKind { return s.kind }
func (s *Scope) Name() string    { return s.name }
func (s *Scope) Parent() *Scope  { return s.parent }

// String renders the scope chain outermost first, e.g. "users.create.request".
func (s *Scope) String() string {
	if s == nil {
		return "<nil>"
	}
	var parts []string
	for c := s; c != nil; c = c.parent {
		if c.kind == ScopeGlobal {
			continue
		}
		parts = append(parts, c.name)
	}
	if len(parts) == 0 {
		return "global"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Chain lists the scopes consulted by resolution, innermost first. A response
// scope does not see its sibling request scope.
func (s *Scope) Chain() []*Scope {
	var out []*Scope
	for c := s; c != nil; c = c.parent {
		out = append(out, c)
	}
	return out
}

// Contract returns (creating on first use) a contract scope under global.
func (s *Scope) Contract(name string) *Scope { return s.child(ScopeGlobal, ScopeContract, name) }

// Action returns an action scope under a contract.
func (s *Scope) Action(name string) *Scope { return s.child(ScopeContract, ScopeAction, name) }

// Request returns the request scope of an action.
func (s *Scope) Request() *Scope { return s.child(ScopeAction, ScopeRequest, "request") }

// Response returns the response scope of an action.
func (s *Scope) Response() *Scope { return s.child(ScopeAction, ScopeResponse, "response") }

func (s *Scope) child(want, kind ScopeKind, name string) *Scope {
	if s.kind != want {
		s.b.fail(fmt.Errorf("%w: %s under %s %q", ErrScopeKind, kind, s.kind, s.name))
	}
	if name == "" {
		s.b.fail(fmt.Errorf("%w: %s scope", ErrEmptyName, kind))
	}
	if c, ok := s.children[name]; ok {
		return c
	}
	c := &Scope{kind: kind, name: name, parent: s, b: s.b}
	if s.b.built {
		// no definitions can live here; keep the built tree read-only
		return c
	}
	if s.children == nil {
		s.children = map[string]*Scope{}
	}
	s.children[name] = c
	return c
}
