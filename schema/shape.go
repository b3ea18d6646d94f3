package schema

import "fmt"

// Shape is an ordered, closed set of field declarations. It is immutable once
// built and safe for concurrent reads.
type Shape struct {
	params []*Param
	index  map[string]int
	scope  *Scope
}

// NewShape builds a Shape from params, in declaration order. Configuration
// errors on any param (including nested shapes, arrays and unions) are
// reported here.
func NewShape(params ...*Param) (*Shape, error) {
	s := &Shape{params: make([]*Param, 0, len(params)), index: make(map[string]int, len(params))}
	for _, p := range params {
		if p == nil {
			return nil, ErrNoContent
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: field name", ErrEmptyName)
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, p.Name)
		}
		if err := p.check(); err != nil {
			return nil, err
		}
		s.index[p.Name] = len(s.params)
		s.params = append(s.params, p)
	}
	return s, nil
}

// MustShape is NewShape that panics on configuration errors.
func MustShape(params ...*Param) *Shape {
	s, err := NewShape(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Params returns the declared fields in order. Callers must not modify the
// returned slice.
func (s *Shape) Params() []*Param { return s.params }

// Lookup returns the declaration for a wire field name.
func (s *Shape) Lookup(name string) (*Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.params[i], true
}

// Len returns the number of declared fields.
func (s *Shape) Len() int { return len(s.params) }

// Scope returns the lexical scope the shape was bound to (nil before Build).
func (s *Shape) Scope() *Scope { return s.scope }
