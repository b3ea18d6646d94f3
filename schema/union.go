package schema

import "fmt"

// VariantSpec is one alternative of a Union. Tag is required when the union
// has a discriminator.
type VariantSpec struct {
	Tag   string
	Param *Param
}

// Variant declares a tagged alternative.
func Variant(tag string, p *Param) VariantSpec { return VariantSpec{Tag: tag, Param: p} }

// Alt declares an untagged alternative for undiscriminated unions.
func Alt(p *Param) VariantSpec { return VariantSpec{Param: p} }

// Union is an ordered set of alternatives, optionally selected by a
// discriminator field.
type Union struct {
	Discriminator string
	Variants      []VariantSpec
}

// NewUnion validates and builds a Union. With a discriminator every variant
// must carry a unique tag and describe an object (inline or by reference).
func NewUnion(discriminator string, variants ...VariantSpec) (*Union, error) {
	if len(variants) == 0 {
		return nil, ErrEmptyUnion
	}
	seen := map[string]struct{}{}
	for i, v := range variants {
		if err := v.Param.check(); err != nil {
			return nil, fmt.Errorf("variant %d: %w", i, err)
		}
		if discriminator == "" {
			continue
		}
		if v.Tag == "" {
			return nil, fmt.Errorf("%w: variant %d", ErrVariantTag, i)
		}
		if _, dup := seen[v.Tag]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTag, v.Tag)
		}
		seen[v.Tag] = struct{}{}
		switch v.Param.Content.(type) {
		case ObjectContent, *RefContent:
		default:
			return nil, fmt.Errorf("%w: %q", ErrDiscriminatorOn, v.Tag)
		}
	}
	return &Union{Discriminator: discriminator, Variants: variants}, nil
}

// MustUnion is NewUnion that panics on configuration errors.
func MustUnion(discriminator string, variants ...VariantSpec) *Union {
	u, err := NewUnion(discriminator, variants...)
	if err != nil {
		panic(err)
	}
	return u
}

// Discriminated reports whether a discriminator selects the variant.
func (u *Union) Discriminated() bool { return u.Discriminator != "" }

// Tags lists variant tags in declaration order.
func (u *Union) Tags() []string {
	out := make([]string, 0, len(u.Variants))
	for _, v := range u.Variants {
		if v.Tag != "" {
			out = append(out, v.Tag)
		}
	}
	return out
}

// VariantFor returns the variant tagged tag.
func (u *Union) VariantFor(tag string) (VariantSpec, bool) {
	for _, v := range u.Variants {
		if v.Tag == tag {
			return v, true
		}
	}
	return VariantSpec{}, false
}

// HasBoolean reports whether any variant is a boolean primitive.
func (u *Union) HasBoolean() bool {
	for _, v := range u.Variants {
		if t, ok := v.Param.Primitive(); ok && t == BooleanType {
			return true
		}
	}
	return false
}

// TypeNames lists the content type name of every variant, in order.
func (u *Union) TypeNames() []string {
	out := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		out[i] = v.Param.TypeName()
	}
	return out
}
