package schema

import "errors"

// Configuration errors. They surface from NewShape, NewUnion and
// RegistryBuilder.Build so misconfiguration is caught at boot.
var (
	ErrNoContent       = errors.New("schema: param declares no content")
	ErrLiteralValue    = errors.New("schema: literal requires a value")
	ErrVariantTag      = errors.New("schema: discriminated union variant requires a tag")
	ErrDuplicateField  = errors.New("schema: duplicate field")
	ErrDuplicateName   = errors.New("schema: duplicate definition")
	ErrEmptyName       = errors.New("schema: empty name")
	ErrScopeRebind     = errors.New("schema: shape already bound to another scope")
	ErrScopeKind       = errors.New("schema: scope cannot be nested here")
	ErrRegistryBuilt   = errors.New("schema: registry already built")
	ErrBoundsReversed  = errors.New("schema: min exceeds max")
	ErrBoundsContent   = errors.New("schema: bounds not supported for this content")
	ErrEmptyUnion      = errors.New("schema: union declares no variants")
	ErrDuplicateTag    = errors.New("schema: duplicate variant tag")
	ErrDiscriminatorOn = errors.New("schema: discriminated variant must be an object")
	ErrUnionCycle      = errors.New("schema: union reaches itself without an object or array")
)
