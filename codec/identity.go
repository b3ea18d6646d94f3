// Package codec provides ready-made schema.Attribute descriptors that move a
// field between its wire form and its domain form.
package codec

import "github.com/reoring/paramshape/schema"

// Identity returns an Attribute whose hooks return their input unchanged.
func Identity() schema.Attribute { return identityCodec{} }

type identityCodec struct{}

func (identityCodec) Decode(v any) (any, error) { return v, nil }
func (identityCodec) Encode(v any) (any, error) { return v, nil }
