package codec

import (
	"github.com/shopspring/decimal"

	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// DecimalString decodes numbers and numeric strings into decimal.Decimal and
// encodes them back as exact strings, so amounts never pass through float64
// on the way out.
func DecimalString() schema.Attribute { return decimalCodec{} }

type decimalCodec struct{}

func (decimalCodec) Decode(v any) (any, error) {
	if s, ok := v.(string); ok {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, invalid("decimal", v)
		}
		return d, nil
	}
	if d, ok := norm.Decimal(v); ok {
		return d, nil
	}
	return nil, invalid("decimal", v)
}

func (decimalCodec) Encode(v any) (any, error) {
	d, ok := norm.Decimal(v)
	if !ok {
		return nil, invalid("decimal", v)
	}
	return d.String(), nil
}
