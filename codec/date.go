package codec

import (
	"time"

	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

const dateLayout = "2006-01-02"

// Date converts between calendar date strings and time.Time at midnight UTC.
func Date() schema.Attribute { return dateCodec{} }

type dateCodec struct{}

func (dateCodec) Decode(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if d, ok := norm.ParseDate(t); ok {
			return d, nil
		}
	}
	return nil, invalid("date", v)
}

func (dateCodec) Encode(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, invalid("date", v)
	}
	return t.Format(dateLayout), nil
}
