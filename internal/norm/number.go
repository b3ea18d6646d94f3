package norm

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"fortio.org/safecast"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Int64 classifies v as an integer. Integral floats and json.Number values
// are accepted; anything that does not fit an int64 is rejected.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return conv(n)
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return conv(n)
	case float32:
		return intFromFloat(float64(n))
	case float64:
		return intFromFloat(n)
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return intFromFloat(f)
		}
	case decimal.Decimal:
		if n.IsInteger() && n.Cmp(decimal.NewFromInt(math.MaxInt64)) <= 0 && n.Cmp(decimal.NewFromInt(math.MinInt64)) >= 0 {
			return n.IntPart(), true
		}
	}
	return 0, false
}

func conv[T safecast.Number](n T) (int64, bool) {
	i, err := safecast.Convert[int64](n)
	return i, err == nil
}

func intFromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return conv(f)
}

// Float64 classifies v as any real number.
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case bool, string, nil:
		return 0, false
	}
	if i, ok := Int64(v); ok {
		return float64(i), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Uint64 || rv.Kind() == reflect.Uint {
		return float64(rv.Uint()), true
	}
	return 0, false
}

// Decimal classifies v as a decimal. Every real number qualifies.
func Decimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(string(n))
		return d, err == nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	}
	if i, ok := Int64(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Decimal{}, false
}

// Numeric reports whether v is any kind of number.
func Numeric(v any) bool {
	_, ok := Float64(v)
	return ok
}

// Equal compares a value against a configured constant. Numbers compare by
// value regardless of representation; everything else must be deeply equal.
func Equal(a, b any) bool {
	if da, ok := Decimal(a); ok {
		if db, ok := Decimal(b); ok {
			return da.Equal(db)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// TypeOf names the runtime kind of v for issue metadata.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case decimal.Decimal:
		return "decimal"
	case time.Time:
		return "datetime"
	case uuid.UUID:
		return "uuid"
	}
	if _, ok := Int64(v); ok {
		return "integer"
	}
	if Numeric(v) {
		return "number"
	}
	if _, ok := Slice(v); ok {
		return "array"
	}
	if _, ok := Map(v); ok {
		return "object"
	}
	return reflect.TypeOf(v).String()
}
