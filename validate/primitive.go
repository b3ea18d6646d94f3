package validate

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// checkPrimitive is the structural check for each primitive tag. Temporal and
// uuid tags accept both native values and well-formed wire strings.
func checkPrimitive(t schema.Primitive, val any) bool {
	switch t {
	case schema.StringType:
		_, ok := val.(string)
		return ok
	case schema.IntegerType:
		_, ok := norm.Int64(val)
		return ok
	case schema.NumberType, schema.DecimalType:
		return norm.Numeric(val)
	case schema.BooleanType:
		_, ok := val.(bool)
		return ok
	case schema.DateType:
		return temporal(val, norm.ParseDate)
	case schema.DateTimeType:
		return temporal(val, norm.ParseDateTime)
	case schema.TimeType:
		return temporal(val, norm.ParseTime)
	case schema.UUIDType:
		switch u := val.(type) {
		case uuid.UUID:
			return true
		case string:
			_, ok := norm.ParseUUID(u)
			return ok
		}
	}
	return false
}

func temporal(val any, parse func(string) (time.Time, bool)) bool {
	switch t := val.(type) {
	case time.Time:
		return true
	case string:
		_, ok := parse(t)
		return ok
	}
	return false
}

// bounds applies string length bounds (non-empty strings only) and numeric
// value bounds.
func (v *Validator) bounds(p *schema.Param, t schema.Primitive, val any, path ps.Path) ps.Issues {
	lo, hi := p.Bounds()
	if lo == nil && hi == nil {
		return nil
	}
	if t == schema.StringType {
		s := val.(string)
		if s == "" {
			return nil
		}
		n := utf8.RuneCountInString(s)
		if lo != nil && float64(n) < *lo {
			return ps.Issues{v.issue(p, path, ps.CodeStringTooShort, "min", bound(*lo), "actual", n)}
		}
		if hi != nil && float64(n) > *hi {
			return ps.Issues{v.issue(p, path, ps.CodeStringTooLong, "max", bound(*hi), "actual", n)}
		}
		return nil
	}
	if !t.Numeric() {
		return nil
	}
	d, ok := norm.Decimal(val)
	if !ok {
		return nil
	}
	if lo != nil && d.LessThan(decimal.NewFromFloat(*lo)) {
		return ps.Issues{v.issue(p, path, ps.CodeNumberTooSmall, "min", bound(*lo), "actual", val)}
	}
	if hi != nil && d.GreaterThan(decimal.NewFromFloat(*hi)) {
		return ps.Issues{v.issue(p, path, ps.CodeNumberTooLarge, "max", bound(*hi), "actual", val)}
	}
	return nil
}

// bound renders a configured bound as an int when it is integral.
func bound(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}
