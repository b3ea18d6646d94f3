package codec

import (
	"time"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/internal/norm"
	"github.com/reoring/paramshape/schema"
)

// TimeRFC3339 converts between RFC3339 strings and time.Time.
func TimeRFC3339() schema.Attribute { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		// wire(string) -> domain(time.Time)
		if tm, err := parseRFC3339(t); err == nil {
			return tm, nil
		}
	}
	return nil, invalid("datetime", v)
}

func (rfc3339Codec) Encode(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, invalid("datetime", v)
	}
	return formatRFC3339Canonical(t), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

// invalid reports a value the codec cannot convert as a root-level issue.
func invalid(expected string, v any) error {
	return ps.Issues{ps.IssueAt(nil, ps.CodeTypeInvalid, "expected", expected, "actual", norm.TypeOf(v))}
}
