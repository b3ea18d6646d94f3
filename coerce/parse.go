package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reoring/paramshape/internal/norm"
)

// ParseBool accepts native booleans and the tokens true/1/yes/on/t/y and
// false/0/no/off/f/n in any case.
func ParseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on", "t", "y":
			return true, true
		case "false", "0", "no", "off", "f", "n":
			return false, true
		}
	case json.Number:
		return ParseBool(string(b))
	}
	if i, ok := norm.Int64(v); ok && (i == 0 || i == 1) {
		return i == 1, true
	}
	return false, false
}

// ParseInteger parses base-10 strings and accepts any integral number that
// fits an int64. "3.0" is an integer; "3.5" is not.
func ParseInteger(v any) (int64, bool) {
	s, ok := text(v)
	if !ok {
		return norm.Int64(v)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return norm.Int64(f)
}

// ParseNumber parses numeric-looking strings into a float64. NaN and the
// infinities are rejected.
func ParseNumber(v any) (float64, bool) {
	s, ok := text(v)
	if !ok {
		return norm.Float64(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDecimal parses numeric-looking strings without going through float64.
func ParseDecimal(v any) (decimal.Decimal, bool) {
	s, ok := text(v)
	if !ok {
		return norm.Decimal(v)
	}
	d, err := decimal.NewFromString(s)
	return d, err == nil
}

// ParseDate parses a calendar date (2006-01-02).
func ParseDate(v any) (time.Time, bool) { return parseTemporal(v, norm.ParseDate) }

// ParseDateTime parses an RFC 3339 timestamp; a bare date means midnight UTC.
func ParseDateTime(v any) (time.Time, bool) { return parseTemporal(v, norm.ParseDateTime) }

// ParseTime parses a wall-clock time (15:04:05 with optional fraction, or 15:04).
func ParseTime(v any) (time.Time, bool) { return parseTemporal(v, norm.ParseTime) }

// ParseUUID accepts uuid.UUID values and the canonical 8-4-4-4-12 hex form.
func ParseUUID(v any) (uuid.UUID, bool) {
	switch u := v.(type) {
	case uuid.UUID:
		return u, true
	case string:
		return norm.ParseUUID(strings.TrimSpace(u))
	}
	return uuid.Nil, false
}

func parseTemporal(v any, parse func(string) (time.Time, bool)) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parse(strings.TrimSpace(t))
	}
	return time.Time{}, false
}

// text returns the trimmed string form of string-origin values.
func text(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case json.Number:
		return string(s), true
	case []byte:
		return strings.TrimSpace(string(s)), true
	}
	return "", false
}
