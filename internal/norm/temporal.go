package norm

import (
	"time"

	"github.com/google/uuid"
)

// Accepted wire layouts.
const (
	DateLayout = "2006-01-02"
)

var timeLayouts = []string{"15:04:05.999999999", "15:04:05", "15:04"}

// ParseDate parses a calendar date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	return t, err == nil
}

// ParseDateTime parses an RFC 3339 timestamp; fractional seconds are optional.
// A bare date is accepted as midnight UTC.
func ParseDateTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return ParseDate(s)
}

// ParseTime parses a time of day ("15:04", "15:04:05" or with fractions).
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseUUID accepts only the canonical 8-4-4-4-12 hex grouping.
func ParseUUID(s string) (uuid.UUID, bool) {
	if len(s) != 36 {
		return uuid.UUID{}, false
	}
	u, err := uuid.Parse(s)
	return u, err == nil
}
