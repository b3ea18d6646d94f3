package paramshape

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeFieldMissing   = "field_missing"
	CodeFieldUnknown   = "field_unknown"
	CodeValueInvalid   = "value_invalid"
	CodeValueNull      = "value_null"
	CodeTypeInvalid    = "type_invalid"
	CodeStringTooShort = "string_too_short"
	CodeStringTooLong  = "string_too_long"
	CodeNumberTooSmall = "number_too_small"
	CodeNumberTooLarge = "number_too_large"
	CodeArrayTooSmall  = "array_too_small"
	CodeArrayTooLarge  = "array_too_large"
	CodeDepthExceeded  = "depth_exceeded"
)

// Codes lists every issue code in taxonomy order.
var Codes = []string{
	CodeFieldMissing,
	CodeFieldUnknown,
	CodeValueInvalid,
	CodeValueNull,
	CodeTypeInvalid,
	CodeStringTooShort,
	CodeStringTooLong,
	CodeNumberTooSmall,
	CodeNumberTooLarge,
	CodeArrayTooSmall,
	CodeArrayTooLarge,
	CodeDepthExceeded,
}

// Issue represents a single validation entry.
type Issue struct {
	Code   string // One of the codes listed above.
	Detail string // Human readable text; defaults to the i18n catalog entry for Code.
	Path   Path
	// Meta carries structured facts (e.g., {"min":1, "max":10, "actual":42})
	// for i18n and observability.
	Meta map[string]any
}

// Pointer renders the issue path as a JSON Pointer.
func (it Issue) Pointer() string { return it.Path.Pointer() }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. type_invalid at /filter/age
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the code of every issue, in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// Has reports whether any issue carries the given code.
func (iss Issues) Has(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// First returns the first issue with the given code.
func (iss Issues) First(code string) (Issue, bool) {
	for _, it := range iss {
		if it.Code == code {
			return it, true
		}
	}
	return Issue{}, false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
