// Package norm holds the value classification shared by every pass so that
// the Coercer, Validator, Transformer and Deserializer agree on what a map,
// an array, an absent value or an integer is.
package norm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Map returns v as a map with string keys. Keys of map[any]any (as produced by
// YAML decoders) are normalized with fmt.Sprint.
func Map(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, vv := range m {
			out[Key(k)] = vv
		}
		return out, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, vv := range m {
			out[k] = vv
		}
		return out, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[Key(it.Key().Interface())] = it.Value().Interface()
	}
	return out, true
}

// Key renders a map key in canonical string form.
func Key(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(k)
}

// Slice returns v as []any. Byte slices are scalars, not arrays.
func Slice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	case []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Blank reports nil, whitespace-only strings and empty collections.
func Blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case json.Number:
		return strings.TrimSpace(string(t)) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// Stringify renders a scalar for string-normalized comparison. Booleans
// become "true"/"false".
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// Copy returns a shallow copy of m.
func Copy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
