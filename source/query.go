package source

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var (
	// ErrMalformedKey is returned for keys with unbalanced or misplaced brackets.
	ErrMalformedKey = errors.New("source: malformed query key")
	// ErrKeyConflict is returned when one key is used both as a scalar and as
	// a container.
	ErrKeyConflict = errors.New("source: conflicting query keys")
)

// Query decodes a URL query string in bracket notation into a nested tree:
//
//	filter[age][gte]=18  -> {"filter": {"age": {"gte": "18"}}}
//	tags[]=a&tags[]=b    -> {"tags": ["a", "b"]}
//
// Every leaf is a string. A plain key given more than once keeps its last
// value.
func Query(raw string) (map[string]any, error) {
	vals, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, err
	}
	return Values(vals)
}

// Values is Query for already parsed url.Values.
func Values(vals url.Values) (map[string]any, error) {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, k := range keys {
		segs, list, err := splitKey(k)
		if err != nil {
			return nil, err
		}
		if err := assign(root, segs, list, vals[k]); err != nil {
			return nil, fmt.Errorf("%w: %q", err, k)
		}
	}
	return root, nil
}

// splitKey turns "a[b][c][]" into [a b c] and list=true.
func splitKey(k string) ([]string, bool, error) {
	i := strings.IndexByte(k, '[')
	if i < 0 {
		if strings.IndexByte(k, ']') >= 0 {
			return nil, false, fmt.Errorf("%w: %q", ErrMalformedKey, k)
		}
		return []string{k}, false, nil
	}
	if i == 0 {
		return nil, false, fmt.Errorf("%w: %q", ErrMalformedKey, k)
	}
	segs := []string{k[:i]}
	rest := k[i:]
	list := false
	for rest != "" {
		if list || rest[0] != '[' {
			return nil, false, fmt.Errorf("%w: %q", ErrMalformedKey, k)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false, fmt.Errorf("%w: %q", ErrMalformedKey, k)
		}
		seg := rest[1:end]
		if seg == "" {
			list = true
		} else {
			segs = append(segs, seg)
		}
		rest = rest[end+1:]
	}
	return segs, list, nil
}

func assign(root map[string]any, segs []string, list bool, vals []string) error {
	m := root
	for _, s := range segs[:len(segs)-1] {
		switch next := m[s].(type) {
		case nil:
			child := map[string]any{}
			m[s] = child
			m = child
		case map[string]any:
			m = next
		default:
			return ErrKeyConflict
		}
	}
	leaf := segs[len(segs)-1]
	if _, taken := m[leaf]; taken {
		return ErrKeyConflict
	}
	if list {
		items := make([]any, len(vals))
		for i, v := range vals {
			items[i] = v
		}
		m[leaf] = items
		return nil
	}
	m[leaf] = vals[len(vals)-1]
	return nil
}
