package paramshape

import "github.com/reoring/paramshape/i18n"

// IssueAt creates an Issue at the given path with its default catalog detail.
// kv is read as alternating meta keys and values.
func IssueAt(p Path, code string, kv ...any) Issue {
	var meta map[string]any
	if len(kv) >= 2 {
		meta = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, _ := kv[i].(string)
			meta[k] = kv[i+1]
		}
	}
	return Issue{Code: code, Detail: i18n.T(code, meta), Path: p, Meta: meta}
}

// Localize returns a copy of iss whose details are rendered for locale by the
// current catalog. Issues whose detail was overridden (differs from the
// default rendering) are kept as is.
func (iss Issues) Localize(locale string) Issues {
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Detail == "" || it.Detail == i18n.T(it.Code, it.Meta) {
			it.Detail = i18n.TL(it.Code, locale, it.Meta)
		}
		out[i] = it
	}
	return out
}
