package paramshape

import (
	"strconv"
	"strings"
)

// Path is an ordered field path such as [filter age] or [items 2 price].
// Array positions are stored as their decimal form.
type Path []string

// Field returns a copy of p extended with a field name.
func (p Path) Field(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Index returns a copy of p extended with an array position.
func (p Path) Index(i int) Path { return p.Field(strconv.Itoa(i)) }

// Pointer renders p as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, part := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(part, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// String renders p in dotted form, e.g. "filter.age".
func (p Path) String() string { return strings.Join(p, ".") }

// Last returns the final element, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// ParsePointer splits a JSON Pointer back into a Path.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return Path{}
	}
	parts := Path{}
	for _, s := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		s = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
		parts = append(parts, s)
	}
	return parts
}
