// Package source turns raw request payloads into the loosely typed trees the
// engine consumes: JSON bodies (numbers kept as json.Number), YAML and
// MessagePack documents, and query strings in bracket notation.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	ps "github.com/reoring/paramshape"
)

var (
	// ErrDuplicateKey is returned in strict mode when an object repeats a key.
	ErrDuplicateKey = errors.New("source: duplicate object key")
	// ErrTrailingData is returned when input continues after the first value.
	ErrTrailingData = errors.New("source: trailing data after JSON value")
	// ErrTooDeep is returned when the document nests deeper than allowed.
	ErrTooDeep = errors.New("source: nesting too deep")
)

// DefaultMaxNesting bounds document depth while decoding.
const DefaultMaxNesting = 512

// Option configures JSON decoding.
type Option func(*decoder)

// Strict rejects objects that repeat a key instead of keeping the last one.
func Strict() Option { return func(d *decoder) { d.strict = true } }

// MaxNesting overrides DefaultMaxNesting.
func MaxNesting(n int) Option {
	return func(d *decoder) {
		if n > 0 {
			d.maxNesting = n
		}
	}
}

// JSONBytes decodes one JSON document.
func JSONBytes(b []byte, opts ...Option) (any, error) {
	return JSONReader(bytes.NewReader(b), opts...)
}

// JSONReader decodes one JSON document from r. Objects become
// map[string]any, arrays []any and numbers json.Number.
func JSONReader(r io.Reader, opts ...Option) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &decoder{dec: dec, maxNesting: DefaultMaxNesting}
	for _, o := range opts {
		o(d)
	}
	v, err := d.value(nil)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

type decoder struct {
	dec        *j.Decoder
	strict     bool
	maxNesting int
}

func (d *decoder) value(path ps.Path) (any, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(j.Delim)
	if !ok {
		return scalar(tok), nil
	}
	if len(path) >= d.maxNesting {
		return nil, fmt.Errorf("%w at %s", ErrTooDeep, path.Pointer())
	}
	switch delim {
	case '{':
		return d.object(path)
	case '[':
		return d.array(path)
	}
	return nil, fmt.Errorf("source: unexpected delimiter %q at %s", rune(delim), path.Pointer())
}

func (d *decoder) object(path ps.Path) (any, error) {
	m := map[string]any{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("source: expected object key at %s", path.Pointer())
		}
		if _, dup := m[key]; dup && d.strict {
			return nil, fmt.Errorf("%w %q at %s", ErrDuplicateKey, key, path.Pointer())
		}
		v, err := d.value(path.Field(key))
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
	// closing '}'
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *decoder) array(path ps.Path) (any, error) {
	out := []any{}
	for d.dec.More() {
		v, err := d.value(path.Index(len(out)))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	// closing ']'
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func scalar(tok any) any {
	switch v := tok.(type) {
	case j.Number:
		return json.Number(v)
	default:
		return v
	}
}
