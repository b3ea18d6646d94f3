// Package schemafile loads declarative schema definitions (types, unions,
// enums, contracts and their actions) from YAML, TOML or JSON into an
// immutable schema.Registry plus the request and response shapes of every
// action.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	j "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/paramshape/codec"
	"github.com/reoring/paramshape/schema"
)

// Format names a schema file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

var (
	// ErrFormat is returned for unknown formats or file extensions.
	ErrFormat = errors.New("schemafile: unsupported format")
	// ErrFieldType is returned for a field whose type cannot be determined.
	ErrFieldType = errors.New("schemafile: field type missing")
	// ErrUnknownCodec is returned for a codec name with no registered attribute.
	ErrUnknownCodec = errors.New("schemafile: unknown codec")
	// ErrDuplicateShape is returned when an action is declared twice.
	ErrDuplicateShape = errors.New("schemafile: duplicate action")
)

// FormatOf maps a file name to its format by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

// Codecs are the attribute descriptors a field may name with "codec".
var Codecs = map[string]func() schema.Attribute{
	"identity": codec.Identity,
	"rfc3339":  codec.TimeRFC3339,
	"date":     codec.Date,
	"decimal":  codec.DecimalString,
}

// Option configures Load.
type Option func(*loader)

// WithLogger reports definitions at debug level and unresolved names at warn
// level.
func WithLogger(l zerolog.Logger) Option { return func(ld *loader) { ld.log = l } }

// Bundle is the result of loading a schema file. It is immutable and safe
// for concurrent use.
type Bundle struct {
	Registry *schema.Registry
	shapes   map[string]*schema.Shape
}

// Key names the shape of one side of an action, e.g. "users.create.request".
func Key(contract, action string, kind schema.ScopeKind) string {
	return contract + "." + action + "." + kind.String()
}

// Shape returns the shape registered under key.
func (b *Bundle) Shape(key string) (*schema.Shape, bool) {
	s, ok := b.shapes[key]
	return s, ok
}

// Keys lists every shape key in sorted order.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.shapes))
	for k := range b.shapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadFile reads path and loads it in the format implied by its extension.
func LoadFile(path string, opts ...Option) (*Bundle, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, f, opts...)
}

// Load parses data and builds the registry. Unknown keys in the document are
// errors in every format.
func Load(data []byte, f Format, opts ...Option) (*Bundle, error) {
	var doc document
	if err := decode(data, f, &doc); err != nil {
		return nil, err
	}
	ld := &loader{log: zerolog.Nop(), b: schema.NewRegistryBuilder(), shapes: map[string]*schema.Shape{}}
	for _, o := range opts {
		o(ld)
	}
	return ld.load(&doc)
}

func decode(data []byte, f Format, doc *document) error {
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("schemafile: yaml: %w", err)
		}
	case TOML:
		md, err := toml.Decode(string(data), doc)
		if err != nil {
			return fmt.Errorf("schemafile: toml: %w", err)
		}
		if extra := md.Undecoded(); len(extra) > 0 {
			return fmt.Errorf("schemafile: toml: unknown key %q", extra[0].String())
		}
	case JSON:
		dec := j.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return fmt.Errorf("schemafile: json: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrFormat, f)
	}
	return nil
}
