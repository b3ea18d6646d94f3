package schemafile_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/deserialize"
	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/schemafile"
	"github.com/reoring/paramshape/transform"
	"github.com/reoring/paramshape/validate"
)

func mustLoad(t *testing.T, name string, opts ...schemafile.Option) *schemafile.Bundle {
	t.Helper()
	b, err := schemafile.LoadFile(filepath.Join("testdata", name), opts...)
	require.NoError(t, err)
	return b
}

func TestLoadYAML_ShapesAndScopes(t *testing.T) {
	var logs bytes.Buffer
	b := mustLoad(t, "users.yaml", schemafile.WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))

	assert.Equal(t, []string{"users.create.request", "users.create.response"}, b.Keys())

	// the contract-level address shadows the global one for both sides
	req, ok := b.Shape(schemafile.Key("users", "create", schema.ScopeRequest))
	require.True(t, ok)
	v := validate.New(b.Registry)
	res := v.Validate(req, map[string]any{
		"name":    "Ada",
		"address": map[string]any{"line1": "1 Main St"},
		"tags":    []any{"a"},
		"payment": map[string]any{"kind": "card", "number": "4111"},
	})
	require.Empty(t, res.Issues)
	assert.Equal(t, "active", res.Params["status"])

	res = v.Validate(req, map[string]any{
		"name":    "Ada",
		"status":  "deleted",
		"address": map[string]any{"city": "Tokyo"},
		"tags":    []any{"a", "b", "c", "d"},
		"payment": map[string]any{"kind": "cash"},
	})
	assert.Equal(t, []string{
		ps.CodeValueInvalid,
		ps.CodeFieldMissing,
		ps.CodeFieldUnknown,
		ps.CodeArrayTooLarge,
		ps.CodeValueInvalid,
	}, res.Issues.Codes())
	assert.Equal(t, []any{"active", "archived"}, res.Issues[0].Meta["expected"])

	// unresolved names are reported but do not fail the load
	un := b.Registry.Unresolved()
	require.Len(t, un, 1)
	assert.Equal(t, "person", un[0].Name)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"name":"person"`)
	assert.Contains(t, logs.String(), `"shape":"users.create.request"`)
}

func TestLoadYAML_DetailOverrideAndCodec(t *testing.T) {
	b := mustLoad(t, "users.yaml")
	req, _ := b.Shape("users.create.request")

	res := validate.New(b.Registry).Validate(req, map[string]any{
		"name":     "Ada",
		"address":  map[string]any{"line1": "x"},
		"tags":     []any{"a"},
		"payment":  map[string]any{"kind": "bank", "iban": "DE00"},
		"nickname": "much-too-long",
	})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "nickname is too long", res.Issues[0].Detail)

	out := deserialize.New(b.Registry).Deserialize(req, map[string]any{"born": "1815-12-10"})
	assert.Equal(t, time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC), out.(map[string]any)["born"])
}

func TestLoadYAML_ResponseScopeRename(t *testing.T) {
	b := mustLoad(t, "users.yaml")
	resp, ok := b.Shape("users.create.response")
	require.True(t, ok)
	out := transform.New(b.Registry).Transform(resp, map[string]any{
		"id":      "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"address": map[string]any{"line1": "x"},
	})
	assert.Equal(t, map[string]any{"line1": "x"}, out.(map[string]any)["address"])
}

func TestLoadTOML(t *testing.T) {
	b := mustLoad(t, "orders.toml")
	req, ok := b.Shape("orders.create.request")
	require.True(t, ok)

	v := validate.New(b.Registry)
	res := v.Validate(req, map[string]any{
		"currency": "EUR",
		"total":    json.Number("19.99"),
		"lines":    []any{map[string]any{"sku": "A-1", "qty": 2}},
	})
	require.Empty(t, res.Issues)

	res = v.Validate(req, map[string]any{
		"currency": "GBP",
		"total":    json.Number("19.99"),
		"lines":    []any{map[string]any{"sku": "A-1", "qty": 0}},
	})
	assert.Equal(t, []string{ps.CodeValueInvalid, ps.CodeNumberTooSmall}, res.Issues.Codes())
	assert.Equal(t, "/lines/0/qty", res.Issues[1].Pointer())

	out := deserialize.New(b.Registry).Deserialize(req, map[string]any{"total": "19.99"})
	assert.True(t, decimal.RequireFromString("19.99").Equal(out.(map[string]any)["total"].(decimal.Decimal)))
}

func TestLoadJSON_UnionsAndLiterals(t *testing.T) {
	b := mustLoad(t, "events.json")
	req, ok := b.Shape("events.publish.request")
	require.True(t, ok)

	v := validate.New(b.Registry)
	res := v.Validate(req, map[string]any{
		"version": json.Number("2"),
		"event":   map[string]any{"type": "created", "by": "ada"},
		"at":      "2024-02-29T10:00:00Z",
	})
	require.Empty(t, res.Issues)

	res = v.Validate(req, map[string]any{
		"version": 3,
		"event":   map[string]any{"type": "deleted"},
		"at":      "2024-02-29T10:00:00Z",
	})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, ps.CodeValueInvalid, res.Issues[0].Code)
	assert.Equal(t, ps.Path{"version"}, res.Issues[0].Path)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		f    schemafile.Format
		is   error
	}{
		{"unknown codec", "types:\n  - name: t\n    fields:\n      - {name: a, type: string, codec: base64}\n", schemafile.YAML, schemafile.ErrUnknownCodec},
		{"missing type", "types:\n  - name: t\n    fields:\n      - {name: a}\n", schemafile.YAML, schemafile.ErrFieldType},
		{"literal without value", "types:\n  - name: t\n    fields:\n      - {name: a, type: literal}\n", schemafile.YAML, schema.ErrLiteralValue},
		{"untagged variant", `{"unions": [{"name": "u", "discriminator": "k", "variants": [{"type": "string"}]}]}`, schemafile.JSON, schema.ErrVariantTag},
		{"duplicate field", "[[types]]\nname = \"t\"\n[[types.fields]]\nname = \"a\"\ntype = \"string\"\n[[types.fields]]\nname = \"a\"\ntype = \"string\"\n", schemafile.TOML, schema.ErrDuplicateField},
		{"duplicate type", "types:\n  - {name: t, fields: [{name: a, type: string}]}\n  - {name: t, fields: [{name: a, type: string}]}\n", schemafile.YAML, schema.ErrDuplicateName},
		{"format", "", schemafile.Format("xml"), schemafile.ErrFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schemafile.Load([]byte(tc.doc), tc.f)
			assert.ErrorIs(t, err, tc.is)
		})
	}
}

func TestLoad_UnknownKeysRejected(t *testing.T) {
	_, err := schemafile.Load([]byte("typez: []\n"), schemafile.YAML)
	assert.Error(t, err)
	_, err = schemafile.Load([]byte("typez = []\n"), schemafile.TOML)
	assert.Error(t, err)
	_, err = schemafile.Load([]byte(`{"typez": []}`), schemafile.JSON)
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	b, err := schemafile.Load(nil, schemafile.YAML)
	require.NoError(t, err)
	assert.Empty(t, b.Keys())
	assert.Empty(t, b.Registry.Definitions())
}

func TestLoadFile_Extension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "schema.yml")
	require.NoError(t, os.WriteFile(p, []byte("contracts:\n  - name: a\n    actions:\n      - name: b\n        request:\n          fields: [{name: x, type: bool}]\n"), 0o600))
	b, err := schemafile.LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b.request"}, b.Keys())

	_, err = schemafile.LoadFile(filepath.Join(dir, "schema.xml"))
	assert.ErrorIs(t, err, schemafile.ErrFormat)
}
