package source_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/paramshape/source"
)

func TestJSONBytes_PreservesNumbers(t *testing.T) {
	v, err := source.JSONBytes([]byte(`{"id": 12345678901234567890, "price": 19.99, "tags": ["a", null, true], "nested": {"x": {}}}`))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, json.Number("12345678901234567890"), m["id"])
	assert.Equal(t, json.Number("19.99"), m["price"])
	assert.Equal(t, []any{"a", nil, true}, m["tags"])
	assert.Equal(t, map[string]any{"x": map[string]any{}}, m["nested"])
}

func TestJSONReader_Scalars(t *testing.T) {
	v, err := source.JSONReader(strings.NewReader(`"hello"`))
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = source.JSONReader(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestJSONBytes_DuplicateKeys(t *testing.T) {
	doc := []byte(`{"a": {"b": 1, "b": 2}}`)

	v, err := source.JSONBytes(doc)
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), v.(map[string]any)["a"].(map[string]any)["b"])

	_, err = source.JSONBytes(doc, source.Strict())
	require.ErrorIs(t, err, source.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "/a")
}

func TestJSONBytes_Errors(t *testing.T) {
	_, err := source.JSONBytes([]byte(`{"a": 1} {"b": 2}`))
	assert.ErrorIs(t, err, source.ErrTrailingData)

	_, err = source.JSONBytes([]byte(`[[[[1]]]]`), source.MaxNesting(3))
	assert.ErrorIs(t, err, source.ErrTooDeep)

	_, err = source.JSONBytes([]byte(`{"a": `))
	assert.Error(t, err)
}

func TestQuery_BracketNotation(t *testing.T) {
	got, err := source.Query("?filter[age][gte]=18&filter[name]=ada&tags[]=a&tags[]=b&page=1&page=2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"filter": map[string]any{
			"age":  map[string]any{"gte": "18"},
			"name": "ada",
		},
		"tags": []any{"a", "b"},
		"page": "2",
	}, got)
}

func TestQuery_Escaping(t *testing.T) {
	got, err := source.Query("q=a%20b&filter%5Bkind%5D=x%26y")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"q": "a b", "filter": map[string]any{"kind": "x&y"}}, got)
}

func TestQuery_Errors(t *testing.T) {
	for _, raw := range []string{"a[b=1", "[a]=1", "a]=1", "a[][b]=1"} {
		_, err := source.Query(raw)
		assert.ErrorIs(t, err, source.ErrMalformedKey, raw)
	}
	for _, raw := range []string{"a=1&a[b]=2", "a[b]=1&a[b][c]=2", "a=1&a[]=2"} {
		_, err := source.Query(raw)
		assert.ErrorIs(t, err, source.ErrKeyConflict, raw)
	}
}

func TestYAMLBytes(t *testing.T) {
	v, err := source.YAMLBytes([]byte("name: ada\nage: 36\nscore: 1.5\nactive: yes\ntags: [a, b]\nnote: ~\nborn: 2024-02-29\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":   "ada",
		"age":    int64(36),
		"score":  1.5,
		"active": "yes",
		"tags":   []any{"a", "b"},
		"note":   nil,
		"born":   "2024-02-29",
	}, v)
}

func TestYAMLBytes_DuplicateKey(t *testing.T) {
	_, err := source.YAMLBytes([]byte("a: 1\nb:\n  c: 1\n  c: 2\n"))
	var dup *source.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "c", dup.Key)
	assert.Equal(t, 4, dup.Line)
	assert.Equal(t, 3, dup.FirstLine)
	assert.ErrorIs(t, err, source.ErrDuplicateKey)
}

func TestYAMLBytes_Empty(t *testing.T) {
	v, err := source.YAMLBytes(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMsgpackBytes(t *testing.T) {
	b, err := msgpack.Marshal(map[string]any{
		"id":     7,
		"price":  1.5,
		"tags":   []string{"a"},
		"blob":   []byte("hi"),
		"nested": map[string]any{"ok": true, "none": nil},
	})
	require.NoError(t, err)

	v, err := source.MsgpackBytes(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":     int64(7),
		"price":  1.5,
		"tags":   []any{"a"},
		"blob":   "hi",
		"nested": map[string]any{"ok": true, "none": nil},
	}, v)
}

func TestMsgpackBytes_Errors(t *testing.T) {
	one, err := msgpack.Marshal(map[string]any{"a": 1})
	require.NoError(t, err)
	_, err = source.MsgpackBytes(append(one, one...))
	assert.ErrorIs(t, err, source.ErrTrailingData)

	intKeys, err := msgpack.Marshal(map[int]string{1: "a"})
	require.NoError(t, err)
	_, err = source.MsgpackBytes(intKeys)
	assert.Error(t, err)

	_, err = source.MsgpackBytes(one[:len(one)-1])
	assert.Error(t, err)
}
