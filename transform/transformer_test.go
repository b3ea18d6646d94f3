package transform_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/transform"
)

func TestTransform_RenameAndHooks(t *testing.T) {
	shape := schema.MustShape(
		schema.String("name").As("full_name"),
		schema.String("email").Transform(func(v any) any { return strings.ToLower(v.(string)) }),
		schema.Boolean("terms").Store("accepted"),
		schema.String("note").Optional(),
	)
	out := transform.New(nil).Transform(shape, map[string]any{
		"name":  "Ada",
		"email": "ADA@EXAMPLE.COM",
		"terms": true,
	})
	assert.Equal(t, map[string]any{
		"full_name": "Ada",
		"email":     "ada@example.com",
		"terms":     "accepted",
	}, out)
}

func TestTransform_NestedAndArrays(t *testing.T) {
	addr := schema.MustShape(schema.String("zip").As("postal_code"))
	shape := schema.MustShape(
		schema.Nested("address", addr).As("address_attributes"),
		schema.ArrayOf("items", schema.Nested("", schema.MustShape(schema.Integer("qty").As("quantity")))),
	)
	in := map[string]any{
		"address": map[string]any{"zip": "100-0001"},
		"items":   []any{map[string]any{"qty": 1}, map[string]any{"qty": 2}},
	}
	out := transform.New(nil).Transform(shape, in)
	assert.Equal(t, map[string]any{
		"address_attributes": map[string]any{"postal_code": "100-0001"},
		"items":              []any{map[string]any{"quantity": 1}, map[string]any{"quantity": 2}},
	}, out)
	// input is left alone
	assert.Equal(t, "100-0001", in["address"].(map[string]any)["zip"])
}

func TestTransform_RefAndUndiscriminatedUnion(t *testing.T) {
	b := schema.NewRegistryBuilder()
	b.DefineType(b.Global(), "range", schema.MustShape(
		schema.Integer("gte").Optional().As("min"),
		schema.Integer("lte").Optional().As("max"),
	))
	u := schema.MustUnion("", schema.Alt(schema.Integer("")), schema.Alt(schema.Ref("", "range")))
	shape := schema.MustShape(schema.UnionOf("age", u))
	b.Attach(b.Global(), shape)
	reg := b.MustBuild()

	tr := transform.New(reg)
	assert.Equal(t, map[string]any{"age": 3}, tr.Transform(shape, map[string]any{"age": 3}))
	assert.Equal(t,
		map[string]any{"age": map[string]any{"min": 1, "max": 9}},
		tr.Transform(shape, map[string]any{"age": map[string]any{"gte": 1, "lte": 9}}))
}

func polymorphicShape() *schema.Shape {
	dog := schema.MustShape(schema.String("kind"), schema.Boolean("good").As("is_good"))
	cat := schema.MustShape(schema.Integer("lives"))
	u := schema.MustUnion("kind",
		schema.Variant("dog", schema.Nested("", dog)),
		schema.Variant("cat", schema.Nested("", cat)),
	)
	return schema.MustShape(
		schema.String("owner"),
		schema.ArrayOf("pets", schema.UnionOf("", u)),
	)
}

func TestTransform_RetargetsDiscriminators(t *testing.T) {
	tags := transform.TagMap{"dog": "Animals::Dog", "cat": "Animals::Cat"}
	in := map[string]any{
		"owner": "ada",
		"pets": []any{
			map[string]any{"kind": "dog", "good": true},
			map[string]any{"kind": "cat", "lives": 9},
		},
	}
	out := transform.New(nil, transform.WithTagMapper(tags)).Transform(polymorphicShape(), in)
	assert.Equal(t, map[string]any{
		"owner": "ada",
		"pets": []any{
			map[string]any{"kind": "Animals::Dog", "is_good": true},
			map[string]any{"kind": "Animals::Cat", "lives": 9},
		},
	}, out)
	assert.Equal(t, "dog", in["pets"].([]any)[0].(map[string]any)["kind"])
}

func TestTransform_WithoutMapperKeepsTags(t *testing.T) {
	out := transform.New(nil).Transform(polymorphicShape(), map[string]any{
		"owner": "ada",
		"pets":  []any{map[string]any{"kind": "cat", "lives": 1}},
	})
	assert.Equal(t, "cat", out.(map[string]any)["pets"].([]any)[0].(map[string]any)["kind"])
}

type prefixMapper struct{}

func (prefixMapper) StorageTag(disc, tag string) (string, bool) {
	if disc != "type" {
		return "", false
	}
	return "v1." + tag, true
}

func TestTransform_CustomMapperAndNestedUnion(t *testing.T) {
	b := schema.NewRegistryBuilder()
	resp := b.Global().Contract("events").Action("show").Response()
	b.DefineUnion(resp, "event", schema.MustUnion("type",
		schema.Variant("created", schema.Nested("", schema.MustShape(schema.String("by")))),
		schema.Variant("deleted", schema.Nested("", schema.MustShape(schema.String("reason")))),
	))
	shape := schema.MustShape(schema.Ref("event", "event"), schema.String("kind"))
	b.Attach(resp, shape)
	reg := b.MustBuild()

	out := transform.New(reg, transform.WithTagMapper(prefixMapper{})).Transform(shape, map[string]any{
		"event": map[string]any{"type": "deleted", "reason": "spam"},
		"kind":  "audit",
	})
	assert.Equal(t, map[string]any{
		"event": map[string]any{"type": "v1.deleted", "reason": "spam"},
		"kind":  "audit",
	}, out)
}
