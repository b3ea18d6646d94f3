package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/codec"
	"github.com/reoring/paramshape/pipeline"
	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/transform"
	"github.com/reoring/paramshape/validate"
)

func accountShape() *schema.Shape {
	owner := schema.MustShape(
		schema.String("kind"),
		schema.String("name").As("display_name"),
	)
	return schema.MustShape(
		schema.Integer("limit").Optional().Default(int64(20)).Max(100),
		schema.Boolean("active"),
		schema.UnionOf("owner", schema.MustUnion("kind", schema.Variant("user", schema.Nested("", owner)))),
	)
}

func TestRun_CoerceValidateTransform(t *testing.T) {
	p := pipeline.New(nil,
		pipeline.WithCoercion(),
		pipeline.WithTransformOptions(transform.WithTagMapper(transform.TagMap{"user": "User"})),
	)
	out, err := p.Run(accountShape(), map[string]any{
		"active": "yes",
		"owner":  map[string]any{"kind": "user", "name": "ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"limit":  int64(20),
		"active": true,
		"owner":  map[string]any{"kind": "User", "display_name": "ada"},
	}, out)
}

func TestRun_IssuesAsError(t *testing.T) {
	p := pipeline.New(nil, pipeline.WithValidateOptions(validate.WithLocale("ja")))
	_, err := p.Run(accountShape(), map[string]any{"active": "yes", "limit": 500})
	require.Error(t, err)

	iss, ok := ps.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{ps.CodeNumberTooLarge, ps.CodeTypeInvalid, ps.CodeFieldMissing}, iss.Codes())
}

func TestCheck_WithoutCoercionKeepsStrings(t *testing.T) {
	res := pipeline.New(nil).Check(schema.MustShape(schema.Integer("n")), map[string]any{"n": "1"})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, ps.CodeTypeInvalid, res.Issues[0].Code)
}

func TestMaxDepthAppliesToValidation(t *testing.T) {
	shape := schema.MustShape(schema.Nested("a", schema.MustShape(schema.Nested("b", schema.MustShape(schema.String("c"))))))
	res := pipeline.New(nil, pipeline.WithMaxDepth(1)).Check(shape, map[string]any{"a": map[string]any{"b": map[string]any{"c": "x"}}})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, ps.CodeDepthExceeded, res.Issues[0].Code)
}

func TestDecode(t *testing.T) {
	shape := schema.MustShape(schema.Decimal("amount").Attr(codec.DecimalString()))
	out := pipeline.New(nil).Decode(shape, map[string]any{"amount": "1.50"}).(map[string]any)
	assert.Equal(t, "1.5", out["amount"].(interface{ String() string }).String())
}
