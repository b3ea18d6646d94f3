package paramshape_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ps "github.com/reoring/paramshape"
)

func TestIssues_ErrorSummary(t *testing.T) {
	var iss ps.Issues
	for i := 0; i < 5; i++ {
		iss = ps.AppendIssues(iss, ps.IssueAt(ps.Path{}.Field("items").Index(i), ps.CodeTypeInvalid))
	}
	assert.Equal(t,
		"type_invalid at /items/0; type_invalid at /items/1; type_invalid at /items/2; ... (total 5)",
		iss.Error())
	assert.Equal(t, "", ps.Issues{}.Error())
}

func TestIssues_Lookup(t *testing.T) {
	iss := ps.Issues{
		ps.IssueAt(ps.Path{"a"}, ps.CodeFieldMissing),
		ps.IssueAt(ps.Path{"b"}, ps.CodeNumberTooLarge, "max", 10),
		ps.IssueAt(ps.Path{"c"}, ps.CodeFieldMissing),
	}
	assert.Equal(t, []string{ps.CodeFieldMissing, ps.CodeNumberTooLarge, ps.CodeFieldMissing}, iss.Codes())
	assert.True(t, iss.Has(ps.CodeNumberTooLarge))
	assert.False(t, iss.Has(ps.CodeDepthExceeded))

	it, ok := iss.First(ps.CodeFieldMissing)
	require.True(t, ok)
	assert.Equal(t, "/a", it.Pointer())
	assert.Equal(t, map[string]any{"max": 10}, iss[1].Meta)
}

func TestAsIssues_Wrapped(t *testing.T) {
	iss := ps.Issues{ps.IssueAt(nil, ps.CodeValueInvalid)}
	got, ok := ps.AsIssues(fmt.Errorf("decode: %w", iss))
	require.True(t, ok)
	assert.Equal(t, iss, got)

	_, ok = ps.AsIssues(fmt.Errorf("plain"))
	assert.False(t, ok)
	_, ok = ps.AsIssues(nil)
	assert.False(t, ok)
}

func TestResult(t *testing.T) {
	ok := ps.Result{Params: map[string]any{}}
	assert.True(t, ok.OK())
	assert.NoError(t, ok.Err())

	bad := ps.Result{Issues: ps.Issues{ps.IssueAt(nil, ps.CodeFieldUnknown)}}
	assert.False(t, bad.OK())
	assert.Error(t, bad.Err())
}

func TestIssues_Localize(t *testing.T) {
	iss := ps.Issues{
		ps.IssueAt(ps.Path{"a"}, ps.CodeFieldMissing),
		{Code: ps.CodeFieldMissing, Detail: "custom", Path: ps.Path{"b"}},
	}
	ja := iss.Localize("ja")
	assert.Equal(t, "必須項目です", ja[0].Detail)
	assert.Equal(t, "custom", ja[1].Detail)
	assert.NotEqual(t, "必須項目です", iss[0].Detail)
}
