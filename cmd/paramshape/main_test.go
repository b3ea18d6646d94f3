package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	j "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/schemafile"
)

const testSchema = `
contracts:
  - name: users
    actions:
      - name: search
        request:
          fields:
            - {name: active, type: boolean}
            - name: filter
              optional: true
              fields:
                - {name: age, type: integer, min: 0}
            - {name: tags, type: array, optional: true, items: {type: string}}
        response:
          fields:
            - {name: owner, type: person}
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o600))

	var stdout, stderr bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	root.SetArgs(append([]string{"--schema", path}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidate_OK(t *testing.T) {
	out, _, err := run(t, `{"active": true, "filter": {"age": 3}}`, "validate", "users.search.request")
	require.NoError(t, err)

	var got validateOut
	require.NoError(t, j.Unmarshal([]byte(out), &got))
	assert.True(t, got.OK)
	assert.Empty(t, got.Issues)
	assert.Equal(t, true, got.Params["active"])
}

func TestValidate_IssuesExitNonZero(t *testing.T) {
	out, _, err := run(t, `{"filter": {"age": -1, "x": 1}}`, "validate", "users.search.request", "--locale", "ja")
	require.ErrorIs(t, err, errIssues)

	var got validateOut
	require.NoError(t, j.Unmarshal([]byte(out), &got))
	assert.False(t, got.OK)
	require.Len(t, got.Issues, 3)
	assert.Equal(t, "field_missing", got.Issues[0].Code)
	assert.Equal(t, "/active", got.Issues[0].Pointer)
	assert.Equal(t, "必須項目です", got.Issues[0].Detail)
	assert.Equal(t, "/filter/age", got.Issues[1].Pointer)
	assert.Equal(t, "/filter/x", got.Issues[2].Pointer)
	assert.Nil(t, got.Params)
}

func TestValidate_QueryWithCoercion(t *testing.T) {
	q := "active=yes&filter[age]=30&tags[]=a&tags[]=b"
	out, _, err := run(t, q, "validate", "users.search.request", "--format", "query", "--coerce")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"age": 30`)

	_, _, err = run(t, q, "validate", "users.search.request", "--format", "query")
	assert.ErrorIs(t, err, errIssues)
}

func TestCoerce(t *testing.T) {
	out, _, err := run(t, "active: \"off\"\nfilter: {age: \"7\"}\n", "coerce", "users.search.request", "--format", "yaml")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, j.Unmarshal([]byte(out), &got))
	assert.Equal(t, false, got["active"])
	assert.Equal(t, float64(7), got["filter"].(map[string]any)["age"])
}

func TestTypes_ListsUnresolved(t *testing.T) {
	out, stderr, err := run(t, "", "types", "--log-level", "debug")
	require.NoError(t, err)
	var got typesOut
	require.NoError(t, j.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"users.search.request", "users.search.response"}, got.Shapes)
	require.Len(t, got.Unresolved, 1)
	assert.Equal(t, "person", got.Unresolved[0].Name)
	assert.Contains(t, stderr, "unresolved reference")
}

func TestUnknownShape(t *testing.T) {
	_, _, err := run(t, "{}", "validate", "users.nope.request")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.search.request")
}

func TestDuplicateJSONKeysRejected(t *testing.T) {
	_, _, err := run(t, `{"active": true, "active": false}`, "validate", "users.search.request")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errIssues)
}

func TestValidate_ManyInputsText(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`{"active": false}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("filter: {age: -1}\n"), 0o600))

	out, _, err := run(t, "", "validate", "users.search.request", good, bad, "-o", "text", "--no-color", "-j", "2")
	require.ErrorIs(t, err, errIssues)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, good+": ok", lines[0])
	assert.Equal(t, bad+": 2 issue(s)", lines[1])
	assert.Contains(t, lines[2], "/active field_missing")
	assert.Contains(t, lines[3], "/filter/age number_too_small")
}

func TestValidate_StdinOnlyOnce(t *testing.T) {
	out, _, err := run(t, `{"active": true}`, "validate", "users.search.request", "-", "-")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errIssues)
	assert.Contains(t, err.Error(), "stdin")
	assert.Empty(t, out)
}

func TestValidate_ManyInputsJSON(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte(`{"active": true}`), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(`{"active": true, "tags": ["x"]}`), 0o600))

	out, _, err := run(t, "", "validate", "users.search.request", a, b)
	require.NoError(t, err)
	var got []fileOut
	require.NoError(t, j.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].Input)
	assert.Equal(t, b, got[1].Input)
	assert.True(t, got[1].OK)
}

func TestValidate_Msgpack(t *testing.T) {
	raw, err := msgpack.Marshal(map[string]any{"active": true, "filter": map[string]any{"age": 4}})
	require.NoError(t, err)
	out, _, err := run(t, string(raw), "validate", "users.search.request", "-f", "msgpack")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"age": 4`)
}

func TestServe_Router(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o600))
	h, err := schemafile.NewHolder(path, zerolog.Nop())
	require.NoError(t, err)

	a := &app{log: zerolog.Nop(), maxDepth: ps.DefaultMaxDepth}
	srv := httptest.NewServer(a.router(h, prometheus.NewRegistry(), true))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/users/search?active=yes&filter[age]=3", "application/json", nil)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ok struct {
		Params map[string]any `json:"params"`
	}
	require.NoError(t, j.Unmarshal(body, &ok))
	assert.Equal(t, true, ok.Params["active"])

	resp, err = http.Post(srv.URL+"/users/search", "application/json", strings.NewReader(`{"active":"maybe"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/users/nope", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metrics, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(metrics), `paramshape_requests_total{outcome="accepted",shape="users.search.request"} 1`)
	assert.Contains(t, string(metrics), `paramshape_issues_total{code="type_invalid",shape="users.search.request"} 1`)
}
