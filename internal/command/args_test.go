package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = []Param{
	{Name: "path", Kind: KIND_STRING},
	{Name: "count", Kind: KIND_NUMBER},
	{Name: "format", Kind: KIND_STRING, Optional: true},
}

func requireInvalid(t *testing.T, err error) {
	t.Helper()
	var invalid *ErrInvalidArguments
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, KindInvalidArguments, KindOf(err))
}

func TestBindEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		args, err := Bind(nil, json.RawMessage(raw))
		require.NoError(t, err, "raw %q", raw)
		assert.Empty(t, args)
	}
}

func TestBindEmptyMissingRequired(t *testing.T) {
	_, err := Bind(testParams, nil)
	requireInvalid(t, err)
}

func TestBindPositional(t *testing.T) {
	args, err := Bind(testParams, json.RawMessage(`["/tmp/x", 3]`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", args.String("path"))
	assert.Equal(t, 3.0, args.Number("count"))
	assert.False(t, args.Has("format"))

	args, err = Bind(testParams, json.RawMessage(`["/tmp/x", 3, "yaml"]`))
	require.NoError(t, err)
	assert.Equal(t, "yaml", args.String("format"))
}

func TestBindPositionalArity(t *testing.T) {
	for _, raw := range []string{`[]`, `["/tmp/x"]`, `["/tmp/x", 3, "yaml", 1]`} {
		_, err := Bind(testParams, json.RawMessage(raw))
		requireInvalid(t, err)
	}
}

func TestBindNamed(t *testing.T) {
	args, err := Bind(testParams, json.RawMessage(`{"count": 2, "path": "p"}`))
	require.NoError(t, err)
	assert.Equal(t, "p", args.String("path"))
	assert.Equal(t, 2.0, args.Number("count"))
}

func TestBindNamedAndPositionalAgree(t *testing.T) {
	named, err := Bind(testParams, json.RawMessage(`{"path": "p", "count": 1, "format": "toml"}`))
	require.NoError(t, err)
	positional, err := Bind(testParams, json.RawMessage(`["p", 1, "toml"]`))
	require.NoError(t, err)
	assert.Equal(t, named, positional)
}

func TestBindNamedErrors(t *testing.T) {
	tests := map[string]string{
		"missing":    `{"path": "p"}`,
		"unexpected": `{"path": "p", "count": 1, "extra": true}`,
		"wrong type": `{"path": 1, "count": 1}`,
		"null value": `{"path": null, "count": 1}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Bind(testParams, json.RawMessage(raw))
			requireInvalid(t, err)
		})
	}
}

func TestBindMalformed(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `42`, `[1,`, `{"a":1} {"b":2}`} {
		_, err := Bind(testParams, json.RawMessage(raw))
		requireInvalid(t, err)
	}
}

func TestBindTrailingData(t *testing.T) {
	params := []Param{{Name: "name", Kind: KIND_STRING}}

	for _, raw := range []string{`["a"]]`, `{"name":"a"}}`, `["a"] ["b"]`, `["a"],`} {
		_, err := Bind(params, json.RawMessage(raw))
		requireInvalid(t, err)
	}

	args, err := Bind(params, json.RawMessage(" [\"a\"] \n"))
	require.NoError(t, err)
	assert.Equal(t, "a", args.String("name"))
}

func TestBindKinds(t *testing.T) {
	params := []Param{
		{Name: "s", Kind: KIND_STRING},
		{Name: "n", Kind: KIND_NUMBER},
		{Name: "b", Kind: KIND_BOOL},
		{Name: "o", Kind: KIND_OBJECT},
		{Name: "a", Kind: KIND_ARRAY},
		{Name: "x", Kind: KIND_ANY},
	}

	args, err := Bind(params, json.RawMessage(`["s", 1.5, true, {"k": "v"}, [1, 2], "anything"]`))
	require.NoError(t, err)
	assert.Equal(t, "s", args.String("s"))
	assert.Equal(t, 1.5, args.Number("n"))
	assert.True(t, args.Bool("b"))
	assert.Equal(t, map[string]interface{}{"k": "v"}, args.Object("o"))
	assert.Equal(t, []interface{}{1.0, 2.0}, args["a"])
	assert.Equal(t, "anything", args["x"])

	_, err = Bind(params, json.RawMessage(`["s", 1.5, true, [], [1, 2], 0]`))
	requireInvalid(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindCommandNotFound, KindOf(&ErrCommandNotFound{Name: "x"}))
	assert.Equal(t, KindDuplicateRegistration, KindOf(&ErrDuplicateRegistration{Name: "x"}))
	assert.Equal(t, KindInvalidRequest, KindOf(&ErrInvalidRequest{Err: assert.AnError}))
	assert.Equal(t, KindInternal, KindOf(&ErrInternal{Command: "x", Panic: "boom"}))
	assert.Equal(t, KindExecutionFailed, KindOf(&ErrExecutionFailed{Command: "x", Err: assert.AnError}))
	assert.Equal(t, KindExecutionFailed, KindOf(assert.AnError))
}
