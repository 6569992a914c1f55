package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucheng0127/cmdhost/internal/command"
	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CH_DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("CH_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvokeGreet(t *testing.T) {
	out, err := run(t, "invoke", "--id", "42", "greet", `["Ada"]`)
	require.NoError(t, err)

	var resp dispatcher.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "42", resp.ID)
	assert.Equal(t, "Hello, Ada! You've been greeted!", resp.Result)
}

func TestInvokeUnknownCommand(t *testing.T) {
	out, err := run(t, "invoke", "unknown_command")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode())

	var resp dispatcher.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, command.KindCommandNotFound, resp.Kind())
}

func TestInvokeRequiresCommand(t *testing.T) {
	_, err := run(t, "invoke")
	assert.Error(t, err)
}

func TestCommandsList(t *testing.T) {
	out, err := run(t, "commands")
	require.NoError(t, err)

	var descs []command.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.NotEmpty(t, descs)

	names := make(map[string]bool, len(descs))
	for _, d := range descs {
		names[d.Name] = true
	}
	assert.True(t, names["greet"])
	assert.True(t, names["host_info"])
	assert.True(t, names["set_config"])
}

func TestBadConfig(t *testing.T) {
	t.Setenv("CH_LOG_LEVEL", "loud")
	t.Setenv("CH_DB_PATH", filepath.Join(t.TempDir(), "cli.db"))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"commands"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
