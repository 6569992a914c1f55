package mcphost

import (
	"context"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := dispatcher.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(command.NewGreetCommand()))
	require.NoError(t, registry.Register(command.NewHostInfoCommand(registry.Len)))
	d := dispatcher.NewDispatcher(registry, zap.NewNop())

	return NewServer(d, "test", zap.NewNop())
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.ServeTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()

	session, err := client.Connect(connectCtx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestToolFor(t *testing.T) {
	tool := ToolFor(command.Describe(command.NewGreetCommand()))

	assert.Equal(t, "greet", tool.Name)

	schema, ok := tool.InputSchema.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"name"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["name"].Type)
}

func TestToolForOptionalAndAny(t *testing.T) {
	tool := ToolFor(command.Descriptor{
		Name: "x",
		Params: []command.Param{
			{Name: "v", Kind: command.KIND_ANY},
			{Name: "f", Kind: command.KIND_BOOL, Optional: true},
		},
	})

	schema := tool.InputSchema.(*jsonschema.Schema)
	assert.Equal(t, []string{"v"}, schema.Required)
	assert.Empty(t, schema.Properties["v"].Type)
	assert.Equal(t, "boolean", schema.Properties["f"].Type)
}

func TestListTools(t *testing.T) {
	session := connect(t, newTestServer(t))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"greet", "host_info"}, names)
}

func TestCallGreet(t *testing.T) {
	session := connect(t, newTestServer(t))

	text, isError := callText(t, session, "greet", map[string]any{"name": "MCP"})
	assert.False(t, isError)
	assert.Equal(t, "Hello, MCP! You've been greeted!", text)

	text, isError = callText(t, session, "greet", map[string]any{"name": ""})
	assert.False(t, isError)
	assert.Equal(t, "Hello, ! You've been greeted!", text)
}

func TestCallHostInfo(t *testing.T) {
	session := connect(t, newTestServer(t))

	text, isError := callText(t, session, "host_info", map[string]any{})
	assert.False(t, isError)
	assert.Contains(t, text, `"commands":2`)
}

func TestResultText(t *testing.T) {
	text, err := resultText("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", text)

	text, err = resultText([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, text)

	_, err = resultText(make(chan int))
	assert.Error(t, err)
}

func TestErrorResult(t *testing.T) {
	res := errorResult(&command.ErrCommandNotFound{Name: "nope"})
	assert.True(t, res.IsError)
	assert.Equal(t, "CommandNotFound: unknown command: nope", res.Content[0].(*mcp.TextContent).Text)
}
