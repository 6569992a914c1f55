package mcphost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

// 服务名称
const SERVER_NAME = "cmdhost"

// Server 把已注册命令暴露为 MCP 工具
type Server struct {
	server     *mcp.Server
	dispatcher *dispatcher.Dispatcher
	logger     *zap.Logger
}

// NewServer 创建 MCP 服务，每个命令注册为一个工具
func NewServer(d *dispatcher.Dispatcher, version string, logger *zap.Logger) *Server {
	s := &Server{
		server:     mcp.NewServer(&mcp.Implementation{Name: SERVER_NAME, Version: version}, nil),
		dispatcher: d,
		logger:     logger,
	}

	for _, desc := range d.Commands() {
		mcp.AddTool(s.server, ToolFor(desc), s.toolHandler(desc.Name))
		logger.Debug("mcp tool registered", zap.String("tool", desc.Name))
	}

	return s
}

// Serve 在 stdio 上运行，直到对端断开或 ctx 取消
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport 在指定传输上运行
func (s *Server) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("mcp server starting", zap.Int("tools", s.dispatcher.Len()))

	err := s.server.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server error: %w", err)
	}

	s.logger.Info("mcp server stopped")
	return nil
}

// ToolFor 根据命令描述生成工具定义
func ToolFor(desc command.Descriptor) *mcp.Tool {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(desc.Params)),
	}

	for _, p := range desc.Params {
		prop := &jsonschema.Schema{Description: p.Description}
		if t := schemaType(p.Kind); t != "" {
			prop.Type = t
		}
		schema.Properties[p.Name] = prop
		if !p.Optional {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return &mcp.Tool{
		Name:        desc.Name,
		Description: desc.Description,
		InputSchema: schema,
	}
}

// schemaType 参数类型对应的 JSON Schema 类型
func schemaType(kind command.Kind) string {
	switch kind {
	case command.KIND_STRING:
		return "string"
	case command.KIND_NUMBER:
		return "number"
	case command.KIND_BOOL:
		return "boolean"
	case command.KIND_OBJECT:
		return "object"
	case command.KIND_ARRAY:
		return "array"
	default:
		return ""
	}
}

// toolHandler 把工具调用转发给分发器
func (s *Server) toolHandler(name string) mcp.ToolHandlerFor[map[string]any, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, any, error) {
		raw, err := json.Marshal(input)
		if err != nil {
			return errorResult(&command.ErrInvalidArguments{Command: name, Reason: err.Error()}), nil, nil
		}

		result, err := s.dispatcher.Invoke(ctx, name, raw)
		if err != nil {
			return errorResult(err), nil, nil
		}

		text, err := resultText(result)
		if err != nil {
			return errorResult(fmt.Errorf("failed to encode result: %w", err)), nil, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
}

// resultText 字符串结果原样返回，其它结果编码为 JSON
func resultText(result interface{}) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// errorResult 构建带错误类别的工具错误结果
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s: %v", command.KindOf(err), err)},
		},
	}
}
