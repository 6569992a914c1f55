package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
)

// Dispatcher 命令分发器
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
}

// NewDispatcher 创建命令分发器，并封存注册表
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	registry.Seal()
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Commands 返回所有命令描述
func (d *Dispatcher) Commands() []command.Descriptor {
	return d.registry.Commands()
}

// Len 已注册命令数
func (d *Dispatcher) Len() int {
	return d.registry.Len()
}

// Dispatch 解析请求并执行命令，任何失败都转换为错误响应
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte) *Response {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		d.logger.Warn("failed to parse command request", zap.Error(err))
		return failure(&req, &command.ErrInvalidRequest{Err: err})
	}

	if req.Command == "" {
		return failure(&req, &command.ErrInvalidRequest{Err: errors.New("command is required")})
	}

	return d.Handle(ctx, &req)
}

// Handle 执行已解析的请求
func (d *Dispatcher) Handle(ctx context.Context, req *Request) *Response {
	result, err := d.Invoke(ctx, req.Command, req.Args)
	if err != nil {
		return failure(req, err)
	}
	return success(req, result)
}

// Invoke 查找、校验并同步执行命令
func (d *Dispatcher) Invoke(ctx context.Context, name string, rawArgs json.RawMessage) (interface{}, error) {
	// 查找处理器
	handler, exists := d.registry.Lookup(name)
	if !exists {
		d.logger.Warn("unknown command", zap.String("command", name))
		return nil, &command.ErrCommandNotFound{Name: name}
	}

	// 校验参数
	args, err := command.Bind(handler.Params(), rawArgs)
	if err != nil {
		err = withCommand(name, err)
		d.logger.Warn("invalid command arguments",
			zap.String("command", name),
			zap.Error(err),
		)
		return nil, err
	}

	d.logger.Debug("executing command",
		zap.String("command", name),
		zap.Any("args", map[string]interface{}(args)),
	)

	start := time.Now()
	result, err := d.execute(ctx, handler, args)
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Error("command execution failed",
			zap.String("command", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	d.logger.Info("command executed successfully",
		zap.String("command", name),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// execute 执行处理器，panic 转换为 ErrInternal
func (d *Dispatcher) execute(ctx context.Context, handler command.Handler, args command.Args) (result interface{}, err error) {
	name := handler.Name()

	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("command handler panicked",
				zap.String("command", name),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()),
			)
			result, err = nil, &command.ErrInternal{Command: name, Panic: p}
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, &command.ErrExecutionFailed{Command: name, Err: err}
	}

	result, err = handler.Execute(ctx, args)
	if err != nil {
		var invalid *command.ErrInvalidArguments
		if errors.As(err, &invalid) {
			return nil, withCommand(name, err)
		}
		return nil, &command.ErrExecutionFailed{Command: name, Err: err}
	}
	return result, nil
}

// withCommand 给参数错误补上命令名
func withCommand(name string, err error) error {
	var invalid *command.ErrInvalidArguments
	if errors.As(err, &invalid) && invalid.Command == "" {
		return &command.ErrInvalidArguments{Command: name, Reason: invalid.Reason}
	}
	if errors.As(err, &invalid) {
		return err
	}
	return fmt.Errorf("command %s: %w", name, err)
}
