package command

import (
	"context"

	"github.com/lucheng0127/cmdhost/internal/info"
)

// HostInfoResult host_info 命令结果
type HostInfoResult struct {
	info.Snapshot
	Commands int `json:"commands"`
}

// HostInfoCommand 主机信息命令
type HostInfoCommand struct {
	count func() int
}

// NewHostInfoCommand 创建主机信息命令，count 返回已注册命令数
func NewHostInfoCommand(count func() int) *HostInfoCommand {
	return &HostInfoCommand{count: count}
}

// Name 返回命令名称
func (c *HostInfoCommand) Name() string {
	return "host_info"
}

// Description 返回命令说明
func (c *HostInfoCommand) Description() string {
	return "Report hostname, uptime and the number of registered commands"
}

// Params 返回参数声明
func (c *HostInfoCommand) Params() []Param {
	return nil
}

// Execute 收集主机信息
func (c *HostInfoCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	result := HostInfoResult{Snapshot: info.Collect()}
	if c.count != nil {
		result.Commands = c.count()
	}
	return result, nil
}
