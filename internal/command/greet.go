package command

import (
	"context"
)

// GreetCommand 问候命令
type GreetCommand struct{}

// NewGreetCommand 创建问候命令
func NewGreetCommand() *GreetCommand {
	return &GreetCommand{}
}

// Name 返回命令名称
func (c *GreetCommand) Name() string {
	return "greet"
}

// Description 返回命令说明
func (c *GreetCommand) Description() string {
	return "Return a greeting for the given name"
}

// Params 返回参数声明
func (c *GreetCommand) Params() []Param {
	return []Param{
		{Name: "name", Kind: KIND_STRING, Description: "name to greet, may be empty"},
	}
}

// Execute 执行问候命令
func (c *GreetCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	return Greeting(args.String("name")), nil
}

// Greeting 生成问候语
func Greeting(name string) string {
	return "Hello, " + name + "! You've been greeted!"
}
