package command

import (
	"context"
)

// Handler 命令处理器接口
type Handler interface {
	// Name 返回命令名称（全局唯一）
	Name() string

	// Description 返回命令说明
	Description() string

	// Params 返回参数声明，顺序即位置参数的顺序
	Params() []Param

	// Execute 执行命令
	// args 已经按 Params 校验过
	Execute(ctx context.Context, args Args) (interface{}, error)
}

// Kind 参数类型
type Kind string

// 参数类型常量
const (
	KIND_STRING Kind = "string"
	KIND_NUMBER Kind = "number"
	KIND_BOOL   Kind = "bool"
	KIND_OBJECT Kind = "object"
	KIND_ARRAY  Kind = "array"
	KIND_ANY    Kind = "any"
)

// Param 参数声明
type Param struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Optional    bool   `json:"optional,omitempty"`
	Description string `json:"description,omitempty"`
}

// Descriptor 命令描述，用于列出命令
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      []Param `json:"params"`
}

// Describe 生成处理器的描述
func Describe(h Handler) Descriptor {
	params := h.Params()
	if params == nil {
		params = []Param{}
	}
	return Descriptor{
		Name:        h.Name(),
		Description: h.Description(),
		Params:      params,
	}
}

// required 统计必填参数数量
func required(params []Param) int {
	n := 0
	for _, p := range params {
		if !p.Optional {
			n++
		}
	}
	return n
}
