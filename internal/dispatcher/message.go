package dispatcher

import (
	"encoding/json"

	"github.com/lucheng0127/cmdhost/internal/command"
)

// Request 调用请求
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Response 调用结果
type Response struct {
	ID      string      `json:"id,omitempty"`
	Command string      `json:"command,omitempty"`
	OK      bool        `json:"ok"`
	Result  interface{} `json:"result,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody 结构化错误
type ErrorBody struct {
	Kind    command.ErrorKind `json:"kind"`
	Message string            `json:"message"`
}

// Kind 返回错误类别，成功时为空
func (r *Response) Kind() command.ErrorKind {
	if r.Error == nil {
		return ""
	}
	return r.Error.Kind
}

// Marshal 编码响应
// 结果无法编码时降级为 Internal 错误响应
func (r *Response) Marshal() []byte {
	data, err := json.Marshal(r)
	if err == nil {
		return data
	}

	fallback := &Response{
		ID:      r.ID,
		Command: r.Command,
		Error: &ErrorBody{
			Kind:    command.KindInternal,
			Message: "failed to encode result: " + err.Error(),
		},
	}
	data, _ = json.Marshal(fallback)
	return data
}

// success 构建成功响应
func success(req *Request, result interface{}) *Response {
	return &Response{
		ID:      req.ID,
		Command: req.Command,
		OK:      true,
		Result:  result,
	}
}

// failure 构建错误响应
func failure(req *Request, err error) *Response {
	return &Response{
		ID:      req.ID,
		Command: req.Command,
		Error: &ErrorBody{
			Kind:    command.KindOf(err),
			Message: err.Error(),
		},
	}
}
