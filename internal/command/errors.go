package command

import (
	"errors"
	"fmt"
)

// ErrorKind 错误类别，透传给宿主
type ErrorKind string

// 错误类别常量
const (
	KindDuplicateRegistration ErrorKind = "DuplicateRegistration"
	KindCommandNotFound       ErrorKind = "CommandNotFound"
	KindInvalidArguments      ErrorKind = "InvalidArguments"
	KindInvalidRequest        ErrorKind = "InvalidRequest"
	KindExecutionFailed       ErrorKind = "ExecutionFailed"
	KindInternal              ErrorKind = "Internal"
)

// ErrDuplicateRegistration 命令重复注册错误
type ErrDuplicateRegistration struct {
	Name string
}

func (e *ErrDuplicateRegistration) Error() string {
	return fmt.Sprintf("command %q already registered", e.Name)
}

// ErrCommandNotFound 命令不存在错误
type ErrCommandNotFound struct {
	Name string
}

func (e *ErrCommandNotFound) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Name)
}

// ErrInvalidArguments 参数不合法错误
type ErrInvalidArguments struct {
	Command string
	Reason  string
}

func (e *ErrInvalidArguments) Error() string {
	if e.Command == "" {
		return "invalid arguments: " + e.Reason
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Command, e.Reason)
}

// ErrInvalidRequest 请求无法解析错误
type ErrInvalidRequest struct {
	Err error
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ErrInvalidRequest) Unwrap() error {
	return e.Err
}

// ErrExecutionFailed 命令执行失败错误
type ErrExecutionFailed struct {
	Command string
	Err     error
}

func (e *ErrExecutionFailed) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *ErrExecutionFailed) Unwrap() error {
	return e.Err
}

// ErrInternal 处理器 panic
type ErrInternal struct {
	Command string
	Panic   interface{}
}

func (e *ErrInternal) Error() string {
	return fmt.Sprintf("command %s panicked: %v", e.Command, e.Panic)
}

// InvalidArguments 供处理器返回参数错误
func InvalidArguments(format string, a ...interface{}) error {
	return &ErrInvalidArguments{Reason: fmt.Sprintf(format, a...)}
}

// KindOf 返回错误对应的类别
func KindOf(err error) ErrorKind {
	var (
		dup      *ErrDuplicateRegistration
		notFound *ErrCommandNotFound
		invalid  *ErrInvalidArguments
		request  *ErrInvalidRequest
		internal *ErrInternal
	)

	switch {
	case errors.As(err, &dup):
		return KindDuplicateRegistration
	case errors.As(err, &notFound):
		return KindCommandNotFound
	case errors.As(err, &invalid):
		return KindInvalidArguments
	case errors.As(err, &request):
		return KindInvalidRequest
	case errors.As(err, &internal):
		return KindInternal
	default:
		return KindExecutionFailed
	}
}
