package cli

import (
	"github.com/spf13/cobra"
)

// 版本号
const VERSION = "0.1.0"

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cmdhost",
		Short:   "Host a fixed set of named commands over HTTP, MQTT and MCP",
		Version: VERSION,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newInvokeCmd())
	cmd.AddCommand(newCommandsCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

// Execute 使用给定参数运行根命令
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// ExitError 带退出码的错误
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
func (e *ExitError) ExitCode() int { return e.Code }
