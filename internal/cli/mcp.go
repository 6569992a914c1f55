package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lucheng0127/cmdhost/internal/mcphost"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve commands as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout 归 MCP 协议使用，日志写 stderr
			_, app, logger, err := openApp("stderr")
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return mcphost.NewServer(app.Dispatcher, VERSION, logger).Serve(ctx)
		},
	}
}
