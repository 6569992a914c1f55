package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

func newInvokeCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "invoke <command> [args-json]",
		Short: "Invoke one command and print the response envelope",
		Example: `  cmdhost invoke greet '["Ada"]'
  cmdhost invoke set_config '{"key":"app","value":{"debug":true}}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, app, logger, err := openApp("stderr")
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer app.Close()

			req := &dispatcher.Request{ID: id, Command: args[0]}
			if len(args) == 2 {
				req.Args = json.RawMessage(args[1])
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout := config.GetInvokeTimeout(); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			resp := app.Dispatcher.Handle(ctx, req)
			fmt.Fprintln(cmd.OutOrStdout(), string(resp.Marshal()))

			if !resp.OK {
				return &ExitError{Code: 2, Err: fmt.Errorf("%s: %s", resp.Error.Kind, resp.Error.Message)}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "request id echoed in the response")
	return cmd
}
