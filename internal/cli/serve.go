package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve commands over HTTP and, when a broker is configured, MQTT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, app, logger, err := openApp("stdout")
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("starting cmdhost",
				zap.String("version", VERSION),
				zap.String("http_addr", config.HTTPAddr),
				zap.Bool("mqtt", config.MQTTEnabled()),
				zap.Int("commands", app.Dispatcher.Len()),
			)

			// Run 退出时关闭 App
			return server.NewServer(config, app, logger).Run()
		},
	}
}
