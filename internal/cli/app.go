package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/server"
)

// openApp 加载配置，创建 logger 和 App
// 调用方负责关闭 App 并 Sync logger
func openApp(output string) (*server.Config, *server.App, *zap.Logger, error) {
	config, err := server.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := server.NewLogger(config.LogLevel, output)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app, err := server.NewApp(config, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return config, app, logger, nil
}
