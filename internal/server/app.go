package server

import (
	"fmt"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
	"github.com/lucheng0127/cmdhost/internal/db"
	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

// App 进程级共享对象：数据库和封存后的分发器
type App struct {
	Dispatcher *dispatcher.Dispatcher
	db         *bbolt.DB
	logger     *zap.Logger
}

// NewApp 打开数据库并注册所有命令
// 注册失败（例如重名）属于启动错误，调用方应终止进程
func NewApp(config *Config, logger *zap.Logger) (*App, error) {
	boltDB, err := db.InitializeDB(config.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := db.NewBoltConfigRepository(boltDB, logger)

	registry, err := NewRegistry(repo, logger)
	if err != nil {
		boltDB.Close()
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	return &App{
		Dispatcher: dispatcher.NewDispatcher(registry, logger),
		db:         boltDB,
		logger:     logger,
	}, nil
}

// NewRegistry 注册内置命令
func NewRegistry(repo *db.BoltConfigRepository, logger *zap.Logger) (*dispatcher.Registry, error) {
	registry := dispatcher.NewRegistry(logger)

	handlers := []command.Handler{
		command.NewGreetCommand(),
		command.NewHostInfoCommand(registry.Len),
	}
	handlers = append(handlers, command.NewConfigStore(repo, repo, logger).Handlers()...)

	if err := registry.RegisterAll(handlers...); err != nil {
		return nil, err
	}
	return registry, nil
}

// Close 关闭数据库
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", zap.Error(err))
		return err
	}
	a.db = nil
	return nil
}
