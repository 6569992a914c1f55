package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lucheng0127/cmdhost/internal/api"
	"github.com/lucheng0127/cmdhost/internal/mqtt"
)

// 优雅关闭超时
const SHUTDOWN_TIMEOUT = 30 * time.Second

// Server 服务器
type Server struct {
	config        *Config
	app           *App
	httpServer    *http.Server
	mqttTransport *mqtt.Transport
	listenAddr    atomic.Value
	logger        *zap.Logger
}

// NewServer 创建服务器
func NewServer(config *Config, app *App, logger *zap.Logger) *Server {
	// 创建 HTTP 服务器
	apiHandler := api.NewHandler(app.Dispatcher, config.GetInvokeTimeout(), logger)
	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           api.NewRouter(apiHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 配置了 Broker 才创建 MQTT 传输
	var transport *mqtt.Transport
	if config.MQTTEnabled() {
		transport = mqtt.NewTransport(mqtt.Options{
			Broker:            config.MQTTBroker,
			ClientID:          config.MQTTClientID,
			HeartbeatInterval: config.GetHeartbeatInterval(),
			InvokeTimeout:     config.GetInvokeTimeout(),
		}, app.Dispatcher, logger)
	}

	return &Server{
		config:        config,
		app:           app,
		httpServer:    httpServer,
		mqttTransport: transport,
		logger:        logger,
	}
}

// Start 启动所有传输，阻塞到 ctx 取消或出错
func (s *Server) Start(ctx context.Context) error {
	// 先监听，端口被占用时立即失败
	listener, err := net.Listen("tcp", s.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.HTTPAddr, err)
	}
	s.listenAddr.Store(listener.Addr().String())

	// 创建 errgroup 用于管理 goroutine
	group, ctx := errgroup.WithContext(ctx)

	// 启动 MQTT 传输
	if s.mqttTransport != nil {
		group.Go(func() error {
			if err := s.mqttTransport.Start(ctx); err != nil {
				return fmt.Errorf("MQTT transport error: %w", err)
			}
			return nil
		})
	}

	// 启动 HTTP 服务器
	group.Go(func() error {
		s.logger.Info("HTTP server starting", zap.String("addr", listener.Addr().String()))
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// ctx 取消时关闭 HTTP 服务器
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shutdown HTTP server", zap.Error(err))
		}
		return nil
	})

	// 等待所有服务完成或出错
	if err := group.Wait(); err != nil {
		s.logger.Error("server error", zap.Error(err))
		return err
	}

	return nil
}

// Addr 返回实际监听地址，未启动时为空
func (s *Server) Addr() string {
	addr, _ := s.listenAddr.Load().(string)
	return addr
}

// Run 运行服务器（带信号处理）
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := s.Start(ctx)
	if ctx.Err() != nil {
		s.logger.Info("received shutdown signal")
	}

	s.logger.Info("server shutting down")
	if closeErr := s.app.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	s.logger.Info("server shutdown complete")

	return err
}
