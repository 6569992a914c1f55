package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

// 请求体上限
const MAX_BODY_BYTES = 1 << 20

// Handler API 处理器
type Handler struct {
	dispatcher    *dispatcher.Dispatcher
	invokeTimeout time.Duration
	logger        *zap.Logger
	startTime     time.Time
}

// NewHandler 创建 API 处理器
func NewHandler(d *dispatcher.Dispatcher, invokeTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher:    d,
		invokeTimeout: invokeTimeout,
		logger:        logger,
		startTime:     time.Now(),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/invoke", h.Invoke)

		commands := v1.Group("/commands")
		{
			commands.GET("", h.ListCommands)
			commands.POST("/:name", h.InvokeByName)
		}
	}

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// NewRouter 创建带默认中间件的路由
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	h.RegisterRoutes(router)
	return router
}

// requestLogger 用 zap 记录请求
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// Invoke 执行请求信封中的命令
func (h *Handler) Invoke(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.respond(c, &dispatcher.Response{
			Error: &dispatcher.ErrorBody{Kind: command.KindInvalidRequest, Message: err.Error()},
		})
		return
	}

	ctx, cancel := h.invokeContext(c)
	defer cancel()

	h.respond(c, h.dispatcher.Dispatch(ctx, body))
}

// InvokeByName 执行路径中指定的命令，请求体即参数
func (h *Handler) InvokeByName(c *gin.Context) {
	req := &dispatcher.Request{
		ID:      c.GetHeader("X-Request-ID"),
		Command: c.Param("name"),
	}

	body, err := readBody(c)
	if err != nil {
		h.respond(c, &dispatcher.Response{
			ID:      req.ID,
			Command: req.Command,
			Error:   &dispatcher.ErrorBody{Kind: command.KindInvalidRequest, Message: err.Error()},
		})
		return
	}
	req.Args = json.RawMessage(body)

	ctx, cancel := h.invokeContext(c)
	defer cancel()

	h.respond(c, h.dispatcher.Handle(ctx, req))
}

// ListCommands 列出所有命令
func (h *Handler) ListCommands(c *gin.Context) {
	c.JSON(http.StatusOK, h.dispatcher.Commands())
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Commands int    `json:"commands"`
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Uptime:   time.Since(h.startTime).String(),
		Commands: h.dispatcher.Len(),
	})
}

// respond 写出响应信封
func (h *Handler) respond(c *gin.Context, resp *dispatcher.Response) {
	c.Data(StatusCode(resp), "application/json; charset=utf-8", resp.Marshal())
}

// invokeContext 为单次调用派生带超时的 context
func (h *Handler) invokeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.invokeTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.invokeTimeout)
}

// StatusCode 把错误类别映射为 HTTP 状态码
func StatusCode(resp *dispatcher.Response) int {
	if resp.OK {
		return http.StatusOK
	}

	switch resp.Kind() {
	case command.KindCommandNotFound:
		return http.StatusNotFound
	case command.KindInvalidArguments, command.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readBody 读取请求体
func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MAX_BODY_BYTES))
}
