package dispatcher

import (
	"errors"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
)

var (
	// ErrRegistrySealed 注册表已封存
	ErrRegistrySealed = errors.New("registry is sealed")
	// ErrInvalidCommandName 命令名为空或包含空白
	ErrInvalidCommandName = errors.New("invalid command name")
)

// Registry 命令注册表
// 启动时注册，Seal 之后只读，读操作不加锁
type Registry struct {
	handlers map[string]command.Handler
	sealed   atomic.Bool
	logger   *zap.Logger
}

// NewRegistry 创建命令注册表
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]command.Handler),
		logger:   logger,
	}
}

// Register 注册命令处理器，名称重复时返回 ErrDuplicateRegistration，已有注册保持不变
func (r *Registry) Register(handler command.Handler) error {
	if r.sealed.Load() {
		return ErrRegistrySealed
	}

	name := handler.Name()
	if name == "" || strings.TrimSpace(name) != name {
		return ErrInvalidCommandName
	}

	if _, exists := r.handlers[name]; exists {
		return &command.ErrDuplicateRegistration{Name: name}
	}

	r.handlers[name] = handler
	r.logger.Info("command handler registered", zap.String("command", name))
	return nil
}

// RegisterAll 依次注册，遇到第一个错误即返回
func (r *Registry) RegisterAll(handlers ...command.Handler) error {
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return err
		}
	}
	return nil
}

// Seal 封存注册表
func (r *Registry) Seal() {
	if r.sealed.CompareAndSwap(false, true) {
		r.logger.Info("command registry sealed", zap.Int("commands", len(r.handlers)))
	}
}

// Sealed 是否已封存
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Lookup 查找处理器
func (r *Registry) Lookup(name string) (command.Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Len 已注册命令数
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Commands 按名称排序返回所有命令描述
func (r *Registry) Commands() []command.Descriptor {
	descriptors := make([]command.Descriptor, 0, len(r.handlers))
	for _, h := range r.handlers {
		descriptors = append(descriptors, command.Describe(h))
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors
}
