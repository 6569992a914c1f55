package db

import (
	"context"

	"github.com/lucheng0127/cmdhost/internal/model"
)

// ConfigRepository 定义配置存储接口
type ConfigRepository interface {
	// Save 保存或更新配置
	Save(ctx context.Context, entry *model.ConfigEntry) error

	// Create 创建配置，已存在时返回 ErrConfigAlreadyExists
	Create(ctx context.Context, entry *model.ConfigEntry) error

	// FindByKey 根据键查找配置
	FindByKey(ctx context.Context, key string) (*model.ConfigEntry, error)

	// List 按键排序列出所有配置
	List(ctx context.Context) ([]*model.ConfigEntry, error)

	// Delete 删除配置
	Delete(ctx context.Context, key string) error
}

// SettingRepository 定义设置项存储接口
type SettingRepository interface {
	// GetSetting 读取设置项，不存在时返回空串
	GetSetting(ctx context.Context, name string) (string, error)

	// PutSetting 写入设置项
	PutSetting(ctx context.Context, name, value string) error
}

// ErrConfigNotFound 配置不存在错误
type ErrConfigNotFound struct {
	Key string
}

func (e *ErrConfigNotFound) Error() string {
	return "config not found: " + e.Key
}

// ErrConfigAlreadyExists 配置已存在错误
type ErrConfigAlreadyExists struct {
	Key string
}

func (e *ErrConfigAlreadyExists) Error() string {
	return "config already exists: " + e.Key
}
