package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ConfigEntry 表示一组命名的配置（一个 JSON 对象）
type ConfigEntry struct {
	Key       string                 `json:"key"`
	Value     map[string]interface{} `json:"value"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// 键长度上限
const MAX_KEY_LENGTH = 128

// 设置项名称
const (
	SETTING_TARGET_FILE = "target_file"
)

// NewConfigEntry 创建新配置
func NewConfigEntry(key string, value map[string]interface{}) (*ConfigEntry, error) {
	key = NormalizeKey(key)
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	if value == nil {
		value = map[string]interface{}{}
	}

	now := time.Now()
	return &ConfigEntry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate 验证配置数据
func (e *ConfigEntry) Validate() error {
	if err := ValidateKey(e.Key); err != nil {
		return err
	}

	if e.Value == nil {
		return errors.New("config value is required")
	}

	return nil
}

// NormalizeKey 去掉首尾空白
func NormalizeKey(key string) string {
	return strings.TrimSpace(key)
}

// ValidateKey 验证配置键
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("config key is required")
	}

	if len(key) > MAX_KEY_LENGTH {
		return fmt.Errorf("config key exceeds %d bytes", MAX_KEY_LENGTH)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return errors.New("config key contains control characters")
		}
	}

	return nil
}
