package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// 心跳间隔下限（秒）
const MIN_HEARTBEAT_INTERVAL = 10

// Config 服务配置
type Config struct {
	// HTTP 服务地址
	HTTPAddr string `env:"CH_HTTP_ADDR" envDefault:":8080" validate:"required"`
	// MQTT Broker 地址，为空时不启用 MQTT
	MQTTBroker string `env:"CH_MQTT_BROKER" validate:"omitempty,url"`
	// MQTT 客户端 ID，同时作为主题前缀
	MQTTClientID string `env:"CH_MQTT_CLIENT_ID" envDefault:"cmdhost" validate:"required,excludesall=/+#"`
	// 心跳间隔（秒）
	HeartbeatInterval int `env:"CH_HEARTBEAT_INTERVAL" envDefault:"30"`
	// 数据库路径
	DBPath string `env:"CH_DB_PATH" envDefault:"cmdhost.db" validate:"required"`
	// 日志级别
	LogLevel string `env:"CH_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	// 单次调用超时（秒），0 表示不限制
	InvokeTimeout int `env:"CH_INVOKE_TIMEOUT" envDefault:"10" validate:"gte=0"`
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// 最小 10 秒
	if cfg.HeartbeatInterval < MIN_HEARTBEAT_INTERVAL {
		cfg.HeartbeatInterval = MIN_HEARTBEAT_INTERVAL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetHeartbeatInterval 获取心跳间隔时间
func (c *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatInterval) * time.Second
}

// GetInvokeTimeout 获取单次调用超时
func (c *Config) GetInvokeTimeout() time.Duration {
	return time.Duration(c.InvokeTimeout) * time.Second
}

// MQTTEnabled 是否启用 MQTT
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}
