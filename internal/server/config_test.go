package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "cmdhost", cfg.MQTTClientID)
	assert.Equal(t, "cmdhost.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.GetHeartbeatInterval())
	assert.Equal(t, 10*time.Second, cfg.GetInvokeTimeout())
	assert.False(t, cfg.MQTTEnabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CH_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CH_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("CH_MQTT_CLIENT_ID", "desk-7")
	t.Setenv("CH_HEARTBEAT_INTERVAL", "3")
	t.Setenv("CH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.True(t, cfg.MQTTEnabled())
	assert.Equal(t, "desk-7", cfg.MQTTClientID)
	assert.Equal(t, MIN_HEARTBEAT_INTERVAL*time.Second, cfg.GetHeartbeatInterval())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string][2]string{
		"bad int":       {"CH_INVOKE_TIMEOUT", "soon"},
		"bad level":     {"CH_LOG_LEVEL", "verbose"},
		"bad client id": {"CH_MQTT_CLIENT_ID", "a/b"},
		"bad broker":    {"CH_MQTT_BROKER", "not a url"},
		"negative":      {"CH_INVOKE_TIMEOUT", "-1"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
