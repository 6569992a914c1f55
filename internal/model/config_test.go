package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigEntry(t *testing.T) {
	entry, err := NewConfigEntry("  obsidian ", nil)
	require.NoError(t, err)

	assert.Equal(t, "obsidian", entry.Key)
	assert.NotNil(t, entry.Value)
	assert.Empty(t, entry.Value)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Equal(t, entry.CreatedAt, entry.UpdatedAt)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "plain", key: "notion"},
		{name: "unicode", key: "配置-1"},
		{name: "empty", key: "", wantErr: true},
		{name: "control", key: "a\nb", wantErr: true},
		{name: "too long", key: strings.Repeat("k", MAX_KEY_LENGTH+1), wantErr: true},
		{name: "max length", key: strings.Repeat("k", MAX_KEY_LENGTH)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigEntryValidate(t *testing.T) {
	entry := &ConfigEntry{Key: "k"}
	assert.Error(t, entry.Validate())

	entry.Value = map[string]interface{}{}
	assert.NoError(t, entry.Validate())
}
