package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Storage.StorageEngine)
	assert.Equal(t, "./data", cfg.Storage.DataPath)
	assert.Empty(t, cfg.Remote.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 30, cfg.Remote.RequestsPerMinute)
	assert.Equal(t, 256, cfg.Coach.CacheSize)
	assert.Equal(t, 4, cfg.Coach.Workers)
	assert.True(t, cfg.Features.EnableWebSocket)
	assert.True(t, cfg.Features.EnableRemote)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("UNSAID_PORT", "9000")
	t.Setenv("UNSAID_STORAGE_ENGINE", "memory")
	t.Setenv("UNSAID_REMOTE_ENDPOINT", "https://coach.example.com/enhance")
	t.Setenv("UNSAID_REMOTE_TIMEOUT", "500ms")
	t.Setenv("UNSAID_WORKERS", "0")
	t.Setenv("UNSAID_ENABLE_WEBSOCKET", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.StorageEngine)
	assert.Equal(t, "https://coach.example.com/enhance", cfg.Remote.Endpoint)
	assert.Equal(t, 500*time.Millisecond, cfg.Remote.Timeout)
	assert.Equal(t, 0, cfg.Coach.Workers)
	assert.False(t, cfg.Features.EnableWebSocket)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("UNSAID_PORT", "not-a-number")
	t.Setenv("UNSAID_REMOTE_TIMEOUT", "soon")
	t.Setenv("UNSAID_ENABLE_REMOTE", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Features.EnableRemote)
}
