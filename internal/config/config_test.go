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

	assert.Equal(t, 8090, cfg.AppPort)
	assert.Equal(t, "http://localhost:8091", cfg.EngineURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Nil(t, cfg.MCPServerList())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("ENGINE_URL", "http://engine:9100")
	t.Setenv("POLL_INTERVAL_MS", "500")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.AppPort)
	assert.Equal(t, "http://engine:9100", cfg.EngineURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
}

func TestMCPServerList(t *testing.T) {
	cfg := &Config{MCPServers: "http://tools-a:7000, http://tools-b:7001 ,"}
	assert.Equal(t, []string{"http://tools-a:7000", "http://tools-b:7001"}, cfg.MCPServerList())
}
