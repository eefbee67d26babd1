package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile_JSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
		"environment": "production",
		"prod_base_url": "https://api.example.com/api",
		"request_timeout": "20s",
		"max_retries": 0,
		"cache_ttl": "1h"
	}`)

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseFile(cfg, []string{"-config", path}))

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, "https://api.example.com/api", cfg.BaseURL())
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval, "unset fields keep defaults")
}

func Test_parseFile_YAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "dev_host: 10.1.1.1\ndev_port: 8081\nheartbeat_interval: 10s\nmax_reconnect_attempts: 2\n")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseFile(cfg, []string{"-c", path}))

	assert.Equal(t, "http://10.1.1.1:8081/api", cfg.BaseURL())
	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 2, cfg.MaxReconnectAttempts)
}

func Test_parseFile_NoFlagNoChange(t *testing.T) {
	cfg := &Config{DevHost: "keep"}
	require.NoError(t, parseFile(cfg, []string{"-a", "x"}))
	assert.Equal(t, "keep", cfg.DevHost)
}

func Test_parseFile_Errors(t *testing.T) {
	cfg := &Config{}
	require.ErrorContains(t, parseFile(cfg, []string{"-c", filepath.Join(t.TempDir(), "missing.json")}), "read config")

	bad := writeTemp(t, "bad.json", `{ not json`)
	require.ErrorContains(t, parseFile(cfg, []string{"-c", bad}), "decode config")
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"api_base_url": "http://file/api", "online_check_interval": "9s"}`)

	cfg, err := Load([]string{"-c", path, "-a", "http://flag/api"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://flag/api", cfg.BaseURL())
	assert.Equal(t, 9*time.Second, cfg.OnlineCheckInterval)
}
