package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configPath := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 45s
  view_poll: 10s

upstream:
  base_url: http://api.example.com:5000
  path: /v2/today
  timeout: 5s
  user_agent: test-agent
  wait_attempts: 3
  wait_delay: 2s

refresh:
  interval: 1m
  notify_ttl: 3s
  auto_start: true
  load_on_start: false
`)
		cfg, err := Load(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ViewPoll)

		assert.Equal(t, "http://api.example.com:5000", cfg.Upstream.BaseURL)
		assert.Equal(t, "/v2/today", cfg.Upstream.Path)
		assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
		assert.Equal(t, "test-agent", cfg.Upstream.UserAgent)
		assert.Equal(t, 3, cfg.Upstream.WaitAttempts)
		assert.Equal(t, 2*time.Second, cfg.Upstream.WaitDelay)

		assert.Equal(t, time.Minute, cfg.Refresh.Interval)
		assert.Equal(t, 3*time.Second, cfg.Refresh.NotifyTTL)
		assert.True(t, cfg.Refresh.AutoStart)
		assert.False(t, cfg.Refresh.ShouldLoadOnStart())
	})

	t.Run("defaults", func(t *testing.T) {
		configPath := writeConfig(t, `
upstream:
  base_url: http://localhost:5001
`)
		cfg, err := Load(configPath)
		require.NoError(t, err)

		// check server defaults
		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, 5*time.Second, cfg.Server.ViewPoll)

		// check upstream defaults
		assert.Equal(t, "http://localhost:5001", cfg.Upstream.BaseURL)
		assert.Equal(t, "/api/llm-responses/today", cfg.Upstream.Path)
		assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
		assert.Equal(t, "Tradescope/1.0", cfg.Upstream.UserAgent)
		assert.Equal(t, 0, cfg.Upstream.WaitAttempts)
		assert.Equal(t, time.Second, cfg.Upstream.WaitDelay)

		// check refresh defaults
		assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
		assert.Equal(t, 5*time.Second, cfg.Refresh.NotifyTTL)
		assert.False(t, cfg.Refresh.AutoStart)
		assert.True(t, cfg.Refresh.ShouldLoadOnStart())
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("TRADESCOPE_TEST_UPSTREAM", "https://signals.example.com")
		configPath := writeConfig(t, `
upstream:
  base_url: ${TRADESCOPE_TEST_UPSTREAM}
`)
		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "https://signals.example.com", cfg.Upstream.BaseURL)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := writeConfig(t, `
invalid yaml content
  with bad indentation
    and no structure
`)
		cfg, err := Load(configPath)
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			errMsg  string
		}{
			{"short server timeout", "server:\n  timeout: 100ms\n", "server timeout must be at least 1 second"},
			{"short view poll", "server:\n  view_poll: 10ms\n", "view_poll must be at least 1 second"},
			{"relative base url", "upstream:\n  base_url: localhost:5000/api\n", "upstream.base_url must be an absolute http(s) url"},
			{"bad scheme", "upstream:\n  base_url: ftp://example.com\n", "upstream.base_url must be an absolute http(s) url"},
			{"short upstream timeout", "upstream:\n  timeout: 1ms\n", "upstream timeout must be at least 100ms"},
			{"negative attempts", "upstream:\n  wait_attempts: -1\n", "wait_attempts must be non-negative"},
			{"short interval", "refresh:\n  interval: 500ms\n", "refresh interval must be at least 1 second"},
			{"negative ttl", "refresh:\n  notify_ttl: -1s\n", "notify_ttl must be non-negative"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg, err := Load(writeConfig(t, tt.content))
				require.Error(t, err)
				assert.Nil(t, cfg)
				assert.Contains(t, err.Error(), "validate config")
				assert.Contains(t, err.Error(), tt.errMsg)
			})
		}
	})
}

func TestDefaultAndFinalize(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "http://localhost:5000", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	assert.True(t, cfg.Refresh.ShouldLoadOnStart())

	cfg.Upstream.BaseURL = "http://other:7000"
	cfg.Server.Listen = ":9999"
	res, err := Finalize(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://other:7000", res.Upstream.BaseURL)
	assert.Equal(t, ":9999", res.Server.Listen)

	cfg.Upstream.BaseURL = "not a url"
	_, err = Finalize(cfg)
	require.Error(t, err)
}

func TestConfig_GetServerConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Listen = ":9090"
	cfg.Server.Timeout = 45 * time.Second

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 45*time.Second, timeout)
	assert.Same(t, cfg, cfg.GetFullConfig())
}
