package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen   string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		ViewPoll time.Duration `yaml:"view_poll" json:"view_poll" jsonschema:"default=5s,description=How often the page polls dashboard content"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Upstream UpstreamConfig `yaml:"upstream" json:"upstream" jsonschema:"description=Recommendations API configuration"`

	Refresh RefreshConfig `yaml:"refresh" json:"refresh" jsonschema:"description=Dashboard refresh configuration"`
}

// UpstreamConfig holds settings of the recommendations API client
type UpstreamConfig struct {
	BaseURL      string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:5000,description=Base URL of the recommendations API"`
	Path         string        `yaml:"path" json:"path" jsonschema:"default=/api/llm-responses/today,description=Path of the today responses endpoint"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Request timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Tradescope/1.0,description=User agent for upstream requests"`
	WaitAttempts int           `yaml:"wait_attempts" json:"wait_attempts" jsonschema:"default=0,minimum=0,description=Startup readiness probe attempts (0 disables the probe)"`
	WaitDelay    time.Duration `yaml:"wait_delay" json:"wait_delay" jsonschema:"default=1s,description=Initial delay between readiness probes"`
}

// RefreshConfig holds refresh controller settings
type RefreshConfig struct {
	Interval    time.Duration `yaml:"interval" json:"interval" jsonschema:"default=30s,description=Auto-refresh interval"`
	NotifyTTL   time.Duration `yaml:"notify_ttl" json:"notify_ttl" jsonschema:"default=5s,description=How long a notification stays visible"`
	AutoStart   bool          `yaml:"auto_start" json:"auto_start" jsonschema:"default=false,description=Enable auto-refresh on start"`
	LoadOnStart *bool         `yaml:"load_on_start" json:"load_on_start" jsonschema:"default=true,description=Load today's responses on start"`
}

// ShouldLoadOnStart reports whether the initial load is enabled, true if not set
func (r RefreshConfig) ShouldLoadOnStart() bool {
	return r.LoadOnStart == nil || *r.LoadOnStart
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return prepare(&cfg)
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Finalize applies defaults and validates a config modified after loading, e.g. by CLI overrides
func Finalize(cfg *Config) (*Config, error) {
	return prepare(cfg)
}

func prepare(cfg *Config) (*Config, error) {
	setDefaults(cfg)

	// validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.ViewPoll == 0 {
		cfg.Server.ViewPoll = 5 * time.Second
	}

	// upstream
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:5000"
	}
	if cfg.Upstream.Path == "" {
		cfg.Upstream.Path = "/api/llm-responses/today"
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 15 * time.Second
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = "Tradescope/1.0"
	}
	if cfg.Upstream.WaitDelay == 0 {
		cfg.Upstream.WaitDelay = time.Second
	}

	// refresh
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = 30 * time.Second
	}
	if cfg.Refresh.NotifyTTL == 0 {
		cfg.Refresh.NotifyTTL = 5 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Server.ViewPoll < time.Second {
		return fmt.Errorf("server view_poll must be at least 1 second")
	}

	// validate upstream config
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute http(s) url, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout < 100*time.Millisecond {
		return fmt.Errorf("upstream timeout must be at least 100ms")
	}
	if cfg.Upstream.WaitAttempts < 0 {
		return fmt.Errorf("upstream.wait_attempts must be non-negative")
	}

	// validate refresh config
	if cfg.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh interval must be at least 1 second")
	}
	if cfg.Refresh.NotifyTTL < 0 {
		return fmt.Errorf("refresh notify_ttl must be non-negative")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
