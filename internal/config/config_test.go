package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "A4", cfg.ExportOptions().PageSize)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeFile(t, "cvbuilder.yaml", `
database_url: postgres://localhost/cv
port: 9090
chrome:
  remote_url: ws://chrome:9222
  timeout: 45s
redis:
  url: redis://localhost:6379/0
export:
  page_size: letter
  landscape: true
load:
  retries: 1
rate_limit:
  whitelist: "10.0.0.1, 10.0.0.2"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/cv", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "ws://chrome:9222", cfg.Chrome.RemoteURL)
	assert.Equal(t, 45*time.Second, cfg.Chrome.Timeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 1, cfg.Load.Retries)

	// Unset keys keep their defaults
	assert.Equal(t, 4, cfg.Load.Concurrency)
	assert.Equal(t, "cvbuilder:pdf:", cfg.Redis.KeyPrefix)
	assert.InDelta(t, 10.0, cfg.Export.MarginMM, 0.001)

	opts := cfg.ExportOptions()
	assert.Equal(t, "LETTER", opts.PageSize)
	assert.True(t, opts.Landscape)
	require.NoError(t, cfg.Validate())

	rl := cfg.RateLimiter()
	assert.True(t, rl.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, rl.EndpointConfigs)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "cvbuilder.json", `{"port": 9090, "chrome": {"timeout": "10s"}}`)
	t.Setenv("CVBUILDER_PORT", "7070")
	t.Setenv("CVBUILDER_CHROME_TIMEOUT", "2m")
	t.Setenv("CVBUILDER_RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.Chrome.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("CVBUILDER_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://fallback/cv")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://fallback/cv", cfg.DatabaseURL)
	assert.Equal(t, Defaults().Port, cfg.Port)
}

func TestLoadConfig_PrefixedDatabaseURLWins(t *testing.T) {
	t.Setenv("CVBUILDER_DATABASE_URL", "postgres://primary/cv")
	t.Setenv("DATABASE_URL", "postgres://fallback/cv")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary/cv", cfg.DatabaseURL)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/cvbuilder.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeFile(t, "cvbuilder.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port out of range", func(c *Config) { c.Port = 70000 }, "port"},
		{"bad log mode", func(c *Config) { c.LogMode = "verbose" }, "log_mode"},
		{"both chrome targets", func(c *Config) {
			c.Chrome.RemoteURL = "ws://x"
			c.Chrome.ExecPath = "/usr/bin/chromium"
		}, "mutually exclusive"},
		{"negative timeout", func(c *Config) { c.Chrome.Timeout = -time.Second }, "non-negative"},
		{"negative retries", func(c *Config) { c.Load.Retries = -1 }, "load"},
		{"negative limit", func(c *Config) { c.RateLimit.DefaultLimit = -5 }, "default_limit"},
		{"bad page size", func(c *Config) { c.Export.PageSize = "B7" }, "page size"},
		{"bad margin", func(c *Config) { c.Export.MarginMM = 80 }, "margin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Defaults()
	defaults.DatabaseURL = "postgres://default/cv"

	partial := Config{
		Port:   9000,
		Chrome: ChromeConfig{ExecPath: "/usr/bin/chromium"},
		Export: ExportConfig{PageSize: "A5"},
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "/usr/bin/chromium", merged.Chrome.ExecPath)
	assert.Empty(t, merged.Chrome.RemoteURL)
	assert.Equal(t, "A5", merged.Export.PageSize)

	// Default values should fill in empty fields
	assert.Equal(t, "postgres://default/cv", merged.DatabaseURL)
	assert.Equal(t, defaults.Chrome.Timeout, merged.Chrome.Timeout)
	assert.Equal(t, defaults.Export.Scale, merged.Export.Scale)
	assert.Equal(t, defaults.Load.Concurrency, merged.Load.Concurrency)
	require.NoError(t, merged.Validate())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Port: 1234, LogMode: "development"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 1234, merged.Port)
	assert.Equal(t, "development", merged.LogMode)
}

func TestExportChrome(t *testing.T) {
	cfg := Defaults()
	cfg.Chrome.RemoteURL = "ws://chrome:9222"
	chrome := cfg.ExportChrome()
	assert.Equal(t, "ws://chrome:9222", chrome.RemoteURL)
	assert.Equal(t, cfg.Chrome.Timeout, chrome.Timeout)
}
