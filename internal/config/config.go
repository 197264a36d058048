// Package config provides configuration loading and validation for the CV builder.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
)

// EnvPrefix prefixes every environment variable read by LoadConfig,
// e.g. CVBUILDER_PORT or CVBUILDER_CHROME_REMOTE_URL.
const EnvPrefix = "CVBUILDER"

// Config represents the service configuration. It can be loaded from a YAML,
// JSON or TOML file and overridden by environment variables.
type Config struct {
	DatabaseURL string `mapstructure:"database_url"` // PostgreSQL connection URL
	Port        int    `mapstructure:"port"`         // HTTP listen port
	LogMode     string `mapstructure:"log_mode"`     // development or production
	LogLevel    string `mapstructure:"log_level"`    // debug, info, warn, error

	Chrome    ChromeConfig    `mapstructure:"chrome"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Export    ExportConfig    `mapstructure:"export"`
	Load      LoadSettings    `mapstructure:"load"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ChromeConfig selects the headless browser used for export.
type ChromeConfig struct {
	RemoteURL string        `mapstructure:"remote_url"` // DevTools websocket of a running browser
	ExecPath  string        `mapstructure:"exec_path"`  // Local browser binary
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the export cache. An empty URL disables caching.
type RedisConfig struct {
	URL       string        `mapstructure:"url"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// ExportConfig holds the default page setup.
type ExportConfig struct {
	PageSize     string  `mapstructure:"page_size"`
	Landscape    bool    `mapstructure:"landscape"`
	MarginMM     float64 `mapstructure:"margin_mm"`
	ImageQuality float64 `mapstructure:"image_quality"`
	Scale        float64 `mapstructure:"scale"`
}

// LoadSettings tunes how CV sections are read.
type LoadSettings struct {
	Concurrency int           `mapstructure:"concurrency"`
	Retries     int           `mapstructure:"retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       string        `mapstructure:"whitelist"` // comma-separated IPs
	Blacklist       string        `mapstructure:"blacklist"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	opts := export.DefaultOptions()
	rl := ratelimit.DefaultConfig()
	return Config{
		Port:     8080,
		LogMode:  "production",
		LogLevel: "info",
		Chrome:   ChromeConfig{Timeout: export.DefaultTimeout},
		Redis:    RedisConfig{TTL: export.DefaultCacheTTL, KeyPrefix: "cvbuilder:pdf:"},
		Export: ExportConfig{
			PageSize:     opts.PageSize,
			Landscape:    opts.Landscape,
			MarginMM:     opts.MarginMM,
			ImageQuality: opts.ImageQuality,
			Scale:        opts.Scale,
		},
		Load: LoadSettings{Concurrency: 4, Retries: 3, RetryDelay: time.Second},
		RateLimit: RateLimitConfig{
			Enabled:         rl.Enabled,
			DefaultLimit:    rl.DefaultLimit,
			DefaultWindow:   rl.DefaultWindow,
			CleanupInterval: rl.CleanupInterval,
		},
	}
}

// LoadConfig reads configuration from path (optional) and CVBUILDER_*
// environment variables, in increasing order of precedence. DATABASE_URL is
// honored when CVBUILDER_DATABASE_URL is unset.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_mode", d.LogMode)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("chrome.remote_url", d.Chrome.RemoteURL)
	v.SetDefault("chrome.exec_path", d.Chrome.ExecPath)
	v.SetDefault("chrome.timeout", d.Chrome.Timeout)

	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("redis.ttl", d.Redis.TTL)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("export.page_size", d.Export.PageSize)
	v.SetDefault("export.landscape", d.Export.Landscape)
	v.SetDefault("export.margin_mm", d.Export.MarginMM)
	v.SetDefault("export.image_quality", d.Export.ImageQuality)
	v.SetDefault("export.scale", d.Export.Scale)

	v.SetDefault("load.concurrency", d.Load.Concurrency)
	v.SetDefault("load.retries", d.Load.Retries)
	v.SetDefault("load.retry_delay", d.Load.RetryDelay)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.default_limit", d.RateLimit.DefaultLimit)
	v.SetDefault("rate_limit.default_window", d.RateLimit.DefaultWindow)
	v.SetDefault("rate_limit.cleanup_interval", d.RateLimit.CleanupInterval)
	v.SetDefault("rate_limit.whitelist", d.RateLimit.Whitelist)
	v.SetDefault("rate_limit.blacklist", d.RateLimit.Blacklist)
}

// Validate checks that the configuration has valid values.
// DatabaseURL is not required here; commands that need it check for it.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	switch c.LogMode {
	case "", "development", "production":
	default:
		return fmt.Errorf("config error: 'log_mode' must be development or production, got %q", c.LogMode)
	}
	if c.Chrome.RemoteURL != "" && c.Chrome.ExecPath != "" {
		return fmt.Errorf("config error: 'chrome.remote_url' and 'chrome.exec_path' are mutually exclusive")
	}
	if c.Chrome.Timeout < 0 || c.Redis.TTL < 0 || c.Load.RetryDelay < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}
	if c.Load.Concurrency < 0 || c.Load.Retries < 0 {
		return fmt.Errorf("config error: 'load' values must be non-negative")
	}
	if c.RateLimit.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit.default_limit' must be non-negative")
	}
	if err := c.ExportOptions().Validate(); err != nil {
		return fmt.Errorf("config error: export: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// Bool fields cannot distinguish unset from false and are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	if result.Chrome.RemoteURL == "" && result.Chrome.ExecPath == "" {
		result.Chrome.RemoteURL = defaults.Chrome.RemoteURL
		result.Chrome.ExecPath = defaults.Chrome.ExecPath
	}
	if result.Chrome.Timeout == 0 {
		result.Chrome.Timeout = defaults.Chrome.Timeout
	}

	if result.Redis.URL == "" {
		result.Redis.URL = defaults.Redis.URL
	}
	if result.Redis.TTL == 0 {
		result.Redis.TTL = defaults.Redis.TTL
	}
	if result.Redis.KeyPrefix == "" {
		result.Redis.KeyPrefix = defaults.Redis.KeyPrefix
	}

	if result.Export.PageSize == "" {
		result.Export.PageSize = defaults.Export.PageSize
	}
	if result.Export.MarginMM == 0 {
		result.Export.MarginMM = defaults.Export.MarginMM
	}
	if result.Export.ImageQuality == 0 {
		result.Export.ImageQuality = defaults.Export.ImageQuality
	}
	if result.Export.Scale == 0 {
		result.Export.Scale = defaults.Export.Scale
	}

	if result.Load.Concurrency == 0 {
		result.Load.Concurrency = defaults.Load.Concurrency
	}
	if result.Load.Retries == 0 {
		result.Load.Retries = defaults.Load.Retries
	}
	if result.Load.RetryDelay == 0 {
		result.Load.RetryDelay = defaults.Load.RetryDelay
	}

	if result.RateLimit.DefaultLimit == 0 {
		result.RateLimit.DefaultLimit = defaults.RateLimit.DefaultLimit
	}
	if result.RateLimit.DefaultWindow == 0 {
		result.RateLimit.DefaultWindow = defaults.RateLimit.DefaultWindow
	}
	if result.RateLimit.CleanupInterval == 0 {
		result.RateLimit.CleanupInterval = defaults.RateLimit.CleanupInterval
	}

	return result
}

// ExportOptions returns the configured page setup.
func (c *Config) ExportOptions() export.Options {
	opts := export.DefaultOptions()
	opts.PageSize = strings.ToUpper(c.Export.PageSize)
	opts.Landscape = c.Export.Landscape
	opts.MarginMM = c.Export.MarginMM
	opts.ImageQuality = c.Export.ImageQuality
	opts.Scale = c.Export.Scale
	return opts
}

// ExportChrome returns the browser settings for the exporter.
func (c *Config) ExportChrome() export.ChromeConfig {
	return export.ChromeConfig{
		RemoteURL: c.Chrome.RemoteURL,
		ExecPath:  c.Chrome.ExecPath,
		Timeout:   c.Chrome.Timeout,
	}
}

// RateLimiter returns the limiter configuration with the default endpoint tiers.
func (c *Config) RateLimiter() *ratelimit.Config {
	return &ratelimit.Config{
		Enabled:         c.RateLimit.Enabled,
		DefaultLimit:    c.RateLimit.DefaultLimit,
		DefaultWindow:   c.RateLimit.DefaultWindow,
		CleanupInterval: c.RateLimit.CleanupInterval,
		Whitelist:       ratelimit.ParseIPList(c.RateLimit.Whitelist),
		Blacklist:       ratelimit.ParseIPList(c.RateLimit.Blacklist),
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
	}
}
