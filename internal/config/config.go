// Package config loads userapp settings from a TOML or YAML file, applies
// defaults, then lets USERAPP_* environment variables override them.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "USERAPP_"

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds the complete application configuration.
type Config struct {
	HTTP     HTTPConfig     `toml:"http" yaml:"http"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Dispatch DispatchConfig `toml:"dispatch" yaml:"dispatch"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Metrics  MetricsConfig  `toml:"metrics" yaml:"metrics"`
	Admin    AdminConfig    `toml:"admin" yaml:"admin"`
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Addr            string   `toml:"addr" yaml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// DispatchConfig tunes the behavior chain.
type DispatchConfig struct {
	Timeout       Duration `toml:"timeout" yaml:"timeout"`
	RetryAttempts int      `toml:"retry_attempts" yaml:"retry_attempts"`
	RetryBackoff  Duration `toml:"retry_backoff" yaml:"retry_backoff"`
	RateLimit     float64  `toml:"rate_limit" yaml:"rate_limit"`
	RateBurst     int      `toml:"rate_burst" yaml:"rate_burst"`
}

// CacheConfig selects and sizes the query cache.
type CacheConfig struct {
	Backend     string   `toml:"backend" yaml:"backend"`
	Size        int      `toml:"size" yaml:"size"`
	TTL         Duration `toml:"ttl" yaml:"ttl"`
	RedisAddr   string   `toml:"redis_addr" yaml:"redis_addr"`
	RedisPrefix string   `toml:"redis_prefix" yaml:"redis_prefix"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Namespace string `toml:"namespace" yaml:"namespace"`
	Path      string `toml:"path" yaml:"path"`
}

// AdminConfig seeds an administrator at startup when Username is set.
type AdminConfig struct {
	Username   string `toml:"username" yaml:"username"`
	Password   string `toml:"password" yaml:"password"`
	BcryptCost int    `toml:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// Duration wraps time.Duration so it can be written as "250ms" in both
// formats.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads path, applies defaults and environment overrides, and
// validates the result. An empty path skips the file. The format follows
// the extension: .yaml and .yml are YAML, anything else is TOML.
func Load(path string) (*Config, error) {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}

	if path != "" {
		content, err := os.ReadFile(os.ExpandEnv(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(content, path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decode(content []byte, path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return fmt.Errorf("parse toml config: %w", err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout.Duration == 0 {
		c.HTTP.ReadTimeout.Duration = 10 * time.Second
	}
	if c.HTTP.WriteTimeout.Duration == 0 {
		c.HTTP.WriteTimeout.Duration = 30 * time.Second
	}
	if c.HTTP.ShutdownTimeout.Duration == 0 {
		c.HTTP.ShutdownTimeout.Duration = 15 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Dispatch.Timeout.Duration == 0 {
		c.Dispatch.Timeout.Duration = 5 * time.Second
	}
	if c.Dispatch.RetryAttempts == 0 {
		c.Dispatch.RetryAttempts = 3
	}
	if c.Dispatch.RetryBackoff.Duration == 0 {
		c.Dispatch.RetryBackoff.Duration = 100 * time.Millisecond
	}
	if c.Dispatch.RateLimit > 0 && c.Dispatch.RateBurst == 0 {
		c.Dispatch.RateBurst = max(1, int(c.Dispatch.RateLimit))
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = time.Minute
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = "userapp:"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "userapp"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// applyEnv overrides fields from USERAPP_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":          &c.HTTP.Addr,
		"LOG_LEVEL":          &c.Log.Level,
		"LOG_FORMAT":         &c.Log.Format,
		"CACHE_BACKEND":      &c.Cache.Backend,
		"CACHE_REDIS_ADDR":   &c.Cache.RedisAddr,
		"CACHE_REDIS_PREFIX": &c.Cache.RedisPrefix,
		"METRICS_NAMESPACE":  &c.Metrics.Namespace,
		"ADMIN_USERNAME":     &c.Admin.Username,
		"ADMIN_PASSWORD":     &c.Admin.Password,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*Duration{
		"DISPATCH_TIMEOUT": &c.Dispatch.Timeout,
		"CACHE_TTL":        &c.Cache.TTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(EnvPrefix + key); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
		}
	}

	if v, ok := lookup(EnvPrefix + "DISPATCH_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sDISPATCH_RATE_LIMIT: %w", EnvPrefix, err)
		}
		c.Dispatch.RateLimit = f
	}
	if v, ok := lookup(EnvPrefix + "METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS_ENABLED: %w", EnvPrefix, err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}

// Validate checks the configuration for values the app cannot run with.
func (c *Config) Validate() error {
	return validation.Errors{
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
			validation.Field(&c.Log.Format, validation.In("json", "text")),
		),
		"dispatch": validation.ValidateStruct(&c.Dispatch,
			validation.Field(&c.Dispatch.RetryAttempts, validation.Min(1)),
			validation.Field(&c.Dispatch.RateLimit, validation.Min(0.0)),
		),
		"cache": validation.ValidateStruct(&c.Cache,
			validation.Field(&c.Cache.Backend, validation.In(CacheMemory, CacheRedis, CacheNone)),
			validation.Field(&c.Cache.Size, validation.Min(1)),
			validation.Field(&c.Cache.RedisAddr, validation.When(c.Cache.Backend == CacheRedis, validation.Required)),
		),
		"admin": validation.ValidateStruct(&c.Admin,
			validation.Field(&c.Admin.Password, validation.When(c.Admin.Username != "", validation.Required, validation.Length(8, 72))),
		),
	}.Filter()
}

// LogLevel returns the slog level named by Log.Level.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logger builds the process logger described by Log.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
