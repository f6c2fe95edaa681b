package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the request pipeline
type Config struct {
	// HTTP settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HTTPConfig holds settings passed through to the transport layer
type HTTPConfig struct {
	UserAgent          string        `yaml:"user_agent" json:"user_agent"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout"`
	FollowRedirects    bool          `yaml:"follow_redirects" json:"follow_redirects"`
	// MaxRedirects bounds the redirect chain (0 uses the transport default)
	MaxRedirects       int           `yaml:"max_redirects" json:"max_redirects"`
	RaiseHTTPErrors    bool          `yaml:"raise_http_errors" json:"raise_http_errors"`
	DisableCompression bool          `yaml:"disable_compression" json:"disable_compression"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerMinute of 0 disables throttling
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	// Attempts is the total attempt budget per logical request
	Attempts int `yaml:"attempts" json:"attempts"`
	// Wait is the backoff before the first retry; it doubles each retry
	Wait time.Duration `yaml:"wait" json:"wait"`
	// MaxWait caps the backoff schedule (0 means no cap)
	MaxWait time.Duration `yaml:"max_wait" json:"max_wait"`
	// RetryOn404 retries 404 responses, for pages known to exist
	RetryOn404 bool `yaml:"retry_on_404" json:"retry_on_404"`
}

// CacheConfig selects and configures a cache backend
type CacheConfig struct {
	// Backend is one of "", "memory", "file", "sqlite", "redis"
	Backend string `yaml:"backend" json:"backend"`
	// Dir is the root directory for the file backend
	Dir string `yaml:"dir" json:"dir"`
	// Path is the database file for the sqlite backend
	Path string `yaml:"path" json:"path"`
	// Addr is the server address for the redis backend
	Addr string `yaml:"addr" json:"addr"`
	// TTL bounds entry lifetime on backends that support expiry
	TTL time.Duration `yaml:"ttl" json:"ttl"`
	// MaxEntries bounds the memory backend (0 means unbounded)
	MaxEntries int `yaml:"max_entries" json:"max_entries"`
	// WriteOnly stores fresh results but never serves from cache
	WriteOnly bool `yaml:"write_only" json:"write_only"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Version is the library version reported in the default User-Agent.
const Version = "1.0.0"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:       "scrapekit/" + Version,
			Timeout:         30 * time.Second,
			FollowRedirects: true,
			RaiseHTTPErrors: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Retry: RetryConfig{
			Attempts: 3,
			Wait:     5 * time.Second,
			MaxWait:  0,
		},
		Cache: CacheConfig{
			Backend: "",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration overrides from environment variables,
// reading a .env file first if one is present.
func (c *Config) LoadFromEnv() error {
	// ignore missing .env, same as no overrides
	_ = godotenv.Load()

	if ua := os.Getenv("SCRAPEKIT_USER_AGENT"); ua != "" {
		c.HTTP.UserAgent = ua
	}
	if rpm := os.Getenv("SCRAPEKIT_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val >= 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if attempts := os.Getenv("SCRAPEKIT_RETRY_ATTEMPTS"); attempts != "" {
		if val, err := strconv.Atoi(attempts); err == nil && val >= 0 {
			c.Retry.Attempts = val
		}
	}
	if wait := os.Getenv("SCRAPEKIT_RETRY_WAIT"); wait != "" {
		if d, err := time.ParseDuration(wait); err == nil {
			c.Retry.Wait = d
		}
	}
	if timeout := os.Getenv("SCRAPEKIT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.HTTP.Timeout = d
		}
	}
	if backend := os.Getenv("SCRAPEKIT_CACHE_BACKEND"); backend != "" {
		c.Cache.Backend = backend
	}
	if dir := os.Getenv("SCRAPEKIT_CACHE_DIR"); dir != "" {
		c.Cache.Dir = dir
	}
	if addr := os.Getenv("SCRAPEKIT_CACHE_ADDR"); addr != "" {
		c.Cache.Addr = addr
	}
	if level := os.Getenv("SCRAPEKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. An empty path
// checks the default locations and is not an error if none exist.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func findConfigFile() string {
	candidates := []string{
		"scrapekit.yaml",
		".scrapekit.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "scrapekit", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds a Config from defaults, an optional YAML file, and
// environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must be >= 0, got %d",
			c.RateLimit.RequestsPerMinute)
	}
	if c.Retry.Attempts < 0 {
		return fmt.Errorf("retry attempts must be >= 0, got %d", c.Retry.Attempts)
	}
	if c.Retry.Wait < 0 {
		return fmt.Errorf("retry wait must be >= 0, got %v", c.Retry.Wait)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.HTTP.Timeout)
	}
	if c.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must be >= 0, got %d", c.HTTP.MaxRedirects)
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", "memory":
	case "file":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache backend %q requires dir", c.Cache.Backend)
		}
	case "sqlite":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache backend %q requires path", c.Cache.Backend)
		}
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache backend %q requires addr", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	return nil
}
