package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "scrapekit/"+Version, cfg.HTTP.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.HTTP.FollowRedirects)
	assert.False(t, cfg.HTTP.RaiseHTTPErrors)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.Wait)
	assert.False(t, cfg.Retry.RetryOn404)
	assert.Empty(t, cfg.Cache.Backend)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	content := `
http:
  user_agent: "custom-agent/1.0"
  timeout: 10s
  raise_http_errors: true
rate_limit:
  requests_per_minute: 30
retry:
  attempts: 5
  wait: 2s
  retry_on_404: true
cache:
  backend: file
  dir: /tmp/scrapekit-cache
  write_only: true
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "custom-agent/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.HTTP.RaiseHTTPErrors)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.Wait)
	assert.True(t, cfg.Retry.RetryOn404)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "/tmp/scrapekit-cache", cfg.Cache.Dir)
	assert.True(t, cfg.Cache.WriteOnly)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFileMissingDefaultIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	// chdir into an empty dir so no default config file is found
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	require.NoError(t, cfg.LoadFromFile(""))
}

func TestLoadFromFileExplicitMissingIsAnError(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPEKIT_USER_AGENT", "env-agent")
	t.Setenv("SCRAPEKIT_REQUESTS_PER_MINUTE", "10")
	t.Setenv("SCRAPEKIT_RETRY_ATTEMPTS", "7")
	t.Setenv("SCRAPEKIT_RETRY_WAIT", "250ms")
	t.Setenv("SCRAPEKIT_TIMEOUT", "5s")
	t.Setenv("SCRAPEKIT_CACHE_BACKEND", "memory")
	t.Setenv("SCRAPEKIT_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-agent", cfg.HTTP.UserAgent)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 7, cfg.Retry.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Wait)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("SCRAPEKIT_REQUESTS_PER_MINUTE", "not-a-number")
	t.Setenv("SCRAPEKIT_RETRY_WAIT", "eleven")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 5*time.Second, cfg.Retry.Wait)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"negative rpm", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }, true},
		{"negative attempts", func(c *Config) { c.Retry.Attempts = -1 }, true},
		{"negative wait", func(c *Config) { c.Retry.Wait = -time.Second }, true},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, true},
		{"negative max redirects", func(c *Config) { c.HTTP.MaxRedirects = -1 }, true},
		{"memory backend", func(c *Config) { c.Cache.Backend = "memory" }, false},
		{"file backend without dir", func(c *Config) { c.Cache.Backend = "file" }, true},
		{"file backend with dir", func(c *Config) {
			c.Cache.Backend = "file"
			c.Cache.Dir = "/tmp/cache"
		}, false},
		{"sqlite backend without path", func(c *Config) { c.Cache.Backend = "sqlite" }, true},
		{"redis backend without addr", func(c *Config) { c.Cache.Backend = "redis" }, true},
		{"redis backend with addr", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.Addr = "localhost:6379"
		}, false},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "mongodb" }, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
