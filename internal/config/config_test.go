package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "./data/manrura.db")
	t.Setenv("ASSISTANT_TIMEOUT", "30s")
	t.Setenv("TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.Assistant.Timeout)
	assert.False(t, cfg.Assistant.Enabled())

	loc, err := cfg.Locale.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDRESS", "cache:6379")
	t.Setenv("REDIS_PREFIX", "test:")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("SESSION_IDLE_TIMEOUT", "10m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Address)
	assert.Equal(t, "test:", cfg.Storage.Redis.Prefix)
	assert.True(t, cfg.Assistant.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("API_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Assistant.Enabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080},
			Log:       LogConfig{Level: "info"},
			Storage:   StorageConfig{Backend: "memory"},
			Assistant: AssistantConfig{Timeout: time.Second},
			Session:   SessionConfig{IdleTimeout: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "etcd" }, "invalid storage backend"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }, "database DSN is required"},
		{"sqlite without path", func(c *Config) { c.Storage.Backend = "sqlite" }, "sqlite path is required"},
		{"zero timeout", func(c *Config) { c.Assistant.Timeout = 0 }, "invalid assistant timeout"},
		{"bad timezone", func(c *Config) { c.Locale.Timezone = "Mars/Olympus" }, "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
