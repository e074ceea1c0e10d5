package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all configuration for manrura
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	Catalog   CatalogConfig
	Assistant AssistantConfig
	Session   SessionConfig
	Locale    LocaleConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
}

// StorageConfig selects and configures the snapshot backend
type StorageConfig struct {
	Backend    string
	SQLitePath string
	Database   DatabaseConfig
	Redis      RedisConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	DSN           string
	Table         string
	MigrationsDir string
	MaxConns      int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// CatalogConfig points at an optional catalog override
type CatalogConfig struct {
	Path string
}

// AssistantConfig holds the chat assistant settings
type AssistantConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether a credential is configured
func (a AssistantConfig) Enabled() bool {
	return a.APIKey != ""
}

// SessionConfig holds navigation session settings
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// LocaleConfig holds the hospital's local calendar settings
type LocaleConfig struct {
	Timezone string
}

// Location resolves the configured timezone
func (l LocaleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

var validBackends = map[string]bool{
	"memory":   true,
	"sqlite":   true,
	"postgres": true,
	"redis":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(getEnv("STORAGE_BACKEND", "sqlite")),
			SQLitePath: getEnv("SQLITE_PATH", "./data/manrura.db"),
			Database: DatabaseConfig{
				DSN:           getEnv("DATABASE_DSN", ""),
				Table:         getEnv("DATABASE_TABLE", "manrura_state"),
				MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", ""),
				MaxConns:      getEnvAsInt("DATABASE_MAX_CONNS", 10),
			},
			Redis: RedisConfig{
				Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
				Prefix:   getEnv("REDIS_PREFIX", ""),
			},
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
		Assistant: AssistantConfig{
			APIKey:  getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: getEnvAsDuration("ASSISTANT_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			IdleTimeout:   getEnvAsDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Locale: LocaleConfig{
			Timezone: getEnv("TIMEZONE", "Asia/Jakarta"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.Log.Level))
	}

	if !validBackends[c.Storage.Backend] {
		errs = append(errs, fmt.Errorf("invalid storage backend: %q", c.Storage.Backend))
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite path is required"))
		}
	case "postgres":
		if c.Storage.Database.DSN == "" {
			errs = append(errs, errors.New("database DSN is required"))
		}
	case "redis":
		if c.Storage.Redis.Address == "" {
			errs = append(errs, errors.New("redis address is required"))
		}
	}

	if c.Assistant.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid assistant timeout: %s", c.Assistant.Timeout))
	}

	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid session idle timeout: %s", c.Session.IdleTimeout))
	}

	if _, err := c.Locale.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
