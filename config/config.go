/*
Package config loads process configuration from defaults, an optional YAML
file, and PTO_-prefixed environment variables, in increasing precedence.

PURPOSE:
  One place decides which storage backend is active, where the SQLite file
  lives, how the remote PTO API is reached, and how the language-model
  fallback is configured. The decision is made once at process start; the
  rest of the system only ever sees the storage.Adapter interface.

ENVIRONMENT:
  PTO_PORT                     HTTP port
  PTO_STORAGE_BACKEND          "sqlite" (default) or "remote"
  PTO_STORAGE_SQLITE_PATH      SQLite database path (":memory:" supported)
  PTO_STORAGE_REMOTE_BASE_URL  Remote API base URL
  PTO_STORAGE_REMOTE_API_KEY   Bearer token for the remote API
  PTO_AI_API_KEY               OpenAI-compatible API key (fallback disabled when empty)
  PTO_AI_MODEL                 Chat model name
  PTO_AI_BASE_URL              Override for OpenAI-compatible endpoints
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted for storage.backend.
const (
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Config is the full process configuration.
type Config struct {
	Port    int     `mapstructure:"port"`
	Storage Storage `mapstructure:"storage"`
	AI      AI      `mapstructure:"ai"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
	SQLite  SQLite        `mapstructure:"sqlite"`
	Remote  Remote        `mapstructure:"remote"`
}

// SQLite configures the managed table backend.
type SQLite struct {
	Path string `mapstructure:"path"`
}

// Remote configures the remote-API backend. Each operation maps onto one
// path template; ":id" is substituted for read, update and delete.
type Remote struct {
	BaseURL   string    `mapstructure:"base_url"`
	APIKey    string    `mapstructure:"api_key"`
	Endpoints Endpoints `mapstructure:"endpoints"`
}

// Endpoints holds the per-operation path templates.
type Endpoints struct {
	Create string `mapstructure:"create"`
	Read   string `mapstructure:"read"`
	Update string `mapstructure:"update"`
	Delete string `mapstructure:"delete"`
	List   string `mapstructure:"list"`
}

// AI configures the language-model fallback. An empty APIKey disables it.
type AI struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration. file may be empty; a missing file is not an
// error, only a malformed one is.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Every key must have a registered default, empty or not: Unmarshal only
	// visits known keys, so env-only values would otherwise be dropped.
	v.SetDefault("port", 8080)
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.timeout", 10*time.Second)
	v.SetDefault("storage.sqlite.path", "pto.db")
	v.SetDefault("storage.remote.base_url", "https://api.example.com/pto")
	v.SetDefault("storage.remote.endpoints.create", "/records")
	v.SetDefault("storage.remote.endpoints.read", "/records/:id")
	v.SetDefault("storage.remote.endpoints.update", "/records/:id")
	v.SetDefault("storage.remote.endpoints.delete", "/records/:id")
	v.SetDefault("storage.remote.endpoints.list", "/records")
	v.SetDefault("storage.remote.api_key", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.base_url", "")

	v.SetEnvPrefix("PTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		if _, err := os.Stat(file); err == nil {
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", file, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for the sqlite backend")
		}
	case BackendRemote:
		if c.Storage.Remote.BaseURL == "" {
			return fmt.Errorf("storage.remote.base_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)",
			c.Storage.Backend, BackendSQLite, BackendRemote)
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("storage.timeout must be positive")
	}
	return nil
}
