package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents the typegraph configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Store  StoreConfig  `mapstructure:"store"`
}

// ServerConfig represents the introspection API server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig represents bearer token authentication configuration.
// An empty secret disables authentication.
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// CacheConfig represents the optional Redis response cache configuration.
// An empty address disables the cache.
type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// StoreConfig represents the scan result store configuration.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Load loads the configuration from typegraph.yaml in the working
// directory, falling back to defaults when no config file exists.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 7180)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "typegraph.db")

	// Set config name and paths
	v.SetConfigName("typegraph")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetStoreDSN returns the store connection string, preferring the
// TYPEGRAPH_STORE_DSN environment variable over the config file.
func GetStoreDSN(cfg *Config) string {
	if dsn := os.Getenv("TYPEGRAPH_STORE_DSN"); dsn != "" {
		return dsn
	}
	return cfg.Store.DSN
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	switch cfg.Store.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("store.driver must be %q or %q, got: %q", "sqlite3", "pgx", cfg.Store.Driver)
	}
	if cfg.Store.DSN == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}
	return nil
}
