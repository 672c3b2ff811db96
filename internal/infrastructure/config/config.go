// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the link graph server
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Snapshot SnapshotConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects the link store backend. Backend is one of
// "memory", "postgres", "api".
type StoreConfig struct {
	Backend     string
	DatabaseURL string
	APIBaseURL  string
	APITimeout  time.Duration
}

// SnapshotConfig selects the snapshot backend. Backend is one of
// "memory", "postgres", "sqlite", "none".
type SnapshotConfig struct {
	Backend     string
	SQLitePath  string
	Codec       string
	Compression string
	TTL         time.Duration
}

type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnvWithDefault("LINKGRAPH_ADDR", ":8080"),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Backend:     getEnvWithDefault("STORE_BACKEND", "memory"),
			DatabaseURL: getEnvWithDefault("DATABASE_URL", ""),
			APIBaseURL:  getEnvWithDefault("EXERCISE_API_URL", ""),
			APITimeout:  getEnvAsDuration("EXERCISE_API_TIMEOUT", 30*time.Second),
		},
		Snapshot: SnapshotConfig{
			Backend:     getEnvWithDefault("SNAPSHOT_BACKEND", "memory"),
			SQLitePath:  getEnvWithDefault("SNAPSHOT_SQLITE_PATH", "snapshots.db"),
			Codec:       getEnvWithDefault("SNAPSHOT_CODEC", "json"),
			Compression: getEnvWithDefault("SNAPSHOT_COMPRESSION", "gzip"),
			TTL:         getEnvAsDuration("SNAPSHOT_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnvWithDefault("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store backend")
		}
	case "api":
		if c.Store.APIBaseURL == "" {
			return fmt.Errorf("EXERCISE_API_URL is required for the api store backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Snapshot.Backend {
	case "memory", "sqlite", "none":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres snapshot backend")
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}

	switch c.Snapshot.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unknown snapshot codec %q", c.Snapshot.Codec)
	}

	switch c.Snapshot.Compression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("unknown snapshot compression %q", c.Snapshot.Compression)
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
