// Package config provides configuration management for Unsaid.
// It loads settings from environment variables with the UNSAID_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the Unsaid coach.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Remote   RemoteConfig
	Coach    CoachConfig
	Features FeaturesConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7171)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains profile storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, memory (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
}

// RemoteConfig contains the optional remote enhancement endpoint settings.
// An empty endpoint disables enhancement entirely.
type RemoteConfig struct {
	Endpoint          string        // Enhancement endpoint URL (default: "" = disabled)
	APIKey            string        // Bearer token for the endpoint
	Timeout           time.Duration // Per-call timeout (default: 3s)
	RequestsPerMinute int           // Outbound call cap (default: 30)
}

// CoachConfig contains pipeline tuning knobs.
type CoachConfig struct {
	CacheSize int // Analysis cache entries (default: 256)
	Workers   int // Candidate source fan-out; 0 runs sources sequentially (default: 4)
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	EnableWebSocket bool // Enable live suggestion stream (default: true)
	EnableRemote    bool // Allow remote enhancement when an endpoint is set (default: true)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the UNSAID_ prefix.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("UNSAID_PORT", 7171),
			Host: getEnv("UNSAID_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("UNSAID_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("UNSAID_DATA_PATH", "./data"),
		},
		Remote: RemoteConfig{
			Endpoint:          getEnv("UNSAID_REMOTE_ENDPOINT", ""),
			APIKey:            getEnv("UNSAID_REMOTE_API_KEY", ""),
			Timeout:           getEnvDuration("UNSAID_REMOTE_TIMEOUT", 3*time.Second),
			RequestsPerMinute: getEnvInt("UNSAID_REMOTE_REQUESTS_PER_MINUTE", 30),
		},
		Coach: CoachConfig{
			CacheSize: getEnvInt("UNSAID_CACHE_SIZE", 256),
			Workers:   getEnvInt("UNSAID_WORKERS", 4),
		},
		Features: FeaturesConfig{
			EnableWebSocket: getEnvBool("UNSAID_ENABLE_WEBSOCKET", true),
			EnableRemote:    getEnvBool("UNSAID_ENABLE_REMOTE", true),
		},
	}
	return cfg, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// Accepts the forms strconv.ParseBool accepts (1, t, true, 0, f, false, ...).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable ("3s", "500ms") or
// returns a default value when missing or unparseable.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
