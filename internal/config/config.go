// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage (image attachments). Optional.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// LLM provider credentials. A provider with an empty key is unavailable.
	AnthropicKey         string
	AnthropicModel       string // text-only turns
	AnthropicVisionModel string // turns with an image attached
	AnthropicBaseURL     string
	OpenAIKey            string
	OpenAIModel          string
	OpenAIVisionModel    string
	OpenAIBaseURL        string

	// LLM call policy.
	AITimeout    time.Duration
	AIMaxRetries int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "listingleads"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "listingleads"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "listingleads-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		AnthropicKey:         os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:       envOrDefault("ANTHROPIC_MODEL", "claude-haiku-4-5"),
		AnthropicVisionModel: envOrDefault("ANTHROPIC_VISION_MODEL", "claude-sonnet-4-6"),
		AnthropicBaseURL:     os.Getenv("ANTHROPIC_BASE_URL"),
		OpenAIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel:    envOrDefault("OPENAI_VISION_MODEL", "gpt-4o"),
		OpenAIBaseURL:        os.Getenv("OPENAI_BASE_URL"),

		AITimeout:    envDuration("AI_TIMEOUT", 60*time.Second),
		AIMaxRetries: envInt("AI_MAX_RETRIES", 2),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AnthropicKey == "" && cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("at least one of ANTHROPIC_API_KEY or OPENAI_API_KEY must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration reads a duration environment variable (e.g. "30s").
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envInt reads an integer environment variable.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
