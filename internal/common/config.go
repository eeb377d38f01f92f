// Package common provides shared utilities for Papertrade
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Papertrade
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Clients     ClientsConfig    `toml:"clients"`
	Logging     LoggingConfig    `toml:"logging"`
	Auth        AuthConfig       `toml:"auth"`
	Simulation  SimulationConfig `toml:"simulation"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MarketFeed MarketFeedConfig `toml:"market_feed"`
	Gemini     GeminiConfig     `toml:"gemini"`
}

// MarketFeedConfig holds the market data feed configuration.
type MarketFeedConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketFeedConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// AuthConfig holds JWT authentication configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// SimulationConfig holds the simulator's economic parameters.
type SimulationConfig struct {
	// StartingBalance is the virtual cash seeded to new users.
	StartingBalance float64 `toml:"starting_balance"`

	// HistoryDays is the default length of generated price history.
	HistoryDays int `toml:"history_days"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"`
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			URL:       "ws://localhost:8000/rpc",
			Namespace: "papertrade",
			Database:  "papertrade",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			MarketFeed: MarketFeedConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Simulation: SimulationConfig{
			StartingBalance: 10000,
			HistoryDays:     90,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			FilePath: "./logs/papertrade.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Simulation.StartingBalance <= 0 {
		config.Simulation.StartingBalance = 10000
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PAPERTRADE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PAPERTRADE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PAPERTRADE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PAPERTRADE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("PAPERTRADE_SURREAL_URL"); url != "" {
		config.Storage.URL = url
	}
	if user := os.Getenv("PAPERTRADE_SURREAL_USER"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("PAPERTRADE_SURREAL_PASS"); pass != "" {
		config.Storage.Password = pass
	}

	if v := os.Getenv("PAPERTRADE_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("PAPERTRADE_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}

	if v := os.Getenv("PAPERTRADE_STARTING_BALANCE"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil && b > 0 {
			config.Simulation.StartingBalance = b
		}
	}
}

// ResolveAPIKey resolves an API key from environment with a config fallback.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"market_feed_api_key": {"EODHD_API_KEY", "PAPERTRADE_MARKET_FEED_API_KEY"},
		"gemini_api_key":      {"GEMINI_API_KEY", "PAPERTRADE_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
