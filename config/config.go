// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds all runtime configuration.
type Settings struct {
	AnthropicAPIKey string
	Model           string
	MaxTokens       int64
	Temperature     float64

	UserAgent            string
	HTTPTimeout          time.Duration
	HTTPRetryCount       int
	HTTPRetryBackoff     time.Duration
	CacheTTL             time.Duration
	RateLimitMinInterval time.Duration

	NepseAPIBase       string
	AlphaVantageAPIKey string

	DatabasePath string
	ListenAddr   string
	CORSOrigins  string

	CitadelRefreshInterval time.Duration

	LogLevel string
}

// Load reads settings from the environment, consulting a .env file if present.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		Model:           getEnv("CITADEL_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:       int64(getEnvInt("CITADEL_MAX_TOKENS", 4096)),
		Temperature:     getEnvFloat("CITADEL_TEMPERATURE", 0.2),

		UserAgent:            getEnv("USER_AGENT", "Citadel/1.0"),
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		HTTPRetryCount:       getEnvInt("HTTP_RETRY_COUNT", 3),
		HTTPRetryBackoff:     time.Duration(getEnvFloat("HTTP_RETRY_BACKOFF_SECONDS", 0.4) * float64(time.Second)),
		CacheTTL:             time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		RateLimitMinInterval: time.Duration(getEnvFloat("RATE_LIMIT_MIN_INTERVAL", 0.5) * float64(time.Second)),

		NepseAPIBase:       getEnv("NEPSE_API_BASE", "https://nepse-api.example.com/api"),
		AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),

		DatabasePath: getEnv("DATABASE_PATH", "./data/citadel.db"),
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		CORSOrigins:  getEnv("CORS_ORIGINS", ""),

		CitadelRefreshInterval: time.Duration(getEnvInt("CITADEL_REFRESH_INTERVAL_SECONDS", 21600)) * time.Second,

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks required settings.
func (s *Settings) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if s.HTTPRetryCount < 0 {
		return fmt.Errorf("HTTP_RETRY_COUNT must be >= 0")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
