package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", s.Model)
	assert.EqualValues(t, 4096, s.MaxTokens)
	assert.Equal(t, 30*time.Second, s.HTTPTimeout)
	assert.Equal(t, 3, s.HTTPRetryCount)
	assert.Equal(t, 500*time.Millisecond, s.RateLimitMinInterval)
	assert.Equal(t, ":8080", s.ListenAddr)
	assert.Equal(t, 6*time.Hour, s.CitadelRefreshInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CITADEL_MODEL", "claude-opus-4-1-20250805")
	t.Setenv("HTTP_RETRY_COUNT", "5")
	t.Setenv("RATE_LIMIT_MIN_INTERVAL", "0.25")
	t.Setenv("CORS_ORIGINS", "https://app.example.com")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1-20250805", s.Model)
	assert.Equal(t, 5, s.HTTPRetryCount)
	assert.Equal(t, 250*time.Millisecond, s.RateLimitMinInterval)
	assert.Equal(t, "https://app.example.com", s.CORSOrigins)
}

func TestValidate(t *testing.T) {
	s := &Settings{DatabasePath: ""}
	require.Error(t, s.Validate())

	s = &Settings{DatabasePath: "x.db", HTTPRetryCount: -1}
	require.Error(t, s.Validate())

	s = &Settings{DatabasePath: "x.db"}
	require.NoError(t, s.Validate())
}
