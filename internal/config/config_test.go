package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.FlashDuration)
	assert.Equal(t, 2*time.Second, cfg.FormCloseDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.LoginRedirectDelay)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.False(t, cfg.StrictAuth)
	assert.Equal(t, Default(), cfg)
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("TASKDASH_API_URL", " https://tasks.example.com/ ")
	t.Setenv("TASKDASH_FLASH_DURATION", "5s")
	t.Setenv("TASKDASH_STRICT_AUTH", "true")
	t.Setenv("TASKDASH_LOG_LEVEL", "DEBUG")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.FlashDuration)
	assert.True(t, cfg.StrictAuth)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestParse_InvalidDuration(t *testing.T) {
	t.Setenv("TASKDASH_FLASH_DURATION", "soon")

	_, err := Parse()
	require.Error(t, err)
}

func TestSanitize_Guardrails(t *testing.T) {
	cfg := Config{FlashDuration: -time.Second, FormCloseDelay: -time.Second, HTTPTimeout: -1}
	cfg.Sanitize()

	assert.Equal(t, 3*time.Second, cfg.FlashDuration)
	assert.Equal(t, time.Duration(0), cfg.FormCloseDelay)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}
