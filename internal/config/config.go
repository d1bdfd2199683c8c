// Package config loads client settings from the environment.
//
// Values come from TASKDASH_* environment variables (optionally seeded from a
// .env file) via github.com/caarlos0/env. Command-line flags override them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// APIURL is the remote task service base URL.
	APIURL string `env:"API_URL" envDefault:"http://localhost:5000"`

	// ConfigDir overrides where local storage lives (default ~/.taskdash).
	ConfigDir string `env:"CONFIG_DIR"`

	// FlashDuration is how long dashboard status/error messages stay visible.
	FlashDuration time.Duration `env:"FLASH_DURATION" envDefault:"3s"`

	// FormCloseDelay is the success-state pause before the edit form closes.
	FormCloseDelay time.Duration `env:"FORM_CLOSE_DELAY" envDefault:"2s"`

	LoginRedirectDelay    time.Duration `env:"LOGIN_REDIRECT_DELAY" envDefault:"1500ms"`
	RegisterRedirectDelay time.Duration `env:"REGISTER_REDIRECT_DELAY" envDefault:"2s"`

	// HTTPTimeout of 0 keeps the transport default (no client-side timeout).
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
	// LogFile receives logs in the interactive UI; empty discards them.
	LogFile string `env:"LOG_FILE"`

	// StrictAuth treats 401/403 responses as a dead session instead of a
	// generic failure.
	StrictAuth bool `env:"STRICT_AUTH" envDefault:"false"`
}

const envPrefix = "TASKDASH_"

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() Config {
	cfg := Config{
		APIURL:                "http://localhost:5000",
		FlashDuration:         3 * time.Second,
		FormCloseDelay:        2 * time.Second,
		LoginRedirectDelay:    1500 * time.Millisecond,
		RegisterRedirectDelay: 2 * time.Second,
		LogLevel:              "warn",
	}
	cfg.Sanitize()
	return cfg
}

// Sanitize applies guardrails to values loaded from env or flags.
func (c *Config) Sanitize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.ConfigDir = strings.TrimSpace(c.ConfigDir)
	if c.FlashDuration <= 0 {
		c.FlashDuration = 3 * time.Second
	}
	if c.FormCloseDelay < 0 {
		c.FormCloseDelay = 0
	}
	if c.LoginRedirectDelay < 0 {
		c.LoginRedirectDelay = 0
	}
	if c.RegisterRedirectDelay < 0 {
		c.RegisterRedirectDelay = 0
	}
	if c.HTTPTimeout < 0 {
		c.HTTPTimeout = 0
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// SlogLevel maps LogLevel onto slog; unknown values mean warn.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
