// Package config loads the fbdialect CLI configuration.
//
// Sources are layered, lowest precedence first: built-in defaults,
// fbdialect.yaml, a .env file, FBDIALECT_ environment variables and
// explicitly set command-line flags. A connection URL, when given, overrides
// the individual target fields.
package config

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird"
)

// Config holds all CLI configuration options.
type Config struct {
	// URL is a firebird:// connection URL. Fields it sets win over Target.
	URL    string                    `koanf:"url"`
	Target firebird.ConnectionConfig `koanf:"target"`

	TimeZone        string `koanf:"timezone"`
	ShowWarnings    bool   `koanf:"show_warnings"`
	ConnectAttempts int    `koanf:"connect_attempts"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Options returns the dialect-level options.
func (c *Config) Options() firebird.Options {
	return firebird.Options{ShowWarnings: c.ShowWarnings, TimeZone: c.TimeZone}
}

// Default configuration values.
const (
	ConfigFileName         = "fbdialect.yaml"
	ConfigFileNameAlt      = "fbdialect.yml"
	EnvFileName            = ".env"
	EnvPrefix              = "FBDIALECT_"
	DefaultOutput          = "auto" // TTY=table, non-TTY=markdown
	DefaultConnectAttempts = 3
)

type (
	configKey struct{}
	loggerKey struct{}
)

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config stored by WithConfig. Without one it
// returns a config holding only defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{OutputFormat: DefaultOutput, ConnectAttempts: DefaultConnectAttempts}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
