// Package config loads host settings for programs built on go-action:
// defaults, then an optional config file (yaml, toml or json), then ACTION_*
// environment variables.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dzonerzy/go-action/action"
)

// EnvPrefix is the prefix of environment overrides, e.g. ACTION_LOG_LEVEL
const EnvPrefix = "ACTION"

// Settings holds the loaded configuration
type Settings struct {
	// Definitions is an HCL file describing the command tree (see hcldef)
	Definitions   string             `mapstructure:"definitions"`
	Log           LogSettings        `mapstructure:"log"`
	Suggestions   SuggestionSettings `mapstructure:"suggestions"`
	StrictOptions bool               `mapstructure:"strict_options"`
}

// LogSettings configures the charm logger
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json or logfmt
}

// SuggestionSettings configures "did you mean" hints
type SuggestionSettings struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxDistance int  `mapstructure:"max_distance"`
}

// Default returns the built-in settings
func Default() *Settings {
	return &Settings{
		Log: LogSettings{
			Level:  "warn",
			Format: "text",
		},
		Suggestions: SuggestionSettings{
			Enabled:     true,
			MaxDistance: 2,
		},
	}
}

// Load reads settings. An empty path skips the file layer; a missing file at
// an explicit path is an error.
func Load(path string) (*Settings, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("definitions", defaults.Definitions)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("suggestions.enabled", defaults.Suggestions.Enabled)
	v.SetDefault("suggestions.max_distance", defaults.Suggestions.MaxDistance)
	v.SetDefault("strict_options", defaults.StrictOptions)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks enumerated values
func (s *Settings) Validate() error {
	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", s.Log.Level, err)
	}
	switch s.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log.format %q: must be text, json or logfmt", s.Log.Format)
	}
	if s.Suggestions.MaxDistance < 0 {
		return fmt.Errorf("invalid suggestions.max_distance %d", s.Suggestions.MaxDistance)
	}
	return nil
}

// NewLogger builds a charm logger writing to w according to s
func (s *Settings) NewLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(s.Log.Level)
	if err != nil {
		level = log.WarnLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "action",
		Level:  level,
	})
	switch s.Log.Format {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	return logger
}

// ResolverOptions maps s onto action resolver options, logging to w
func (s *Settings) ResolverOptions(w io.Writer) []action.ResolverOption {
	return []action.ResolverOption{
		action.WithLogger(s.NewLogger(w)),
		action.WithSuggestions(s.Suggestions.Enabled, s.Suggestions.MaxDistance),
	}
}

// DispatcherOptions maps s onto action dispatcher options
func (s *Settings) DispatcherOptions(w io.Writer) []action.DispatcherOption {
	return []action.DispatcherOption{
		action.WithResolver(action.NewResolver(s.ResolverOptions(w)...)),
		action.StrictOptions(s.StrictOptions),
	}
}
