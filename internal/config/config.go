// Package config provides configuration loading for scout.
//
// Configuration is project-scoped: it lives in .scout/config.yml at the
// search root, with environment variable overrides.
//
// Configuration hierarchy (highest to lowest priority):
//  1. Environment variables (SCOUT_*)
//  2. Project config (.scout/config.yml)
//  3. Built-in defaults
//
// Environment variable convention:
//   - Prefix: SCOUT_
//   - Nested fields use underscores (SCOUT_ENGINE_IMAGE, SCOUT_LOG_LEVEL)
//   - Automatic mapping via Viper's SetEnvKeyReplacer
package config

import (
	"github.com/mvp-joe/project-scout/internal/engine"
	"github.com/mvp-joe/project-scout/internal/search"
)

// Config represents the complete scout configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
}

// LogConfig configures diagnostic output. Diagnostics always go to stderr;
// stdout is reserved for protocol frames and command output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// EngineConfig configures how the pattern-search engine subprocess is
// launched. The default mode runs the engine inside a docker container;
// setting Command switches to a locally installed engine binary.
type EngineConfig struct {
	Image   string   `yaml:"image" mapstructure:"image"`     // docker image for the containerized mode
	Command string   `yaml:"command" mapstructure:"command"` // non-empty selects the local command mode
	Args    []string `yaml:"args" mapstructure:"args"`       // extra args for the local command
	Env     []string `yaml:"env" mapstructure:"env"`         // extra KEY=VALUE pairs for the subprocess
}

// SearchConfig defines search behavior applied around engine invocations.
type SearchConfig struct {
	Root            string   `yaml:"root" mapstructure:"root"`                         // search root directory; empty means the working directory
	DefaultLanguage string   `yaml:"default_language" mapstructure:"default_language"` // used when a request omits the language
	Exclude         []string `yaml:"exclude" mapstructure:"exclude"`                   // glob patterns filtered out of results
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Engine: EngineConfig{
			Image: engine.DefaultImage,
		},
		Search: SearchConfig{
			DefaultLanguage: search.DefaultLanguage,
			Exclude: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
		},
	}
}

// LaunchOptions converts the engine section into launch options for the
// engine package.
func (c *Config) LaunchOptions() engine.LaunchOptions {
	return engine.LaunchOptions{
		Image:   c.Engine.Image,
		Command: c.Engine.Command,
		Args:    c.Engine.Args,
		Env:     c.Engine.Env,
	}
}
