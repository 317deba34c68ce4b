// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package config loads engine configuration through koanf, layering
// defaults, an optional YAML file, and SMARTLISTS_-prefixed environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"smartlists.yaml",
	"smartlists.yml",
	"/etc/smartlists/config.yaml",
	"/etc/smartlists/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "SMARTLISTS_CONFIG"

// envPrefix prefixes environment overrides, e.g.
// SMARTLISTS_ENGINE_WORKERS=8 sets engine.workers.
const envPrefix = "SMARTLISTS_"

// Config is the engine's full configuration.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Engine EngineConfig `koanf:"engine"`
}

// LogConfig mirrors the logging package's options.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EngineConfig tunes the filtering pipeline.
type EngineConfig struct {
	// Workers bounds the cache-warming pre-pass. 0 means the number of
	// CPUs.
	Workers int `koanf:"workers"`

	// PredicateCacheSize caps the compiled-predicate cache.
	PredicateCacheSize int `koanf:"predicate_cache_size"`

	// IncludeFullyUnwatched lets series with no played episodes yield a
	// next-unwatched episode.
	IncludeFullyUnwatched bool `koanf:"include_fully_unwatched"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			Workers:               0, // runtime.NumCPU() at use
			PredicateCacheSize:    4096,
			IncludeFullyUnwatched: false,
		},
	}
}

// EffectiveWorkers resolves the worker count, defaulting to the CPU count.
func (c *Config) EffectiveWorkers() int {
	if c.Engine.Workers > 0 {
		return c.Engine.Workers
	}
	return runtime.NumCPU()
}

// Load builds the configuration from defaults, the config file at path (or
// the first DefaultConfigPaths hit when path is empty), and environment
// variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path == "" {
		for _, candidate := range DefaultConfigPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative, got %d", c.Engine.Workers)
	}
	if c.Engine.PredicateCacheSize < 0 {
		return fmt.Errorf("engine.predicate_cache_size must not be negative, got %d", c.Engine.PredicateCacheSize)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format %q is not json or console", c.Log.Format)
	}
	return nil
}
