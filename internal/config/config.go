// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package config loads TalentMesh configuration from a YAML file and
// command-line flags, flags taking precedence.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the resolved runtime configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Audit    AuditConfig    `koanf:"audit"`
	Auth     AuthConfig     `koanf:"auth"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Format string `koanf:"format"` // "json" (default) or "text"
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
}

// AuditConfig selects which policy decisions the audit sink records.
type AuditConfig struct {
	Mode string `koanf:"mode"` // "denials" (default) or "all"
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	Secret string `koanf:"secret"`
	Issuer string `koanf:"issuer"`
}

// defaults returns the baseline configuration before any file or flag.
func defaults() Config {
	return Config{
		Log:   LogConfig{Format: "json", Level: "info"},
		Audit: AuditConfig{Mode: "denials"},
		Auth:  AuthConfig{Issuer: "talentmesh"},
	}
}

// Load reads configuration from an optional YAML file and the given
// flag set. An empty path skips the file layer entirely; a named file
// that cannot be read is an error rather than silently ignored.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}
	return cfg, nil
}

// Validate checks the settings a command is about to rely on.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	switch c.Audit.Mode {
	case "denials", "all":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("audit.mode must be \"denials\" or \"all\", got %q", c.Audit.Mode)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format)
	}
	return nil
}
