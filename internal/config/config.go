// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

// Package config loads service configuration from a YAML file,
// environment variables, and command line flags. Later sources
// override earlier ones: defaults < file < env < flags.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds all runtime configuration for the service.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	ServerAddr  string `koanf:"server_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	JWTSecret   string `koanf:"jwt_secret"`
	APIKey      string `koanf:"api_key"`
	LogFormat   string `koanf:"log_format"`
}

// envKeys are the environment variables the loader recognizes,
// mapped to their configuration keys.
var envKeys = map[string]string{
	"DATABASE_URL": "database_url",
	"SERVER_ADDR":  "server_addr",
	"METRICS_ADDR": "metrics_addr",
	"JWT_SECRET":   "jwt_secret",
	"API_KEY":      "api_key",
	"LOG_FORMAT":   "log_format",
}

// Load builds a Config from the optional YAML file at path, the
// process environment, and the given flag set. Either path or flags
// may be empty/nil. The result is validated before being returned.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// Unprefixed variables; unknown names are dropped by the callback.
	envProvider := env.Provider("", ".", func(s string) string {
		return envKeys[strings.ToUpper(s)]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		MetricsAddr: "127.0.0.1:9091",
		LogFormat:   "json",
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required settings are present.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"database_url", c.DatabaseURL},
		{"server_addr", c.ServerAddr},
		{"jwt_secret", c.JWTSecret},
		{"api_key", c.APIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return oops.Code("CONFIG_MISSING").
				With("key", r.key).
				Errorf("configuration value %q is required", r.key)
		}
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("key", "log_format").
			With("value", c.LogFormat).
			Errorf("log_format must be json or text")
	}
	return nil
}
