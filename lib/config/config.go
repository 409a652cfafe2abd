// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/transport"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "OIDC_AGENT_CLIENT_CONFIG"

// Config is the client configuration read by oidc-token.
type Config struct {
	// Socket is the oidc-agent socket path. Empty means OIDC_SOCK.
	// ${VAR} and ${VAR:-default} are expanded.
	Socket string `yaml:"socket"`

	// Codec is the wire encoding: "json" or "cbor".
	// Default: json
	Codec string `yaml:"codec"`

	// Lazy skips the reachability check at startup.
	Lazy bool `yaml:"lazy"`

	// LogLevel is a slog level name (debug, info, warn, error).
	// Default: warn
	LogLevel string `yaml:"log_level"`

	// ApplicationHint is sent with every token request unless a flag
	// overrides it.
	ApplicationHint string `yaml:"application_hint"`

	// AccessToken holds defaults for access token requests.
	AccessToken AccessTokenDefaults `yaml:"access_token"`

	// MyToken holds defaults for mytoken requests.
	MyToken MyTokenDefaults `yaml:"mytoken"`
}

// AccessTokenDefaults apply to access token requests when the
// corresponding flag is not given.
type AccessTokenDefaults struct {
	// MinValidPeriod is the minimum remaining lifetime in seconds.
	MinValidPeriod int `yaml:"min_valid_period"`

	Scopes    []string `yaml:"scopes"`
	Audiences []string `yaml:"audiences"`
}

// MyTokenDefaults apply to mytoken requests.
type MyTokenDefaults struct {
	// Profile is a path to a JSON or JSONC mytoken profile document.
	// ${VAR} patterns are expanded.
	Profile string `yaml:"profile"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Codec:    codec.JSON.Name(),
		LogLevel: "warn",
	}
}

// Load loads the file named by OIDC_AGENT_CLIENT_CONFIG. Unlike the
// --config flag, the variable is optional: when it is unset Load
// returns [Default].
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, on top of
// [Default], and expands variables in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Socket = expandVars(c.Socket, vars)
	c.MyToken.Profile = expandVars(c.MyToken.Profile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := codec.Lookup(c.Codec); err != nil {
		errs = append(errs, fmt.Errorf("codec: %w", err))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.AccessToken.MinValidPeriod < 0 {
		errs = append(errs, fmt.Errorf("access_token.min_valid_period must not be negative, got %d", c.AccessToken.MinValidPeriod))
	}

	return errors.Join(errs...)
}

// Resolver returns the socket resolver for this configuration:
// the configured path, or OIDC_SOCK when none is set.
func (c *Config) Resolver() transport.Resolver {
	if c.Socket == "" {
		return transport.DefaultResolver
	}
	return transport.Static(c.Socket)
}

// WireCodec returns the configured codec.
func (c *Config) WireCodec() (codec.Codec, error) {
	return codec.Lookup(c.Codec)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
