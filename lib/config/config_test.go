// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oidc-token.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Codec != "json" {
		t.Errorf("expected codec=json, got %s", cfg.Codec)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log_level=warn, got %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadWithoutEnvironment(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Codec != "json" || cfg.Socket != "" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, "socket: /run/oidc/agent.sock\ncodec: cbor\n")
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Socket != "/run/oidc/agent.sock" || cfg.Codec != "cbor" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
socket: /tmp/oidc-x/oidc-agent.42
lazy: true
log_level: debug
application_hint: ci-runner
access_token:
  min_valid_period: 120
  scopes: [openid, profile]
  audiences:
    - https://storage.example.org
mytoken:
  profile: /etc/oidc/profile.jsonc
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Socket != "/tmp/oidc-x/oidc-agent.42" {
		t.Errorf("socket = %s", cfg.Socket)
	}
	if !cfg.Lazy {
		t.Error("expected lazy=true")
	}
	if cfg.Codec != "json" {
		t.Errorf("codec default not kept: %s", cfg.Codec)
	}
	if cfg.ApplicationHint != "ci-runner" {
		t.Errorf("application_hint = %s", cfg.ApplicationHint)
	}
	if cfg.AccessToken.MinValidPeriod != 120 {
		t.Errorf("min_valid_period = %d", cfg.AccessToken.MinValidPeriod)
	}
	if !slices.Equal(cfg.AccessToken.Scopes, []string{"openid", "profile"}) {
		t.Errorf("scopes = %v", cfg.AccessToken.Scopes)
	}
	if !slices.Equal(cfg.AccessToken.Audiences, []string{"https://storage.example.org"}) {
		t.Errorf("audiences = %v", cfg.AccessToken.Audiences)
	}
	if cfg.MyToken.Profile != "/etc/oidc/profile.jsonc" {
		t.Errorf("mytoken.profile = %s", cfg.MyToken.Profile)
	}

	level, err := cfg.Level()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Level() = %v, %v", level, err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}

	path := writeConfig(t, "socket: [unterminated\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("malformed file error = %v", err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("OIDC_TEST_RUNTIME", "/run/user/1000")
	t.Setenv("OIDC_TEST_UNSET", "")

	vars := map[string]string{"HOME": "/home/tester"}
	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/.config/oidc", "/home/tester/.config/oidc"},
		{"${OIDC_TEST_RUNTIME}/oidc-agent.sock", "/run/user/1000/oidc-agent.sock"},
		{"${OIDC_TEST_UNSET:-/tmp/fallback.sock}", "/tmp/fallback.sock"},
		{"${OIDC_TEST_UNSET}", ""},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestLoadFileExpandsPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("OIDC_TEST_RUNTIME", "/run/user/1000")
	path := writeConfig(t, `
socket: ${OIDC_TEST_RUNTIME}/oidc-agent.sock
mytoken:
  profile: ${HOME}/.config/oidc-agent/profile.json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Socket != "/run/user/1000/oidc-agent.sock" {
		t.Errorf("socket = %s", cfg.Socket)
	}
	if cfg.MyToken.Profile != "/home/tester/.config/oidc-agent/profile.json" {
		t.Errorf("mytoken.profile = %s", cfg.MyToken.Profile)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"unknown codec", func(c *Config) { c.Codec = "xml" }, "codec"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative min valid period", func(c *Config) { c.AccessToken.MinValidPeriod = -1 }, "min_valid_period"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, test.wantErr)
			}
		})
	}

	cfg := Default()
	cfg.Codec = "xml"
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "codec") || !strings.Contains(err.Error(), "log_level") {
		t.Errorf("Validate() should report every problem, got %v", err)
	}
}

func TestResolverAndCodec(t *testing.T) {
	t.Setenv(transport.SocketEnvironment, "/tmp/from-env.sock")

	cfg := Default()
	if path, err := cfg.Resolver()(); err != nil || path != "/tmp/from-env.sock" {
		t.Errorf("empty socket resolves to %q, %v; want OIDC_SOCK", path, err)
	}

	cfg.Socket = "/tmp/configured.sock"
	if path, err := cfg.Resolver()(); err != nil || path != "/tmp/configured.sock" {
		t.Errorf("configured socket resolves to %q, %v", path, err)
	}

	cfg.Codec = "cbor"
	wireCodec, err := cfg.WireCodec()
	if err != nil || wireCodec.Name() != codec.CBOR.Name() {
		t.Errorf("WireCodec() = %v, %v", wireCodec, err)
	}
}
