// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration of the oidc-token
// command.
//
// The file is named by the --config flag (via [LoadFile]) or the
// OIDC_AGENT_CLIENT_CONFIG environment variable (via [Load]). There is
// no automatic discovery. Values from the file are layered on top of
// [Default]; ${VAR} and ${VAR:-default} patterns are expanded in the
// socket and profile paths, and no other environment variable
// overrides a configured value.
//
// Library users do not need this package: agent.Config is the
// programmatic equivalent. [Config.Resolver] and [Config.WireCodec]
// translate a loaded file into those settings.
package config
