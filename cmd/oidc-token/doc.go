// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Oidc-token prints tokens obtained from a running oidc-agent. It is
// a thin command-line front end to lib/agent for shell scripts and CI
// jobs:
//
//	export TOKEN=$(oidc-token -t 300 egi)
//
// By default it prints an access token for the named account. With
// --mytoken it prints a mytoken, optionally shaped by a JSON or JSONC
// profile document (--profile). With --accounts it lists the loaded
// account short names, one per line.
//
// The token is the only thing written to stdout. Diagnostics and,
// with --full, the issuer and expiry go to stderr. SIGINT and SIGTERM
// cancel the in-flight request.
//
// Defaults for the socket, codec, scopes, audiences and profile may be
// kept in a YAML file named by --config or OIDC_AGENT_CLIENT_CONFIG;
// see lib/config. Exit status is 1 for agent and protocol errors and 2
// for command-line mistakes.
package main
