// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version holds the build stamps of the oidc-token command.
//
// Release builds set them with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/oidcagent/lib/version.Commit=$(git rev-parse --short HEAD)" ./cmd/oidc-token
//
// Development builds and test runs keep the defaults, "0.1.0-dev" and
// "unknown".
package version
