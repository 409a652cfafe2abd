// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"os"
)

// SocketEnvironment is the variable oidc-agent exports with the path
// of its socket.
const SocketEnvironment = "OIDC_SOCK"

// ErrEndpointNotFound is returned when no socket path can be resolved.
var ErrEndpointNotFound = errors.New("oidc-agent socket not found")

// Resolver produces the daemon's socket path. Agents call it once at
// construction.
type Resolver func() (string, error)

// DefaultResolver reads OIDC_SOCK.
var DefaultResolver = Environment(SocketEnvironment)

// Environment returns a Resolver that reads the socket path from the
// named environment variable. Unset and empty are both errors.
func Environment(name string) Resolver {
	return func() (string, error) {
		path, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("%w: %s is not set", ErrEndpointNotFound, name)
		}
		if path == "" {
			return "", fmt.Errorf("%w: %s is empty", ErrEndpointNotFound, name)
		}
		return path, nil
	}
}

// Static returns a Resolver for a fixed path, as when the path comes
// from a flag or a config file.
func Static(path string) Resolver {
	return func() (string, error) {
		if path == "" {
			return "", fmt.Errorf("%w: empty socket path", ErrEndpointNotFound)
		}
		return path, nil
	}
}
