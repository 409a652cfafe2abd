// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Build stamps, overridden with -ldflags -X. Dirty is the string
// "true" when the tree had uncommitted changes.
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildTime = "unknown"
)

// Info is the line oidc-token prints for --version, for example
// "0.3.0 (1a2b3c4-dirty, built 2026-10-16T09:00:00Z, go1.25.6 linux/amd64)".
func Info() string {
	revision := Commit
	if Dirty == "true" {
		revision += "-dirty"
	}
	return fmt.Sprintf("%s (%s, built %s, %s %s/%s)",
		Version, revision, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
