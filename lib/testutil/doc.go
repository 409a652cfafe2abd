// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] and [SocketPath] place Unix sockets in short /tmp paths
// so they stay under the 108-byte sun_path limit.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so individual tests do not call time.After directly. They
// are the only place the tests use wall-clock timeouts, and only to
// keep a broken test from hanging.
//
// [UniqueID] generates identifiers that are unique within the test
// binary.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
