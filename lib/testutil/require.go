// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"time"
)

// Fataler is the part of *testing.T the wait helpers need.
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value sent on ch. The test fails if
// nothing arrives within timeout or ch is closed first. waitingFor
// names the event in the failure message.
//
//	err := testutil.RequireReceive(t, done, 5*time.Second, "canceled GetAccessToken to return")
func RequireReceive[T any](t Fataler, ch <-chan T, timeout time.Duration, waitingFor string) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting for %s", waitingFor)
		}
		return value
	case <-timer.C:
		t.Fatalf("no value after %v while waiting for %s", timeout, waitingFor)
	}
	var zero T
	return zero
}

// RequireClosed waits until ch is closed or yields a value. The fake
// daemon's connection handlers close a "started" channel this way once
// a request has arrived.
//
//	testutil.RequireClosed(t, started, 5*time.Second, "fake daemon to read the request")
func RequireClosed(t Fataler, ch <-chan struct{}, timeout time.Duration, waitingFor string) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("channel still open after %v while waiting for %s", timeout, waitingFor)
	}
}
