// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

const redacted = "Token([redacted])"

// Token holds a bearer credential returned by the daemon: an access
// token or a mytoken. The raw value is reachable only through Secret.
// Every formatting path (fmt verbs, slog, JSON and text marshaling)
// prints a fixed placeholder instead.
//
// When the platform allows it, the value lives in mlocked memory
// outside the Go heap, excluded from core dumps. Where mlock is not
// permitted (for example a low RLIMIT_MEMLOCK) the token falls back to
// ordinary heap memory and Protected reports false. Close zeroes and
// releases the memory; a token that is never closed is released by a
// runtime cleanup once it becomes unreachable.
//
// A Token must not be copied after creation.
type Token struct {
	mu        sync.Mutex
	data      []byte
	protected bool
	closed    bool
	cleanup   runtime.Cleanup
}

// NewToken copies value into a new Token.
func NewToken(value string) *Token {
	token := &Token{}
	if len(value) > 0 {
		if data, err := lockedAlloc(len(value)); err == nil {
			copy(data, value)
			token.data = data
			token.protected = true
			token.cleanup = runtime.AddCleanup(token, func(data []byte) {
				_ = lockedFree(data)
			}, data)
			return token
		}
	}
	token.data = []byte(value)
	return token
}

// Secret returns the raw token value. This is the only way to read it.
// Panics if the token has been closed.
func (t *Token) Secret() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		panic("secret: read from closed token")
	}
	return string(t.data)
}

// Len returns the length of the token value in bytes.
func (t *Token) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.data)
}

// Protected reports whether the value is held in locked memory outside
// the Go heap.
func (t *Token) Protected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.protected
}

// Close zeroes the token value and releases its memory. Close is
// idempotent; Secret panics afterwards.
func (t *Token) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var err error
	if t.protected {
		t.cleanup.Stop()
		err = lockedFree(t.data)
	} else {
		clear(t.data)
	}
	t.data = nil
	return err
}

func (t *Token) String() string { return redacted }

func (t *Token) GoString() string { return redacted }

// Format prints the placeholder for every verb, so %x or %q cannot
// bypass String.
func (t *Token) Format(state fmt.State, verb rune) {
	fmt.Fprint(state, redacted)
}

// LogValue keeps the value out of structured logs.
func (t *Token) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalText keeps the value out of JSON, YAML, and any other encoder
// that honors encoding.TextMarshaler.
func (t *Token) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
