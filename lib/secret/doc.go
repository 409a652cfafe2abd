// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides [Token], the wrapper for credentials handed
// out by the daemon.
//
// A Token exposes its value only through [Token.Secret]. String,
// GoString, Format, LogValue, and MarshalText all print the fixed
// placeholder "Token([redacted])", so passing a token to fmt, slog, or
// encoding/json cannot leak it by accident.
//
// The value is copied into memory allocated via mmap(MAP_ANONYMOUS),
// locked into RAM with mlock and excluded from core dumps with
// madvise(MADV_DONTDUMP). Because that memory is outside the Go heap
// the garbage collector never copies it. If mlock is refused, the token
// falls back to heap memory; [Token.Protected] reports which one is in
// use. [Token.Close] zeroes and releases the memory.
//
// Depends on golang.org/x/sys/unix. No other internal dependencies.
package secret
