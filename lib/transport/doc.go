// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport carries encoded requests to oidc-agent over its
// Unix socket and brings back one encoded response.
//
// The protocol is one request per connection: dial, write the whole
// request, half-close the write side, read one complete value, close.
// A [Framer] (in practice a codec from lib/codec) decides where the
// response value ends, so no length prefix or delimiter is needed.
// Responses larger than [MaxResponseSize] are rejected.
//
// Two implementations share that sequence:
//
//   - [Blocking] dials with net.Dial and runs each exchange to
//     completion once started.
//   - [Async] honors its context throughout: dialing uses
//     DialContext, and a canceled context interrupts the exchange and
//     is reported as the error cause.
//
// Neither sets internal timeouts. Endpoint discovery is a [Resolver];
// [DefaultResolver] reads OIDC_SOCK and fails with
// [ErrEndpointNotFound] when it is unset or empty.
package transport
