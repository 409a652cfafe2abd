// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent is the entry point for talking to oidc-agent.
//
// Two clients expose the same operations:
//
//   - [Agent] blocks the calling goroutine for each round trip.
//   - [AsyncAgent] takes a context on every call and returns as soon
//     as the context is done.
//
// Both are thin adapters over one unexported protocol core that
// encodes the request, performs the exchange through a
// lib/transport.Transport, and decodes the response. Only the
// transport differs, so both clients put identical bytes on the wire
// and classify errors identically.
//
// Typical use:
//
//	a, err := agent.New()
//	if err != nil {
//		return err
//	}
//	token, err := a.GetAccessToken("egi")
//	if err != nil {
//		return err
//	}
//	defer token.Close()
//	useBearer(token.Secret())
//
// The socket path is resolved once at construction (OIDC_SOCK unless
// [Config] says otherwise). Every call opens a fresh connection, so
// clients are safe for concurrent use and hold no connection between
// calls.
//
// Errors wrap, and can be inspected with errors.Is and errors.As:
// transport.ErrEndpointNotFound, *transport.Error, *codec.DecodeError,
// *request.ValidationError, *response.FieldError and
// *response.DaemonError. Nothing is retried.
package agent
