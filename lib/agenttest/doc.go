// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package agenttest provides an in-process fake oidc-agent for tests,
// in the spirit of net/http/httptest.
//
// [Start] listens on a fresh socket under /tmp and serves until the
// test ends. Handlers are registered per request kind:
//
//	daemon := agenttest.Start(t, codec.JSON)
//	daemon.Handle(request.KindAccessToken,
//		agenttest.Reply(agenttest.AccessTokenReply("abc", "https://issuer.example", 1234567890)))
//	t.Setenv("OIDC_SOCK", daemon.SocketPath())
//
// A handler error becomes a failure response; return a [*Failure] to
// set error, error_description and info exactly. [Daemon.HandleConnection]
// hands the raw connection to the test for truncated, malformed, or
// withheld replies. [Daemon.Requests] returns the raw request bytes
// for byte-level assertions.
package agenttest
