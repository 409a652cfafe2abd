// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"
)

// Async is the context-aware transport. The calling goroutine parks in
// the runtime's network poller while it waits on the socket, and the
// call returns as soon as the context is done: dialing honors the
// context directly, and an in-flight exchange is interrupted by moving
// the connection deadline into the past. The transport sets no
// timeouts of its own.
type Async struct {
	endpoint string
	framer   Framer
	logger   *slog.Logger
}

// NewAsync returns a context-aware transport for the socket at
// endpoint. A nil logger discards output.
func NewAsync(endpoint string, framer Framer, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Async{endpoint: endpoint, framer: framer, logger: logger}
}

func (t *Async) Endpoint() string { return t.endpoint }

func (t *Async) Connect(ctx context.Context) (Connection, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", t.endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &Error{Op: "dial", Endpoint: t.endpoint, Err: err}
	}
	t.logger.Debug("connected to oidc-agent", "endpoint", t.endpoint, "mode", "async")
	return &asyncConnection{conn: conn, transport: t}, nil
}

type asyncConnection struct {
	conn      net.Conn
	transport *Async
	used      bool
}

// pastDeadline is any time before now; setting it fails pending I/O.
var pastDeadline = time.Unix(1, 0)

func (c *asyncConnection) SendReceive(ctx context.Context, request []byte) ([]byte, error) {
	if c.used {
		return nil, &Error{Op: "write", Endpoint: c.transport.endpoint, Err: ErrConnectionUsed}
	}
	c.used = true
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "write", Endpoint: c.transport.endpoint, Err: err}
	}

	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(pastDeadline)
	})
	defer stop()

	start := time.Now()
	response, err := exchange(c.conn, c.transport.endpoint, c.transport.framer, request)
	if err != nil {
		// A deadline forced by cancellation surfaces as a timeout
		// or a truncated frame; report the cause instead.
		if ctxErr := ctx.Err(); ctxErr != nil {
			op := "read"
			var transportError *Error
			if errors.As(err, &transportError) {
				op = transportError.Op
			}
			c.transport.logger.Debug("oidc-agent round trip canceled", "error", ctxErr)
			return nil, &Error{Op: op, Endpoint: c.transport.endpoint, Err: ctxErr}
		}
		return nil, err
	}
	c.transport.logger.Debug("oidc-agent round trip complete",
		"request_bytes", len(request),
		"response_bytes", len(response),
		"duration", time.Since(start),
	)
	return response, nil
}

func (c *asyncConnection) Close() error { return c.conn.Close() }
