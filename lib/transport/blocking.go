// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Blocking is the transport for callers that want plain blocking I/O.
// The context is checked before dialing and before the exchange;
// once I/O has started the call runs to completion. Callers that need
// a timeout wrap the call themselves or use Async.
type Blocking struct {
	endpoint string
	framer   Framer
	logger   *slog.Logger
}

// NewBlocking returns a blocking transport for the socket at endpoint.
// A nil logger discards output.
func NewBlocking(endpoint string, framer Framer, logger *slog.Logger) *Blocking {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Blocking{endpoint: endpoint, framer: framer, logger: logger}
}

func (t *Blocking) Endpoint() string { return t.endpoint }

func (t *Blocking) Connect(ctx context.Context) (Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "dial", Endpoint: t.endpoint, Err: err}
	}

	conn, err := net.Dial("unix", t.endpoint)
	if err != nil {
		return nil, &Error{Op: "dial", Endpoint: t.endpoint, Err: err}
	}
	t.logger.Debug("connected to oidc-agent", "endpoint", t.endpoint, "mode", "blocking")
	return &blockingConnection{conn: conn, transport: t}, nil
}

type blockingConnection struct {
	conn      net.Conn
	transport *Blocking
	used      bool
}

func (c *blockingConnection) SendReceive(ctx context.Context, request []byte) ([]byte, error) {
	if c.used {
		return nil, &Error{Op: "write", Endpoint: c.transport.endpoint, Err: ErrConnectionUsed}
	}
	c.used = true
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "write", Endpoint: c.transport.endpoint, Err: err}
	}

	start := time.Now()
	response, err := exchange(c.conn, c.transport.endpoint, c.transport.framer, request)
	if err != nil {
		return nil, err
	}
	c.transport.logger.Debug("oidc-agent round trip complete",
		"request_bytes", len(request),
		"response_bytes", len(response),
		"duration", time.Since(start),
	)
	return response, nil
}

func (c *blockingConnection) Close() error { return c.conn.Close() }
