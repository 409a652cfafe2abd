// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// MaxResponseSize bounds a single daemon response.
const MaxResponseSize = 1024 * 1024

// ErrResponseTooLarge is returned when the daemon sends more than
// MaxResponseSize bytes without completing a value.
var ErrResponseTooLarge = errors.New("response exceeds maximum size")

// ErrConnectionUsed is returned by a second SendReceive on the same
// connection. The write side is half-closed after the first request.
var ErrConnectionUsed = errors.New("connection already used for a request")

// Transport opens connections to the daemon.
type Transport interface {
	Connect(ctx context.Context) (Connection, error)

	// Endpoint returns the socket path.
	Endpoint() string
}

// Connection carries exactly one request/response exchange.
type Connection interface {
	// SendReceive writes the whole request, half-closes the write
	// side, and reads one complete response frame.
	SendReceive(ctx context.Context, request []byte) ([]byte, error)
	Close() error
}

// Framer reads exactly one encoded value from a stream. Both codecs
// implement it.
type Framer interface {
	ReadFrame(reader io.Reader) ([]byte, error)
}

// Error reports a connection-level failure: the socket could not be
// dialed, written, or read. Malformed response bytes are reported as
// *codec.DecodeError instead.
type Error struct {
	Op       string // "dial", "write" or "read"
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("oidc-agent %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Exchange performs one round trip on a fresh connection.
func Exchange(ctx context.Context, transport Transport, request []byte) ([]byte, error) {
	connection, err := transport.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer connection.Close()

	return connection.SendReceive(ctx, request)
}

// exchange is the I/O sequence shared by both transports.
func exchange(conn net.Conn, endpoint string, framer Framer, request []byte) ([]byte, error) {
	if _, err := conn.Write(request); err != nil {
		return nil, &Error{Op: "write", Endpoint: endpoint, Err: err}
	}

	// The request is complete; let the daemon see EOF.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		if err := unixConn.CloseWrite(); err != nil {
			return nil, &Error{Op: "write", Endpoint: endpoint, Err: err}
		}
	}

	response, err := framer.ReadFrame(&boundedReader{reader: conn, remaining: MaxResponseSize})
	if err != nil {
		var decodeError *codec.DecodeError
		if errors.As(err, &decodeError) {
			return nil, fmt.Errorf("reading response from %s: %w", endpoint, err)
		}
		return nil, &Error{Op: "read", Endpoint: endpoint, Err: err}
	}
	return response, nil
}

// boundedReader passes through at most remaining bytes, then fails
// with ErrResponseTooLarge if the peer has more to send.
type boundedReader struct {
	reader    io.Reader
	remaining int64
}

func (b *boundedReader) Read(buffer []byte) (int, error) {
	if b.remaining <= 0 {
		var probe [1]byte
		count, err := b.reader.Read(probe[:])
		if count > 0 {
			return 0, ErrResponseTooLarge
		}
		return 0, err
	}
	if int64(len(buffer)) > b.remaining {
		buffer = buffer[:b.remaining]
	}
	count, err := b.reader.Read(buffer)
	b.remaining -= int64(count)
	return count, err
}
