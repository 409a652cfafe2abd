// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agenttest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/request"
	"github.com/bureau-foundation/oidcagent/lib/testutil"
)

// HandlerFunc answers one decoded request. Returning an error sends a
// failure response; a *Failure error controls every failure field.
type HandlerFunc func(ctx context.Context, request *codec.Object) (codec.Value, error)

// ConnectionFunc takes over a connection after the request has been
// read, for tests that need malformed, truncated, or missing replies.
// The connection is closed when it returns.
type ConnectionFunc func(ctx context.Context, conn net.Conn)

// Daemon is an in-process stand-in for oidc-agent. Like the real
// daemon it serves one request per connection on a Unix socket. It
// speaks whichever codec it was created with.
type Daemon struct {
	socketPath string
	codec      codec.Codec
	logger     *slog.Logger

	mu          sync.Mutex
	handlers    map[request.Kind]HandlerFunc
	connections map[request.Kind]ConnectionFunc
	requests    [][]byte

	activeConnections sync.WaitGroup
}

// NewDaemon creates a daemon that will listen on socketPath. A nil
// logger discards output.
func NewDaemon(socketPath string, wireCodec codec.Codec, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Daemon{
		socketPath:  socketPath,
		codec:       wireCodec,
		logger:      logger,
		handlers:    make(map[request.Kind]HandlerFunc),
		connections: make(map[request.Kind]ConnectionFunc),
	}
}

// Start creates a daemon on a fresh socket, serves it until the test
// ends, and returns it. The socket is listening when Start returns.
func Start(t *testing.T, wireCodec codec.Codec) *Daemon {
	t.Helper()

	daemon := NewDaemon(testutil.SocketPath(t, "oidc-agent.sock"), wireCodec, nil)
	listener, err := daemon.Listen()
	if err != nil {
		t.Fatalf("starting fake oidc-agent: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemon.Serve(ctx, listener)
	}()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for fake oidc-agent to stop"); err != nil {
			t.Errorf("fake oidc-agent: %v", err)
		}
	})
	return daemon
}

// SocketPath returns the path the daemon listens on.
func (d *Daemon) SocketPath() string { return d.socketPath }

// Handle sets the handler for a request kind, replacing any previous
// handler or connection takeover for it.
func (d *Daemon) Handle(kind request.Kind, handler HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.connections, kind)
	d.handlers[kind] = handler
}

// HandleConnection hands connections carrying kind to takeover.
func (d *Daemon) HandleConnection(kind request.Kind, takeover ConnectionFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, kind)
	d.connections[kind] = takeover
}

// Requests returns the raw bytes of every request received so far, in
// arrival order.
func (d *Daemon) Requests() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([][]byte, len(d.requests))
	copy(result, d.requests)
	return result
}

// Listen removes any stale socket file and starts listening.
func (d *Daemon) Listen() (net.Listener, error) {
	if err := os.Remove(d.socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", d.socketPath, err)
	}
	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", d.socketPath, err)
	}
	return listener, nil
}

// Serve accepts connections until ctx is canceled, then waits for
// in-flight connections and removes the socket file.
func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	defer func() {
		listener.Close()
		os.Remove(d.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	d.logger.Info("fake oidc-agent listening", "path", d.socketPath, "codec", d.codec.Name())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			d.logger.Error("accept failed", "error", err)
			continue
		}

		d.activeConnections.Add(1)
		go func() {
			defer d.activeConnections.Done()
			d.handleConnection(ctx, conn)
		}()
	}

	d.activeConnections.Wait()
	return nil
}

const maxRequestSize = 1024 * 1024

func (d *Daemon) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	raw, err := d.codec.ReadFrame(io.LimitReader(conn, maxRequestSize))
	if err != nil {
		d.logger.Debug("reading request failed", "error", err)
		return
	}

	d.mu.Lock()
	d.requests = append(d.requests, raw)
	d.mu.Unlock()

	value, err := d.codec.Decode(raw)
	if err != nil {
		d.writeValue(conn, failureValue(&Failure{Message: "Bad request: " + err.Error()}))
		return
	}
	object, ok := value.AsObject()
	if !ok {
		d.writeValue(conn, failureValue(&Failure{Message: "Bad request: not an object"}))
		return
	}
	kindValue, _ := object.Get("request")
	kindName, ok := kindValue.AsString()
	if !ok {
		d.writeValue(conn, failureValue(&Failure{Message: "Bad request: missing request type"}))
		return
	}
	kind := request.Kind(kindName)

	d.mu.Lock()
	handler, hasHandler := d.handlers[kind]
	takeover, hasTakeover := d.connections[kind]
	d.mu.Unlock()

	switch {
	case hasTakeover:
		takeover(ctx, conn)
	case hasHandler:
		reply, err := handler(ctx, object)
		if err != nil {
			d.writeValue(conn, failureValue(err))
			return
		}
		d.writeValue(conn, reply)
	default:
		d.writeValue(conn, failureValue(&Failure{Message: fmt.Sprintf("Bad request: unknown request type %q", kindName)}))
	}
}

func (d *Daemon) writeValue(conn net.Conn, value codec.Value) {
	data, err := d.codec.Encode(value)
	if err != nil {
		d.logger.Error("encoding reply failed", "error", err)
		return
	}
	if _, err := conn.Write(data); err != nil {
		d.logger.Debug("writing reply failed", "error", err)
	}
}
