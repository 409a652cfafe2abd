// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/request"
	"github.com/bureau-foundation/oidcagent/lib/response"
	"github.com/bureau-foundation/oidcagent/lib/transport"
)

// Config selects how an agent finds and talks to the daemon. The zero
// Config reads OIDC_SOCK, speaks JSON, logs nothing, and checks that
// the daemon is reachable at construction.
type Config struct {
	// Resolver produces the socket path. Default:
	// transport.DefaultResolver (OIDC_SOCK).
	Resolver transport.Resolver

	// Codec is the wire encoding. Default: codec.JSON, which is what
	// oidc-agent speaks.
	Codec codec.Codec

	// Logger receives debug output about connections and requests.
	// Token values are never logged. Default: discard.
	Logger *slog.Logger

	// Lazy skips the reachability check, so construction succeeds
	// while the daemon is still starting. The first request reports
	// any connection error instead.
	Lazy bool
}

type transportFactory func(endpoint string, framer transport.Framer, logger *slog.Logger) transport.Transport

// core is the protocol logic shared by Agent and AsyncAgent. It only
// knows the transport interface.
type core struct {
	transport transport.Transport
	codec     codec.Codec
	logger    *slog.Logger
}

func newCore(ctx context.Context, config Config, newTransport transportFactory) (*core, error) {
	resolver := config.Resolver
	if resolver == nil {
		resolver = transport.DefaultResolver
	}
	wireCodec := config.Codec
	if wireCodec == nil {
		wireCodec = codec.JSON
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	endpoint, err := resolver()
	if err != nil {
		return nil, fmt.Errorf("resolving oidc-agent socket: %w", err)
	}

	c := &core{
		transport: newTransport(endpoint, wireCodec, logger),
		codec:     wireCodec,
		logger:    logger,
	}

	if !config.Lazy {
		connection, err := c.transport.Connect(ctx)
		if err != nil {
			return nil, err
		}
		connection.Close()
	}

	logger.Debug("oidc-agent client ready", "endpoint", endpoint, "codec", wireCodec.Name(), "lazy", config.Lazy)
	return c, nil
}

// send encodes req, performs one round trip on a fresh connection,
// and decodes the typed response.
func (c *core) send(ctx context.Context, req request.Request) (response.Response, error) {
	kind := req.Kind()

	data, err := c.codec.Encode(req.Value())
	if err != nil {
		return nil, fmt.Errorf("%s request: encoding: %w", kind, err)
	}

	c.logger.Debug("sending oidc-agent request", "kind", kind, "bytes", len(data))
	raw, err := transport.Exchange(ctx, c.transport, data)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", kind, err)
	}

	value, err := c.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s request: decoding response: %w", kind, err)
	}

	decoded, err := response.Decode(kind, value)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", kind, err)
	}
	return decoded, nil
}

// sendAs is send with the concrete response type for the request kind.
func sendAs[T response.Response](ctx context.Context, c *core, req request.Request) (T, error) {
	var zero T
	decoded, err := c.send(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := decoded.(T)
	if !ok {
		return zero, fmt.Errorf("%s request: unexpected response type %T", req.Kind(), decoded)
	}
	return typed, nil
}

func (c *core) accessToken(ctx context.Context, account string) (*response.AccessTokenResponse, error) {
	req, err := request.BasicAccessTokenRequest(account)
	if err != nil {
		return nil, err
	}
	return sendAs[*response.AccessTokenResponse](ctx, c, req)
}

func (c *core) myToken(ctx context.Context, account string) (*response.MyTokenResponse, error) {
	req, err := request.BasicMyTokenRequest(account)
	if err != nil {
		return nil, err
	}
	return sendAs[*response.MyTokenResponse](ctx, c, req)
}

func (c *core) loadedAccounts(ctx context.Context) ([]string, error) {
	accounts, err := sendAs[*response.AccountsResponse](ctx, c, request.NewLoadedAccountsRequest())
	if err != nil {
		return nil, err
	}
	return accounts.Accounts(), nil
}
