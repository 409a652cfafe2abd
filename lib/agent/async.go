// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/oidcagent/lib/request"
	"github.com/bureau-foundation/oidcagent/lib/response"
	"github.com/bureau-foundation/oidcagent/lib/secret"
	"github.com/bureau-foundation/oidcagent/lib/transport"
)

// AsyncAgent is the context-aware client. Its methods mirror Agent's
// with a leading context: the calling goroutine parks while it waits
// for the daemon, and the call returns the context's error as soon as
// the context is done. The library imposes no timeout of its own.
type AsyncAgent struct {
	core *core
}

// NewAsync connects to the daemon named by OIDC_SOCK.
func NewAsync(ctx context.Context) (*AsyncAgent, error) {
	return NewAsyncWithConfig(ctx, Config{})
}

// NewAsyncWithConfig is NewWithConfig for the context-aware client.
// ctx bounds the reachability check only.
func NewAsyncWithConfig(ctx context.Context, config Config) (*AsyncAgent, error) {
	c, err := newCore(ctx, config, func(endpoint string, framer transport.Framer, logger *slog.Logger) transport.Transport {
		return transport.NewAsync(endpoint, framer, logger)
	})
	if err != nil {
		return nil, err
	}
	return &AsyncAgent{core: c}, nil
}

func (a *AsyncAgent) SocketPath() string { return a.core.transport.Endpoint() }

func (a *AsyncAgent) GetAccessToken(ctx context.Context, account string) (*secret.Token, error) {
	full, err := a.GetAccessTokenFull(ctx, account)
	if err != nil {
		return nil, err
	}
	return full.AccessToken(), nil
}

func (a *AsyncAgent) GetAccessTokenFull(ctx context.Context, account string) (*response.AccessTokenResponse, error) {
	return a.core.accessToken(ctx, account)
}

func (a *AsyncAgent) GetMyToken(ctx context.Context, account string) (*secret.Token, error) {
	full, err := a.GetMyTokenFull(ctx, account)
	if err != nil {
		return nil, err
	}
	return full.MyToken(), nil
}

func (a *AsyncAgent) GetMyTokenFull(ctx context.Context, account string) (*response.MyTokenResponse, error) {
	return a.core.myToken(ctx, account)
}

func (a *AsyncAgent) GetLoadedAccounts(ctx context.Context) ([]string, error) {
	return a.core.loadedAccounts(ctx)
}

func (a *AsyncAgent) SendRequest(ctx context.Context, req request.Request) (response.Response, error) {
	return a.core.send(ctx, req)
}

func (a *AsyncAgent) RequestAccessToken(ctx context.Context, req request.AccessTokenRequest) (*response.AccessTokenResponse, error) {
	return sendAs[*response.AccessTokenResponse](ctx, a.core, req)
}

func (a *AsyncAgent) RequestMyToken(ctx context.Context, req request.MyTokenRequest) (*response.MyTokenResponse, error) {
	return sendAs[*response.MyTokenResponse](ctx, a.core, req)
}
