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

// Agent is the blocking client. Every method blocks the calling
// goroutine for the whole round trip and opens its own connection, so
// an Agent is safe for concurrent use.
type Agent struct {
	core *core
}

// New connects to the daemon named by OIDC_SOCK.
func New() (*Agent, error) {
	return NewWithConfig(Config{})
}

// NewWithConfig resolves the socket path once and, unless config.Lazy
// is set, checks that the daemon accepts connections.
func NewWithConfig(config Config) (*Agent, error) {
	c, err := newCore(context.Background(), config, func(endpoint string, framer transport.Framer, logger *slog.Logger) transport.Transport {
		return transport.NewBlocking(endpoint, framer, logger)
	})
	if err != nil {
		return nil, err
	}
	return &Agent{core: c}, nil
}

// SocketPath returns the resolved socket path.
func (a *Agent) SocketPath() string { return a.core.transport.Endpoint() }

// GetAccessToken returns an access token for the account short name.
func (a *Agent) GetAccessToken(account string) (*secret.Token, error) {
	full, err := a.GetAccessTokenFull(account)
	if err != nil {
		return nil, err
	}
	return full.AccessToken(), nil
}

// GetAccessTokenFull is GetAccessToken with the issuer and expiry.
func (a *Agent) GetAccessTokenFull(account string) (*response.AccessTokenResponse, error) {
	return a.core.accessToken(context.Background(), account)
}

// GetMyToken returns a mytoken for the account short name, using the
// daemon's default profile.
func (a *Agent) GetMyToken(account string) (*secret.Token, error) {
	full, err := a.GetMyTokenFull(account)
	if err != nil {
		return nil, err
	}
	return full.MyToken(), nil
}

func (a *Agent) GetMyTokenFull(account string) (*response.MyTokenResponse, error) {
	return a.core.myToken(context.Background(), account)
}

// GetLoadedAccounts returns the short names of the accounts loaded in
// the daemon.
func (a *Agent) GetLoadedAccounts() ([]string, error) {
	return a.core.loadedAccounts(context.Background())
}

// SendRequest sends any built request and returns the decoded
// response, whose concrete type matches the request kind.
func (a *Agent) SendRequest(req request.Request) (response.Response, error) {
	return a.core.send(context.Background(), req)
}

// RequestAccessToken sends a request made with
// request.NewAccessTokenRequest.
func (a *Agent) RequestAccessToken(req request.AccessTokenRequest) (*response.AccessTokenResponse, error) {
	return sendAs[*response.AccessTokenResponse](context.Background(), a.core, req)
}

// RequestMyToken sends a request made with request.NewMyTokenRequest.
func (a *Agent) RequestMyToken(req request.MyTokenRequest) (*response.MyTokenResponse, error) {
	return sendAs[*response.MyTokenResponse](context.Background(), a.core, req)
}
