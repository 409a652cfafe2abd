// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"fmt"
	"slices"
	"time"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/mytoken"
	"github.com/bureau-foundation/oidcagent/lib/request"
	"github.com/bureau-foundation/oidcagent/lib/secret"
)

// Status values of the top-level "status" key.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Response is a decoded success response. The concrete types are
// *AccessTokenResponse, *MyTokenResponse and *AccountsResponse.
type Response interface {
	Kind() request.Kind
}

// AccessTokenResponse is the daemon's answer to an access token
// request.
type AccessTokenResponse struct {
	token     *secret.Token
	issuer    string
	expiresAt int64
}

func (r *AccessTokenResponse) Kind() request.Kind { return request.KindAccessToken }

// AccessToken returns the token. It stays valid until Close.
func (r *AccessTokenResponse) AccessToken() *secret.Token { return r.token }

// Issuer returns the issuer URL the token was obtained from.
func (r *AccessTokenResponse) Issuer() string { return r.issuer }

// ExpiresAt returns the expiry as unix seconds.
func (r *AccessTokenResponse) ExpiresAt() int64 { return r.expiresAt }

func (r *AccessTokenResponse) Expiry() time.Time { return time.Unix(r.expiresAt, 0) }

// Close releases the token memory.
func (r *AccessTokenResponse) Close() error { return r.token.Close() }

// MyTokenResponse is the daemon's answer to a mytoken request.
type MyTokenResponse struct {
	token         *secret.Token
	mytokenIssuer string
	oidcIssuer    string
	expiresAt     int64
	capabilities  []mytoken.Capability
}

func (r *MyTokenResponse) Kind() request.Kind { return request.KindMyToken }

// MyToken returns the mytoken. It stays valid until Close.
func (r *MyTokenResponse) MyToken() *secret.Token { return r.token }

// MyTokenIssuer returns the URL of the mytoken server that issued the
// token.
func (r *MyTokenResponse) MyTokenIssuer() string { return r.mytokenIssuer }

// OIDCIssuer returns the OpenID provider behind the mytoken.
func (r *MyTokenResponse) OIDCIssuer() string { return r.oidcIssuer }

func (r *MyTokenResponse) ExpiresAt() int64 { return r.expiresAt }

func (r *MyTokenResponse) Expiry() time.Time { return time.Unix(r.expiresAt, 0) }

// Capabilities returns the capabilities the server granted, or nil if
// the daemon did not report them.
func (r *MyTokenResponse) Capabilities() []mytoken.Capability {
	return slices.Clone(r.capabilities)
}

func (r *MyTokenResponse) Close() error { return r.token.Close() }

// AccountsResponse lists the account configurations loaded in the
// daemon.
type AccountsResponse struct {
	accounts []string
}

func (r *AccountsResponse) Kind() request.Kind { return request.KindLoadedAccounts }

// Accounts returns the short names of the loaded accounts.
func (r *AccountsResponse) Accounts() []string { return slices.Clone(r.accounts) }

// Decode decodes the response to a request of the given kind. A
// "failure" status yields a *DaemonError; a malformed response yields a
// *FieldError.
func Decode(kind request.Kind, value codec.Value) (Response, error) {
	switch kind {
	case request.KindAccessToken:
		return DecodeAccessToken(value)
	case request.KindMyToken:
		return DecodeMyToken(value)
	case request.KindLoadedAccounts:
		return DecodeAccounts(value)
	default:
		return nil, fmt.Errorf("decoding response: unsupported request kind %q", kind)
	}
}

func DecodeAccessToken(value codec.Value) (*AccessTokenResponse, error) {
	body, err := successBody(value)
	if err != nil {
		return nil, err
	}

	accessToken, err := body.requireString("access_token")
	if err != nil {
		return nil, err
	}
	issuer, err := body.requireIssuer("issuer")
	if err != nil {
		return nil, err
	}
	expiresAt, err := body.requireTimestamp("expires_at")
	if err != nil {
		return nil, err
	}

	return &AccessTokenResponse{
		token:     secret.NewToken(accessToken),
		issuer:    issuer,
		expiresAt: expiresAt,
	}, nil
}

func DecodeMyToken(value codec.Value) (*MyTokenResponse, error) {
	body, err := successBody(value)
	if err != nil {
		return nil, err
	}

	token, err := body.requireString("mytoken")
	if err != nil {
		return nil, err
	}
	mytokenIssuer, err := body.requireIssuer("mytoken_issuer")
	if err != nil {
		return nil, err
	}
	oidcIssuer, err := body.requireIssuer("oidc_issuer")
	if err != nil {
		return nil, err
	}
	expiresAt, err := body.requireTimestamp("expires_at")
	if err != nil {
		return nil, err
	}
	names, present, err := body.stringList("capabilities", false)
	if err != nil {
		return nil, err
	}

	var capabilities []mytoken.Capability
	if present {
		capabilities = make([]mytoken.Capability, 0, len(names))
		for _, name := range names {
			capability, err := mytoken.ParseCapability(name)
			if err != nil {
				return nil, &FieldError{Field: "capabilities", Expected: "capability", Actual: name, Err: ErrInvalidValue}
			}
			capabilities = append(capabilities, capability)
		}
	}

	return &MyTokenResponse{
		token:         secret.NewToken(token),
		mytokenIssuer: mytokenIssuer,
		oidcIssuer:    oidcIssuer,
		expiresAt:     expiresAt,
		capabilities:  capabilities,
	}, nil
}

func DecodeAccounts(value codec.Value) (*AccountsResponse, error) {
	body, err := successBody(value)
	if err != nil {
		return nil, err
	}

	accounts, _, err := body.stringList("info", true)
	if err != nil {
		return nil, err
	}
	return &AccountsResponse{accounts: accounts}, nil
}

// successBody checks the status discriminator. It returns the fields
// of a success response, a *DaemonError for a failure response, or a
// *FieldError when the status is missing or unknown.
func successBody(value codec.Value) (fields, error) {
	body, err := asFields(value)
	if err != nil {
		return fields{}, err
	}

	status, err := body.requireString("status")
	if err != nil {
		return fields{}, err
	}
	switch status {
	case StatusSuccess:
		return body, nil
	case StatusFailure:
		return fields{}, daemonError(body)
	default:
		return fields{}, &FieldError{
			Field:    "status",
			Expected: `"success" or "failure"`,
			Actual:   fmt.Sprintf("%q", status),
			Err:      ErrInvalidValue,
		}
	}
}

func daemonError(body fields) error {
	code, err := body.requireString("error")
	if err != nil {
		return err
	}
	description, err := body.optionalString("error_description")
	if err != nil {
		return err
	}
	info, err := body.optionalString("info")
	if err != nil {
		return err
	}

	if description == "" {
		return &DaemonError{Message: code, Info: info}
	}
	return &DaemonError{Code: code, Message: description, Info: info}
}
