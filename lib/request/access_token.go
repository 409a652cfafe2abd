// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// AccessTokenRequest asks the daemon for an OIDC access token, selected
// by account short name, by issuer, or both.
type AccessTokenRequest struct {
	account         string
	issuer          string
	minValidPeriod  int
	hasMinValid     bool
	applicationHint string
	scope           string
	audience        string
}

// Kind returns KindAccessToken.
func (r AccessTokenRequest) Kind() Kind { return KindAccessToken }

// Account returns the account short name, or "" when the request
// selects by issuer only.
func (r AccessTokenRequest) Account() string { return r.account }

// Issuer returns the issuer URL, or "" when unset.
func (r AccessTokenRequest) Issuer() string { return r.issuer }

// ApplicationHint returns the name shown in the daemon's confirmation
// prompt, or "" when unset.
func (r AccessTokenRequest) ApplicationHint() string { return r.applicationHint }

// Scope returns the space-separated scope list, or "" when unset.
func (r AccessTokenRequest) Scope() string { return r.scope }

// Audience returns the space-separated audience list, or "" when
// unset.
func (r AccessTokenRequest) Audience() string { return r.audience }

// MinValidPeriod returns the minimum remaining lifetime in seconds and
// whether it was set.
func (r AccessTokenRequest) MinValidPeriod() (int, bool) {
	return r.minValidPeriod, r.hasMinValid
}

// Value returns the wire form. Keys appear in the order request,
// account, issuer, min_valid_period, application_hint, scope, audience.
func (r AccessTokenRequest) Value() codec.Value {
	object := header(KindAccessToken)
	setString(object, "account", r.account)
	setString(object, "issuer", r.issuer)
	if r.hasMinValid {
		object.Set("min_valid_period", codec.Int(int64(r.minValidPeriod)))
	}
	setString(object, "application_hint", r.applicationHint)
	setString(object, "scope", r.scope)
	setString(object, "audience", r.audience)
	return codec.ObjectValue(object)
}

// AccessTokenRequestBuilder accumulates the fields of an access token
// request. Setters never fail; Build validates the whole request.
type AccessTokenRequestBuilder struct {
	request AccessTokenRequest
}

// NewAccessTokenRequest returns an empty builder.
func NewAccessTokenRequest() *AccessTokenRequestBuilder {
	return &AccessTokenRequestBuilder{}
}

// BasicAccessTokenRequest builds the minimal request for account.
func BasicAccessTokenRequest(account string) (AccessTokenRequest, error) {
	return NewAccessTokenRequest().Account(account).Build()
}

// Account sets the short name of the account configuration to use.
func (b *AccessTokenRequestBuilder) Account(account string) *AccessTokenRequestBuilder {
	b.request.account = account
	return b
}

// Issuer selects the account by issuer URL. May be combined with
// Account or used alone.
func (b *AccessTokenRequestBuilder) Issuer(issuer string) *AccessTokenRequestBuilder {
	b.request.issuer = issuer
	return b
}

// MinValidPeriod asks for a token valid for at least seconds more
// seconds.
func (b *AccessTokenRequestBuilder) MinValidPeriod(seconds int) *AccessTokenRequestBuilder {
	b.request.minValidPeriod = seconds
	b.request.hasMinValid = true
	return b
}

// Scope sets the requested scopes, joined with spaces on the wire.
func (b *AccessTokenRequestBuilder) Scope(scopes ...string) *AccessTokenRequestBuilder {
	b.request.scope = strings.Join(scopes, " ")
	return b
}

// Audience sets the requested audiences, joined with spaces on the
// wire.
func (b *AccessTokenRequestBuilder) Audience(audiences ...string) *AccessTokenRequestBuilder {
	b.request.audience = strings.Join(audiences, " ")
	return b
}

// ApplicationHint names the calling application in the daemon's
// confirmation prompt.
func (b *AccessTokenRequestBuilder) ApplicationHint(hint string) *AccessTokenRequestBuilder {
	b.request.applicationHint = hint
	return b
}

// Build validates the accumulated fields and returns the request. The
// builder is left unchanged and may be reused.
func (b *AccessTokenRequestBuilder) Build() (AccessTokenRequest, error) {
	request := b.request

	if request.account == "" && request.issuer == "" {
		return AccessTokenRequest{}, &ValidationError{Kind: KindAccessToken, Field: "account", Err: ErrMissingIdentity}
	}
	if request.issuer != "" {
		if err := checkAbsoluteURL(request.issuer); err != nil {
			return AccessTokenRequest{}, &ValidationError{Kind: KindAccessToken, Field: "issuer", Err: err}
		}
	}
	if request.hasMinValid && request.minValidPeriod < 0 {
		return AccessTokenRequest{}, &ValidationError{
			Kind:  KindAccessToken,
			Field: "min_valid_period",
			Err:   fmt.Errorf("%w: %d is negative", ErrInvalidArgument, request.minValidPeriod),
		}
	}

	return request, nil
}

// checkAbsoluteURL accepts URLs with a scheme and a host, such as
// https://accounts.google.com or http://localhost:8080/realms/test.
func checkAbsoluteURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}
