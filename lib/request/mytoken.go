// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/mytoken"
)

// MyTokenRequest asks the daemon to create a mytoken from the named
// account, optionally constrained by a profile.
type MyTokenRequest struct {
	account         string
	profile         *mytoken.Profile
	applicationHint string
}

// Kind returns KindMyToken.
func (r MyTokenRequest) Kind() Kind { return KindMyToken }

// Account returns the account short name the mytoken is created from.
func (r MyTokenRequest) Account() string { return r.account }

// ApplicationHint returns the name shown in the daemon's confirmation
// prompt, or "" when unset.
func (r MyTokenRequest) ApplicationHint() string { return r.applicationHint }

// Profile returns a copy of the attached profile, or nil when the
// daemon's default applies.
func (r MyTokenRequest) Profile() *mytoken.Profile {
	return r.profile.Clone()
}

// Value returns the wire form: request, account, mytoken_profile (a
// nested object, absent without a profile), application_hint.
func (r MyTokenRequest) Value() codec.Value {
	object := header(KindMyToken)
	object.Set("account", codec.String(r.account))
	if r.profile != nil {
		object.Set("mytoken_profile", r.profile.Value())
	}
	setString(object, "application_hint", r.applicationHint)
	return codec.ObjectValue(object)
}

// MyTokenRequestBuilder accumulates the fields of a mytoken request.
type MyTokenRequestBuilder struct {
	request MyTokenRequest
}

// NewMyTokenRequest returns a builder for account.
func NewMyTokenRequest(account string) *MyTokenRequestBuilder {
	return &MyTokenRequestBuilder{request: MyTokenRequest{account: account}}
}

// BasicMyTokenRequest builds a request for account with no profile.
func BasicMyTokenRequest(account string) (MyTokenRequest, error) {
	return NewMyTokenRequest(account).Build()
}

// Profile attaches a copy of profile. Changing profile afterwards does
// not affect this builder or requests built from it. A nil profile
// removes any previously attached one.
func (b *MyTokenRequestBuilder) Profile(profile *mytoken.Profile) *MyTokenRequestBuilder {
	b.request.profile = profile.Clone()
	return b
}

// ApplicationHint sets the name shown in the daemon's confirmation
// prompt.
func (b *MyTokenRequestBuilder) ApplicationHint(hint string) *MyTokenRequestBuilder {
	b.request.applicationHint = hint
	return b
}

// Build validates the request. The attached profile copy is never
// mutated, so requests built from one builder may share it.
func (b *MyTokenRequestBuilder) Build() (MyTokenRequest, error) {
	if b.request.account == "" {
		return MyTokenRequest{}, &ValidationError{Kind: KindMyToken, Field: "account", Err: ErrMissingShortname}
	}
	return b.request, nil
}
