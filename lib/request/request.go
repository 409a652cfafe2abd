// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// Kind is the request discriminator, sent under the "request" key.
type Kind string

const (
	KindAccessToken    Kind = "access_token"
	KindMyToken        Kind = "mytoken"
	KindLoadedAccounts Kind = "loaded_accounts"
)

// Request is a validated, immutable request ready to be encoded. The
// concrete types are AccessTokenRequest, MyTokenRequest and
// LoadedAccountsRequest.
type Request interface {
	// Kind returns the request discriminator. The daemon's response
	// shape depends on it.
	Kind() Kind

	// Value returns the wire form: an object whose first key is
	// "request". Optional fields that were not set are absent.
	Value() codec.Value
}

var (
	// ErrMissingIdentity: an access token request names neither an
	// account nor an issuer.
	ErrMissingIdentity = errors.New("account or issuer required")

	// ErrInvalidURL: the issuer is not an absolute URL with a scheme
	// and a host.
	ErrInvalidURL = errors.New("not an absolute URL")

	// ErrInvalidArgument: a numeric field is out of range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingShortname: a mytoken request has an empty account
	// short name.
	ErrMissingShortname = errors.New("account short name required")
)

// ValidationError is returned by Build when the accumulated fields do
// not form a valid request. Err wraps one of the sentinels above.
type ValidationError struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s request: %s: %v", e.Kind, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// header starts the wire object for kind.
func header(kind Kind) *codec.Object {
	return codec.NewObject().Set("request", codec.String(string(kind)))
}

// setString adds key when value is non-empty.
func setString(object *codec.Object, key, value string) {
	if value != "" {
		object.Set(key, codec.String(value))
	}
}
