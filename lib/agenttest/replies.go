// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agenttest

import (
	"context"
	"errors"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// Failure is an error a HandlerFunc returns to control the failure
// response exactly. Message is sent as "error".
type Failure struct {
	Message     string
	Description string
	Info        string
}

func (f *Failure) Error() string { return f.Message }

func failureValue(err error) codec.Value {
	var failure *Failure
	if !errors.As(err, &failure) {
		failure = &Failure{Message: err.Error()}
	}
	object := codec.NewObject().
		Set("status", codec.String("failure")).
		Set("error", codec.String(failure.Message))
	if failure.Description != "" {
		object.Set("error_description", codec.String(failure.Description))
	}
	if failure.Info != "" {
		object.Set("info", codec.String(failure.Info))
	}
	return codec.ObjectValue(object)
}

func success() *codec.Object {
	return codec.NewObject().Set("status", codec.String("success"))
}

// AccessTokenReply is a success response to an access token request.
func AccessTokenReply(token, issuer string, expiresAt int64) codec.Value {
	return codec.ObjectValue(success().
		Set("access_token", codec.String(token)).
		Set("issuer", codec.String(issuer)).
		Set("expires_at", codec.Int(expiresAt)))
}

// MyTokenReply is a success response to a mytoken request.
func MyTokenReply(token, mytokenIssuer, oidcIssuer string, expiresAt int64) codec.Value {
	return codec.ObjectValue(success().
		Set("mytoken", codec.String(token)).
		Set("mytoken_issuer", codec.String(mytokenIssuer)).
		Set("oidc_issuer", codec.String(oidcIssuer)).
		Set("expires_at", codec.Int(expiresAt)))
}

// AccountsReply is a success response to a loaded accounts request.
func AccountsReply(accounts ...string) codec.Value {
	return codec.ObjectValue(success().Set("info", codec.Strings(accounts)))
}

// Reply returns a handler that always answers with value.
func Reply(value codec.Value) HandlerFunc {
	return func(context.Context, *codec.Object) (codec.Value, error) {
		return value, nil
	}
}

// Fail returns a handler that always answers with failure.
func Fail(failure *Failure) HandlerFunc {
	return func(context.Context, *codec.Object) (codec.Value, error) {
		return codec.Value{}, failure
	}
}
