// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package request builds the requests a client sends to oidc-agent.
//
// Each request kind has a builder with one setter per field. Setters
// never fail and return the builder for chaining; Build validates the
// accumulated fields as a whole and returns an immutable request or a
// [*ValidationError]. Invalid requests therefore never reach the wire.
//
//	req, err := request.NewAccessTokenRequest().
//		Account("egi").
//		MinValidPeriod(60).
//		Scope("openid", "profile").
//		Build()
//
// Built requests implement [Request]: a [Kind] discriminator and a
// [codec.Value] wire form in which unset optional fields are absent
// rather than null.
//
// A mytoken profile is copied when it is attached to a
// [MyTokenRequestBuilder]; mutating the original profile afterwards
// does not change the builder or any request built from it.
package request
