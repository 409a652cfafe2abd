// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package response decodes oidc-agent responses into typed values.
//
// Every response is an object with a "status" key. On "success" the
// kind-specific fields are extracted and checked: a missing key is a
// [*FieldError] wrapping [ErrMissingField], a key of the wrong type
// wraps [ErrTypeMismatch], and a well-typed but impossible value (an
// unknown status, a negative expiry, an issuer that is not an absolute
// URL) wraps [ErrInvalidValue]. On "failure" the daemon's own error is
// returned as a [*DaemonError].
//
// Once decoding succeeds every accessor is infallible. Token values are
// wrapped in [secret.Token] as soon as they leave the structured-value
// tree; callers should Close the response when they are done with the
// token.
package response
