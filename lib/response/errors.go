// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField: a required key is absent.
	ErrMissingField = errors.New("missing field")

	// ErrTypeMismatch: a key is present with the wrong value type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidValue: a key has the right type but a value outside
	// the protocol (an unknown status, a negative expiry, ...).
	ErrInvalidValue = errors.New("invalid value")
)

// FieldError reports a daemon response that does not have the shape
// the protocol requires. It indicates protocol drift between client
// and daemon; retrying will not help.
type FieldError struct {
	// Field is the response key, or "" for the top-level value.
	Field string

	// Expected and Actual describe the mismatch. Expected is a type
	// name for ErrTypeMismatch and a constraint for ErrInvalidValue.
	// Actual is a type name or a non-secret value; it is empty for
	// ErrMissingField.
	Expected string
	Actual   string

	Err error
}

func (e *FieldError) Error() string {
	field := e.Field
	if field == "" {
		field = "(response)"
	}
	switch {
	case errors.Is(e.Err, ErrMissingField):
		return fmt.Sprintf("daemon response: %s: missing required field", field)
	case errors.Is(e.Err, ErrTypeMismatch):
		return fmt.Sprintf("daemon response: %s: expected %s, got %s", field, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("daemon response: %s: %v: expected %s, got %s", field, e.Err, e.Expected, e.Actual)
	}
}

func (e *FieldError) Unwrap() error { return e.Err }

// DaemonError is a failure reported by oidc-agent itself, such as an
// unknown account or a denied confirmation prompt. The text is passed
// through verbatim.
type DaemonError struct {
	// Code is the daemon's short error code ("error") when it also
	// sent a separate description; otherwise empty.
	Code string

	// Message is "error_description" when present, otherwise "error".
	Message string

	// Info is the optional "info" hint, often a suggested command.
	Info string
}

func (e *DaemonError) Error() string {
	var builder strings.Builder
	builder.WriteString("oidc-agent: ")
	builder.WriteString(e.Message)
	if e.Code != "" {
		builder.WriteString(" (")
		builder.WriteString(e.Code)
		builder.WriteString(")")
	}
	if e.Info != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Info)
	}
	return builder.String()
}
