// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// maxDepth bounds array/object nesting on decode. Daemon responses are
// at most three levels deep; anything close to this limit is hostile.
const maxDepth = 256

// Codec converts between Value trees and one wire encoding.
//
// ReadFrame reads exactly one complete encoded value from r and returns
// its raw bytes without interpreting them. Transports use it to know
// when a response is complete without a separate framing layer. When
// the stream ends before a complete value, ReadFrame returns a
// *DecodeError; errors from r itself are returned unwrapped so the
// caller can tell I/O failures from malformed input.
type Codec interface {
	Name() string
	Encode(value Value) ([]byte, error)
	Decode(data []byte) (Value, error)
	ReadFrame(r io.Reader) ([]byte, error)
}

// DecodeError reports malformed encoded input. Offset is the byte
// offset at which the problem was detected, or -1 when unknown.
type DecodeError struct {
	Codec  string
	Offset int64
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	message := e.Reason
	if e.Err != nil {
		if message == "" {
			message = e.Err.Error()
		} else {
			message = message + ": " + e.Err.Error()
		}
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s decode error at offset %d: %s", e.Codec, e.Offset, message)
	}
	return fmt.Sprintf("%s decode error: %s", e.Codec, message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a Value that cannot be represented in a codec's
// wire format (for example a non-finite float in JSON).
type EncodeError struct {
	Codec  string
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s encode error: %s", e.Codec, e.Reason)
}

// checkText rejects strings that are not valid UTF-8. JSON would
// replace the bad bytes with U+FFFD and CBOR text strings must be
// UTF-8, so neither codec can carry them unchanged.
func checkText(codecName, role, s string) error {
	if !utf8.ValidString(s) {
		return &EncodeError{Codec: codecName, Reason: fmt.Sprintf("%s %q is not valid UTF-8", role, s)}
	}
	return nil
}

// Lookup returns the codec registered under name ("json" or "cbor").
func Lookup(name string) (Codec, error) {
	switch name {
	case JSON.Name():
		return JSON, nil
	case CBOR.Name():
		return CBOR, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want %q or %q)", name, JSON.Name(), CBOR.Name())
	}
}

// ioFailure remembers the first non-EOF error returned by the wrapped
// reader, so frame readers can return I/O failures as-is instead of
// reporting them as malformed input.
type ioFailure struct {
	reader io.Reader
	err    error
}

func (f *ioFailure) Read(buffer []byte) (int, error) {
	count, err := f.reader.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) && f.err == nil {
		f.err = err
	}
	return count, err
}
