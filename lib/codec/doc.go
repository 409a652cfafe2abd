// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the structured-value tree that every request
// and response passes through, and the wire codecs that turn it into
// bytes.
//
// [Value] is a recursive sum type: null, bool, int, float, string,
// array, and [Object] (a string-keyed map that keeps insertion order).
// Request models build a Value; response models read one. Neither
// knows which codec is in use, so codecs can be tested without any
// request semantics and request semantics without any codec.
//
// Two codecs implement [Codec]:
//
//   - [JSON] -- the oidc-agent wire format. Integers without a fraction
//     or exponent decode as ints; floats always encode with one, so
//     Decode(Encode(v)) reproduces v exactly.
//   - [CBOR] -- RFC 8949 with Core Deterministic scalar encoding
//     (fxamacker/cbor). Containers are written and parsed head by head
//     so object key order survives the round trip.
//
// Both codecs treat their input as untrusted: malformed bytes, trailing
// data, duplicate keys, and excessive nesting produce a [*DecodeError]
// carrying the byte offset, never a panic.
//
// [Codec.ReadFrame] reads exactly one complete value from a stream. The
// transport uses it to delimit responses: the value itself is the
// frame, no length prefix or newline is needed.
package codec
