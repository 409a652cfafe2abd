// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"testing"
	"testing/iotest"
)

func TestCBORRoundtrip(t *testing.T) {
	original := sampleTree()

	data, err := CBOR.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := CBOR.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("roundtrip mismatch for %x", data)
	}
}

func TestCBORKeepsKeyOrder(t *testing.T) {
	// Core Deterministic Encoding would sort these; the codec must not.
	original := ObjectValue(NewObject().Set("zeta", Int(1)).Set("alpha", Int(2)))

	data, err := CBOR.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := CBOR.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	object, _ := decoded.AsObject()
	if keys := object.Keys(); !slices.Equal(keys, []string{"zeta", "alpha"}) {
		t.Errorf("keys = %v, want [zeta alpha]", keys)
	}
}

func TestCBOREncodeExact(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  []byte
	}{
		{"small map", ObjectValue(NewObject().Set("a", Int(1))), []byte{0xa1, 0x61, 'a', 0x01}},
		{"negative int", Int(-1), []byte{0x20}},
		{"null", Null(), []byte{0xf6}},
		{"true", Bool(true), []byte{0xf5}},
		{"empty array", Array(), []byte{0x80}},
		{"shortest float", Float(1.5), []byte{0xf9, 0x3e, 0x00}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := CBOR.Encode(test.value)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !bytes.Equal(data, test.want) {
				t.Errorf("Encode = %x, want %x", data, test.want)
			}
		})
	}
}

func TestCBORLongArrayHead(t *testing.T) {
	items := make([]Value, 300)
	for index := range items {
		items[index] = Int(int64(index))
	}

	data, err := CBOR.Encode(Array(items...))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != 0x99 || data[1] != 0x01 || data[2] != 0x2c {
		t.Errorf("head = %x, want 99012c", data[:3])
	}

	decoded, err := CBOR.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, _ := decoded.AsArray()
	if len(got) != 300 {
		t.Errorf("decoded %d items, want 300", len(got))
	}
}

func TestCBORDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"truncated array", []byte{0x82, 0x01}},
		{"truncated length", []byte{0x99, 0x01}},
		{"indefinite array", []byte{0x9f, 0x01, 0xff}},
		{"reserved additional info", []byte{0x9c}},
		{"byte string", []byte{0x41, 0x00}},
		{"tag", []byte{0xc1, 0x1a, 0x00, 0x00, 0x00, 0x00}},
		{"non-text map key", []byte{0xa1, 0x01, 0x02}},
		{"duplicate map key", []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}},
		{"unsigned overflow", []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"length beyond input", []byte{0x9a, 0xff, 0xff, 0xff, 0xff}},
		{"trailing data", []byte{0x01, 0x01}},
		{"invalid utf-8", []byte{0x62, 0xff, 0xfe}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := CBOR.Decode(test.input)
			var decodeError *DecodeError
			if !errors.As(err, &decodeError) {
				t.Fatalf("Decode(%x) error = %v, want *DecodeError", test.input, err)
			}
			if decodeError.Codec != "cbor" {
				t.Errorf("Codec = %q, want cbor", decodeError.Codec)
			}
		})
	}
}

func TestCBOREncodeRejectsInvalidUTF8(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"string", String("a\xffb")},
		{"array item", Array(String("ok"), String("\xc3"))},
		{"object key", ObjectValue(NewObject().Set("k\xff", Int(1)))},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := CBOR.Encode(test.value)
			var encodeError *EncodeError
			if !errors.As(err, &encodeError) {
				t.Fatalf("Encode error = %v (output %x), want *EncodeError", err, data)
			}
			if encodeError.Codec != "cbor" {
				t.Errorf("Codec = %q, want cbor", encodeError.Codec)
			}
		})
	}

	original := ObjectValue(NewObject().Set("schlüssel", String("grüße ✓")))
	data, err := CBOR.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := CBOR.Decode(data)
	if err != nil || !decoded.Equal(original) {
		t.Errorf("roundtrip of %x = %v", data, err)
	}
}

func TestCBORDecodeNesting(t *testing.T) {
	atLimit := append(bytes.Repeat([]byte{0x81}, maxDepth-1), 0x80)
	if _, err := CBOR.Decode(atLimit); err != nil {
		t.Fatalf("Decode at maxDepth: %v", err)
	}

	tooDeep := append(bytes.Repeat([]byte{0x81}, maxDepth), 0x80)
	var decodeError *DecodeError
	if _, err := CBOR.Decode(tooDeep); !errors.As(err, &decodeError) {
		t.Fatalf("Decode beyond maxDepth error = %v, want *DecodeError", err)
	}
}

func TestCBORIntegerBounds(t *testing.T) {
	for _, integer := range []int64{0, 23, 24, 255, 256, 65536, math.MaxInt64, math.MinInt64} {
		data, err := CBOR.Encode(Int(integer))
		if err != nil {
			t.Fatalf("Encode(%d): %v", integer, err)
		}
		decoded, err := CBOR.Decode(data)
		if err != nil {
			t.Fatalf("Decode(%d): %v", integer, err)
		}
		if got, ok := decoded.AsInt(); !ok || got != integer {
			t.Errorf("roundtrip %d = %d (%v)", integer, got, decoded.Kind())
		}
	}
}

func TestCBORReadFrame(t *testing.T) {
	first, err := CBOR.Encode(ObjectValue(NewObject().Set("status", String("success"))))
	if err != nil {
		t.Fatal(err)
	}
	stream := append(append([]byte{}, first...), 0x01)

	frame, err := CBOR.ReadFrame(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(frame, first) {
		t.Errorf("frame = %x, want %x", frame, first)
	}
}

func TestCBORReadFrameTruncated(t *testing.T) {
	for _, input := range [][]byte{nil, {0xa1, 0x61}} {
		_, err := CBOR.ReadFrame(bytes.NewReader(input))
		var decodeError *DecodeError
		if !errors.As(err, &decodeError) {
			t.Errorf("ReadFrame(%x) error = %v, want *DecodeError", input, err)
		}
	}
}

func TestCBORReadFrameIOError(t *testing.T) {
	failure := errors.New("broken pipe")
	if _, err := CBOR.ReadFrame(iotest.ErrReader(failure)); !errors.Is(err, failure) {
		t.Fatalf("ReadFrame error = %v, want %v", err, failure)
	}
}
