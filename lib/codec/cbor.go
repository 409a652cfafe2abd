// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): smallest integer and float encodings, no
// indefinite-length items. Only scalars go through it; containers are
// written head-by-head so object key order is kept as built instead of
// being re-sorted.
var encMode cbor.EncMode

// decMode decodes scalars. Containers are walked by hand (see
// cborDecoder) so the decoded tree keeps the sender's key order.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Any-typed targets only ever see scalars here, but keep map
		// decoding string-keyed in case that changes.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		UTF8:           cbor.UTF8RejectInvalid,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR encodes Value trees as RFC 8949 CBOR. oidc-agent itself speaks
// JSON; CBOR is for relays and sockets that carry the same messages in
// binary form.
var CBOR Codec = cborCodec{}

type cborCodec struct{}

func (cborCodec) Name() string { return "cbor" }

const (
	cborMajorUnsigned = 0
	cborMajorNegative = 1
	cborMajorBytes    = 2
	cborMajorText     = 3
	cborMajorArray    = 4
	cborMajorMap      = 5
	cborMajorTag      = 6
	cborMajorSimple   = 7
)

func (c cborCodec) Encode(value Value) ([]byte, error) {
	var buffer bytes.Buffer
	if err := c.encode(&buffer, value); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (c cborCodec) encode(buffer *bytes.Buffer, value Value) error {
	var scalar any
	switch value.kind {
	case KindNull:
		scalar = nil
	case KindBool:
		scalar = value.flag
	case KindInt:
		scalar = value.integer
	case KindFloat:
		scalar = value.floating
	case KindString:
		if err := checkText(c.Name(), "string", value.text); err != nil {
			return err
		}
		scalar = value.text
	case KindArray:
		writeCBORHead(buffer, cborMajorArray, uint64(len(value.items)))
		for _, item := range value.items {
			if err := c.encode(buffer, item); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		writeCBORHead(buffer, cborMajorMap, uint64(value.object.Len()))
		for _, key := range value.object.keys {
			if err := checkText(c.Name(), "object key", key); err != nil {
				return err
			}
			if err := c.encode(buffer, String(key)); err != nil {
				return err
			}
			if err := c.encode(buffer, value.object.values[key]); err != nil {
				return err
			}
		}
		return nil
	default:
		return &EncodeError{Codec: c.Name(), Reason: fmt.Sprintf("unknown value kind %v", value.kind)}
	}

	data, err := encMode.Marshal(scalar)
	if err != nil {
		return &EncodeError{Codec: c.Name(), Reason: err.Error()}
	}
	buffer.Write(data)
	return nil
}

// writeCBORHead writes a data item head with the shortest argument
// encoding.
func writeCBORHead(buffer *bytes.Buffer, major byte, argument uint64) {
	initial := major << 5
	switch {
	case argument < 24:
		buffer.WriteByte(initial | byte(argument))
	case argument <= math.MaxUint8:
		buffer.WriteByte(initial | 24)
		buffer.WriteByte(byte(argument))
	case argument <= math.MaxUint16:
		buffer.WriteByte(initial | 25)
		buffer.Write(binary.BigEndian.AppendUint16(nil, uint16(argument)))
	case argument <= math.MaxUint32:
		buffer.WriteByte(initial | 26)
		buffer.Write(binary.BigEndian.AppendUint32(nil, uint32(argument)))
	default:
		buffer.WriteByte(initial | 27)
		buffer.Write(binary.BigEndian.AppendUint64(nil, argument))
	}
}

func (c cborCodec) Decode(data []byte) (Value, error) {
	decoder := &cborDecoder{data: data}
	value, err := decoder.value(0)
	if err != nil {
		return Value{}, err
	}
	if decoder.position != len(data) {
		return Value{}, decoder.fail("trailing data after value", nil)
	}
	return value, nil
}

// cborDecoder walks one CBOR data item. Containers are parsed here;
// scalars are handed to decMode.UnmarshalFirst.
type cborDecoder struct {
	data     []byte
	position int
}

func (d *cborDecoder) fail(reason string, err error) *DecodeError {
	return &DecodeError{Codec: "cbor", Offset: int64(d.position), Reason: reason, Err: err}
}

func (d *cborDecoder) value(depth int) (Value, error) {
	if d.position >= len(d.data) {
		return Value{}, d.fail("unexpected end of input", nil)
	}

	switch d.data[d.position] >> 5 {
	case cborMajorArray:
		if depth >= maxDepth {
			return Value{}, d.fail(fmt.Sprintf("nesting deeper than %d", maxDepth), nil)
		}
		count, err := d.containerLength(1)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, count)
		for range count {
			item, err := d.value(depth + 1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindArray, items: items}, nil

	case cborMajorMap:
		if depth >= maxDepth {
			return Value{}, d.fail(fmt.Sprintf("nesting deeper than %d", maxDepth), nil)
		}
		count, err := d.containerLength(2)
		if err != nil {
			return Value{}, err
		}
		object := NewObject()
		for range count {
			if d.position >= len(d.data) {
				return Value{}, d.fail("unexpected end of input", nil)
			}
			if d.data[d.position]>>5 != cborMajorText {
				return Value{}, d.fail("map key is not a text string", nil)
			}
			keyOffset := d.position
			key, err := d.value(depth + 1)
			if err != nil {
				return Value{}, err
			}
			if object.Has(key.text) {
				d.position = keyOffset
				return Value{}, d.fail(fmt.Sprintf("duplicate map key %q", key.text), nil)
			}
			item, err := d.value(depth + 1)
			if err != nil {
				return Value{}, err
			}
			object.Set(key.text, item)
		}
		return ObjectValue(object), nil

	case cborMajorBytes:
		return Value{}, d.fail("byte strings are not supported", nil)
	case cborMajorTag:
		return Value{}, d.fail("tagged items are not supported", nil)
	}

	return d.scalar()
}

// containerLength reads an array or map head and returns its item
// count. minimumItemSize is the smallest encoding of one entry, used
// to reject lengths the remaining input cannot possibly hold before
// allocating for them.
func (d *cborDecoder) containerLength(minimumItemSize int) (int, error) {
	start := d.position
	additional := d.data[d.position] & 0x1f
	d.position++

	var width int
	switch {
	case additional < 24:
		return d.checkLength(start, uint64(additional), minimumItemSize)
	case additional == 24:
		width = 1
	case additional == 25:
		width = 2
	case additional == 26:
		width = 4
	case additional == 27:
		width = 8
	case additional == 31:
		d.position = start
		return 0, d.fail("indefinite-length containers are not supported", nil)
	default:
		d.position = start
		return 0, d.fail(fmt.Sprintf("malformed head (additional information %d)", additional), nil)
	}

	if len(d.data)-d.position < width {
		d.position = start
		return 0, d.fail("unexpected end of input", nil)
	}
	var length uint64
	for _, b := range d.data[d.position : d.position+width] {
		length = length<<8 | uint64(b)
	}
	d.position += width
	return d.checkLength(start, length, minimumItemSize)
}

func (d *cborDecoder) checkLength(start int, length uint64, minimumItemSize int) (int, error) {
	remaining := uint64(len(d.data) - d.position)
	if length > remaining/uint64(minimumItemSize) {
		d.position = start
		return 0, d.fail(fmt.Sprintf("container length %d exceeds remaining input", length), nil)
	}
	return int(length), nil
}

func (d *cborDecoder) scalar() (Value, error) {
	var item any
	rest, err := decMode.UnmarshalFirst(d.data[d.position:], &item)
	if err != nil {
		return Value{}, d.fail("malformed item", err)
	}

	var value Value
	switch item := item.(type) {
	case nil:
		value = Null()
	case bool:
		value = Bool(item)
	case uint64:
		if item > math.MaxInt64 {
			return Value{}, d.fail(fmt.Sprintf("integer %d out of range", item), nil)
		}
		value = Int(int64(item))
	case int64:
		value = Int(item)
	case float64:
		value = Float(item)
	case string:
		value = String(item)
	default:
		return Value{}, d.fail(fmt.Sprintf("unsupported item of type %T", item), nil)
	}

	d.position = len(d.data) - len(rest)
	return value, nil
}

func (c cborCodec) ReadFrame(r io.Reader) ([]byte, error) {
	reader := &ioFailure{reader: r}
	decoder := decMode.NewDecoder(reader)

	var raw cbor.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		if reader.err != nil {
			return nil, reader.err
		}
		switch {
		case errors.Is(err, io.EOF):
			return nil, &DecodeError{Codec: c.Name(), Offset: 0, Reason: "stream closed before a value was received"}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, &DecodeError{Codec: c.Name(), Offset: int64(decoder.NumBytesRead()), Reason: "stream closed inside a value"}
		default:
			return nil, &DecodeError{Codec: c.Name(), Offset: int64(decoder.NumBytesRead()), Reason: "malformed item", Err: err}
		}
	}
	return []byte(raw), nil
}
