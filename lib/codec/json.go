// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// JSON is the codec spoken by oidc-agent: one JSON object per
// connection in each direction.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (c jsonCodec) Encode(value Value) ([]byte, error) {
	var buffer bytes.Buffer
	if err := c.encode(&buffer, value); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (c jsonCodec) encode(buffer *bytes.Buffer, value Value) error {
	switch value.kind {
	case KindNull:
		buffer.WriteString("null")
	case KindBool:
		buffer.WriteString(strconv.FormatBool(value.flag))
	case KindInt:
		buffer.WriteString(strconv.FormatInt(value.integer, 10))
	case KindFloat:
		if math.IsNaN(value.floating) || math.IsInf(value.floating, 0) {
			return &EncodeError{Codec: c.Name(), Reason: fmt.Sprintf("unsupported float value %v", value.floating)}
		}
		text := strconv.FormatFloat(value.floating, 'g', -1, 64)
		// Keep integral floats distinguishable from ints on the way back.
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		buffer.WriteString(text)
	case KindString:
		if err := checkText(c.Name(), "string", value.text); err != nil {
			return err
		}
		writeJSONString(buffer, value.text)
	case KindArray:
		buffer.WriteByte('[')
		for index, item := range value.items {
			if index > 0 {
				buffer.WriteByte(',')
			}
			if err := c.encode(buffer, item); err != nil {
				return err
			}
		}
		buffer.WriteByte(']')
	case KindObject:
		buffer.WriteByte('{')
		for index, key := range value.object.keys {
			if index > 0 {
				buffer.WriteByte(',')
			}
			if err := checkText(c.Name(), "object key", key); err != nil {
				return err
			}
			writeJSONString(buffer, key)
			buffer.WriteByte(':')
			if err := c.encode(buffer, value.object.values[key]); err != nil {
				return err
			}
		}
		buffer.WriteByte('}')
	default:
		return &EncodeError{Codec: c.Name(), Reason: fmt.Sprintf("unknown value kind %v", value.kind)}
	}
	return nil
}

// writeJSONString appends s as a JSON string literal. HTML escaping is
// off: the daemon is not a browser, and "<" in a scope string should
// stay "<".
func writeJSONString(buffer *bytes.Buffer, s string) {
	var scratch bytes.Buffer
	encoder := json.NewEncoder(&scratch)
	encoder.SetEscapeHTML(false)
	// Encoding a Go string cannot fail.
	_ = encoder.Encode(s)
	buffer.Write(bytes.TrimSuffix(scratch.Bytes(), []byte{'\n'}))
}

func (c jsonCodec) Decode(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := c.decodeValue(decoder, 0)
	if err != nil {
		return Value{}, err
	}

	offset := decoder.InputOffset()
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return Value{}, &DecodeError{Codec: c.Name(), Offset: offset, Reason: "trailing data after value"}
	}
	return value, nil
}

func (c jsonCodec) decodeValue(decoder *json.Decoder, depth int) (Value, error) {
	offset := decoder.InputOffset()
	token, err := decoder.Token()
	if err != nil {
		return Value{}, c.tokenError(err, offset)
	}

	switch token := token.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(token), nil
	case string:
		return String(token), nil
	case json.Number:
		return c.decodeNumber(token, offset)
	case json.Delim:
		if depth >= maxDepth {
			return Value{}, &DecodeError{Codec: c.Name(), Offset: offset, Reason: fmt.Sprintf("nesting deeper than %d", maxDepth)}
		}
		switch token {
		case '[':
			return c.decodeArray(decoder, depth+1)
		case '{':
			return c.decodeObject(decoder, depth+1)
		}
	}
	return Value{}, &DecodeError{Codec: c.Name(), Offset: offset, Reason: fmt.Sprintf("unexpected token %v", token)}
}

func (c jsonCodec) decodeArray(decoder *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for decoder.More() {
		item, err := c.decodeValue(decoder, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	offset := decoder.InputOffset()
	if _, err := decoder.Token(); err != nil {
		return Value{}, c.tokenError(err, offset)
	}
	return Value{kind: KindArray, items: items}, nil
}

func (c jsonCodec) decodeObject(decoder *json.Decoder, depth int) (Value, error) {
	object := NewObject()
	for decoder.More() {
		offset := decoder.InputOffset()
		token, err := decoder.Token()
		if err != nil {
			return Value{}, c.tokenError(err, offset)
		}
		key, ok := token.(string)
		if !ok {
			return Value{}, &DecodeError{Codec: c.Name(), Offset: offset, Reason: "object key is not a string"}
		}
		if object.Has(key) {
			return Value{}, &DecodeError{Codec: c.Name(), Offset: offset, Reason: fmt.Sprintf("duplicate object key %q", key)}
		}
		item, err := c.decodeValue(decoder, depth)
		if err != nil {
			return Value{}, err
		}
		object.Set(key, item)
	}
	offset := decoder.InputOffset()
	if _, err := decoder.Token(); err != nil {
		return Value{}, c.tokenError(err, offset)
	}
	return ObjectValue(object), nil
}

func (c jsonCodec) decodeNumber(number json.Number, offset int64) (Value, error) {
	text := number.String()
	if !strings.ContainsAny(text, ".eE") {
		if integer, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(integer), nil
		}
		// Out of int64 range: fall through and keep it as a float
		// rather than rejecting an otherwise valid document.
	}
	floating, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, &DecodeError{Codec: c.Name(), Offset: offset, Reason: fmt.Sprintf("invalid number %q", text), Err: err}
	}
	return Float(floating), nil
}

func (c jsonCodec) tokenError(err error, offset int64) error {
	var syntaxError *json.SyntaxError
	switch {
	case errors.As(err, &syntaxError):
		return &DecodeError{Codec: c.Name(), Offset: syntaxError.Offset, Reason: "syntax error", Err: err}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &DecodeError{Codec: c.Name(), Offset: offset, Reason: "unexpected end of input"}
	default:
		return &DecodeError{Codec: c.Name(), Offset: offset, Err: err}
	}
}

func (c jsonCodec) ReadFrame(r io.Reader) ([]byte, error) {
	reader := &ioFailure{reader: r}
	decoder := json.NewDecoder(reader)

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		if reader.err != nil {
			return nil, reader.err
		}
		var syntaxError *json.SyntaxError
		switch {
		case errors.Is(err, io.EOF):
			return nil, &DecodeError{Codec: c.Name(), Offset: 0, Reason: "stream closed before a value was received"}
		case errors.As(err, &syntaxError):
			return nil, &DecodeError{Codec: c.Name(), Offset: syntaxError.Offset, Reason: "syntax error", Err: err}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, &DecodeError{Codec: c.Name(), Offset: decoder.InputOffset(), Reason: "stream closed inside a value"}
		default:
			return nil, &DecodeError{Codec: c.Name(), Offset: -1, Err: err}
		}
	}
	return []byte(raw), nil
}
