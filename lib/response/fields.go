// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"net/url"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// fields wraps the top-level response object with typed extraction.
type fields struct {
	object *codec.Object
}

func asFields(value codec.Value) (fields, error) {
	object, ok := value.AsObject()
	if !ok {
		return fields{}, &FieldError{Expected: "object", Actual: value.Kind().String(), Err: ErrTypeMismatch}
	}
	return fields{object: object}, nil
}

func (f fields) lookup(name string, expected codec.Kind, required bool) (codec.Value, bool, error) {
	value, ok := f.object.Get(name)
	if !ok {
		if required {
			return codec.Value{}, false, &FieldError{Field: name, Err: ErrMissingField}
		}
		return codec.Value{}, false, nil
	}
	if value.Kind() != expected {
		return codec.Value{}, false, &FieldError{
			Field:    name,
			Expected: expected.String(),
			Actual:   value.Kind().String(),
			Err:      ErrTypeMismatch,
		}
	}
	return value, true, nil
}

func (f fields) requireString(name string) (string, error) {
	value, _, err := f.lookup(name, codec.KindString, true)
	if err != nil {
		return "", err
	}
	text, _ := value.AsString()
	return text, nil
}

// optionalString returns "" when the key is absent. A present key
// with a non-string value is still an error.
func (f fields) optionalString(name string) (string, error) {
	value, present, err := f.lookup(name, codec.KindString, false)
	if err != nil || !present {
		return "", err
	}
	text, _ := value.AsString()
	return text, nil
}

// requireTimestamp returns a non-negative integer unix time.
func (f fields) requireTimestamp(name string) (int64, error) {
	value, _, err := f.lookup(name, codec.KindInt, true)
	if err != nil {
		return 0, err
	}
	seconds, _ := value.AsInt()
	if seconds < 0 {
		return 0, &FieldError{Field: name, Expected: "non-negative unix time", Actual: "negative integer", Err: ErrInvalidValue}
	}
	return seconds, nil
}

// requireIssuer returns a string that parses as an absolute URL.
func (f fields) requireIssuer(name string) (string, error) {
	issuer, err := f.requireString(name)
	if err != nil {
		return "", err
	}
	parsed, parseErr := url.Parse(issuer)
	if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &FieldError{Field: name, Expected: "absolute URL", Actual: issuer, Err: ErrInvalidValue}
	}
	return issuer, nil
}

func (f fields) stringList(name string, required bool) ([]string, bool, error) {
	value, present, err := f.lookup(name, codec.KindArray, required)
	if err != nil || !present {
		return nil, false, err
	}
	items, _ := value.AsArray()
	result := make([]string, len(items))
	for index, item := range items {
		text, ok := item.AsString()
		if !ok {
			return nil, false, &FieldError{
				Field:    name,
				Expected: "array of strings",
				Actual:   "array containing " + item.Kind().String(),
				Err:      ErrTypeMismatch,
			}
		}
		result[index] = text
	}
	return result, true, nil
}
