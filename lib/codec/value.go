// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// Kind identifies which variant of the structured-value tree a Value
// holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one node of the structured-value tree that sits between the
// typed request/response models and the wire. The zero Value is null.
//
// Value has no String method. Response trees carry token secrets and
// must not be printed.
type Value struct {
	kind     Kind
	flag     bool
	integer  int64
	floating float64
	text     string
	items    []Value
	object   *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, integer: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, floating: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array returns an array value holding items. The slice is copied.
func Array(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindArray, items: copied}
}

// Strings returns an array of string values.
func Strings(items []string) Value {
	values := make([]Value, len(items))
	for index, item := range items {
		values[index] = String(item)
	}
	return Value{kind: KindArray, items: values}
}

// ObjectValue wraps an object. A nil object yields an empty object.
func ObjectValue(object *Object) Value {
	if object == nil {
		object = NewObject()
	}
	return Value{kind: KindObject, object: object}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	return v.flag, v.kind == KindBool
}

func (v Value) AsInt() (int64, bool) {
	return v.integer, v.kind == KindInt
}

func (v Value) AsFloat() (float64, bool) {
	return v.floating, v.kind == KindFloat
}

func (v Value) AsString() (string, bool) {
	return v.text, v.kind == KindString
}

// AsArray returns the array items. The returned slice is shared with
// v; callers must not modify it.
func (v Value) AsArray() ([]Value, bool) {
	return v.items, v.kind == KindArray
}

func (v Value) AsObject() (*Object, bool) {
	return v.object, v.kind == KindObject
}

// Equal reports deep equality. Objects are equal when they hold the
// same keys in the same order with equal values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.flag == other.flag
	case KindInt:
		return v.integer == other.integer
	case KindFloat:
		return v.floating == other.floating
	case KindString:
		return v.text == other.text
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for index := range v.items {
			if !v.items[index].Equal(other.items[index]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.object.Equal(other.object)
	}
	return false
}

// Object is a string-keyed map that remembers insertion order. Order
// matters on the wire only for readability, but keeping it makes
// encoding deterministic and lets tests compare encoded bytes.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value Value) *Object {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	value, exists := o.values[key]
	return value, exists
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, exists := o.Get(key)
	return exists
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Equal reports whether both objects hold the same keys in the same
// order with equal values. A nil object equals an empty one.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for index := 0; index < o.Len(); index++ {
		key := o.keys[index]
		if other.keys[index] != key {
			return false
		}
		if !o.values[key].Equal(other.values[key]) {
			return false
		}
	}
	return true
}
