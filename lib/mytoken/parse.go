// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mytoken

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// ErrInvalidProfile is wrapped by every ParseProfile error that is not
// a JSON syntax error.
var ErrInvalidProfile = errors.New("invalid mytoken profile")

// ParseProfile parses a profile document: the same object a mytoken
// request carries under "mytoken_profile", extended with // line
// comments, /* block comments */, and trailing commas. Unknown keys
// and capabilities outside the vocabulary are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	stripped := jsonc.ToJSON(data)

	value, err := codec.JSON.Decode(stripped)
	if err != nil {
		return nil, fmt.Errorf("parsing mytoken profile: %w", err)
	}

	return ProfileFromValue(value)
}

// ReadProfileFile reads and parses a JSONC profile document from disk.
func ReadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	profile, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return profile, nil
}

// ProfileFromValue converts the wire form produced by Profile.Value
// back into a Profile.
func ProfileFromValue(value codec.Value) (*Profile, error) {
	object, ok := value.AsObject()
	if !ok {
		return nil, invalid("profile", "expected object, got %s", value.Kind())
	}

	profile := NewProfile()
	for _, key := range object.Keys() {
		field, _ := object.Get(key)
		switch key {
		case "capabilities":
			names, err := stringList("capabilities", field)
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				capability, err := ParseCapability(name)
				if err != nil {
					return nil, fmt.Errorf("%w: capabilities: %w", ErrInvalidProfile, err)
				}
				profile.AddCapabilities(capability)
			}
		case "restrictions":
			items, ok := field.AsArray()
			if !ok {
				return nil, invalid("restrictions", "expected array, got %s", field.Kind())
			}
			for index, item := range items {
				restriction, err := restrictionFromValue(fmt.Sprintf("restrictions[%d]", index), item)
				if err != nil {
					return nil, err
				}
				profile.AddRestrictions(restriction)
			}
		case "rotation":
			rotation, err := rotationFromValue(field)
			if err != nil {
				return nil, err
			}
			profile.SetRotation(rotation)
		default:
			return nil, invalid(key, "unknown key")
		}
	}
	return profile, nil
}

func restrictionFromValue(path string, value codec.Value) (Restriction, error) {
	object, ok := value.AsObject()
	if !ok {
		return Restriction{}, invalid(path, "expected object, got %s", value.Kind())
	}

	builder := NewRestrictionBuilder()
	for _, key := range object.Keys() {
		field, _ := object.Get(key)
		fieldPath := path + "." + key
		switch key {
		case "nbf", "exp":
			seconds, ok := field.AsInt()
			if !ok {
				return Restriction{}, invalid(fieldPath, "expected integer unix time, got %s", field.Kind())
			}
			if key == "nbf" {
				builder.NotBefore(time.Unix(seconds, 0))
			} else {
				builder.Expires(time.Unix(seconds, 0))
			}
		case "scope":
			scope, ok := field.AsString()
			if !ok {
				return Restriction{}, invalid(fieldPath, "expected string, got %s", field.Kind())
			}
			builder.AddScope(scope)
		case "audience", "hosts", "geoip_allow", "geoip_disallow":
			values, err := stringList(fieldPath, field)
			if err != nil {
				return Restriction{}, err
			}
			switch key {
			case "audience":
				builder.AddAudiences(values...)
			case "hosts":
				builder.AddHosts(values...)
			case "geoip_allow":
				builder.AddGeoIPAllow(values...)
			case "geoip_disallow":
				builder.AddGeoIPDisallow(values...)
			}
		case "usages_AT", "usages_other":
			count, ok := field.AsInt()
			if !ok || count < 0 {
				return Restriction{}, invalid(fieldPath, "expected non-negative integer")
			}
			if key == "usages_AT" {
				builder.UsagesAT(uint64(count))
			} else {
				builder.UsagesOther(uint64(count))
			}
		default:
			return Restriction{}, invalid(fieldPath, "unknown key")
		}
	}
	return builder.Build(), nil
}

func rotationFromValue(value codec.Value) (Rotation, error) {
	object, ok := value.AsObject()
	if !ok {
		return Rotation{}, invalid("rotation", "expected object, got %s", value.Kind())
	}

	builder := NewRotationBuilder()
	for _, key := range object.Keys() {
		field, _ := object.Get(key)
		fieldPath := "rotation." + key
		switch key {
		case "on_AT", "on_other", "auto_revoke":
			flag, ok := field.AsBool()
			if !ok {
				return Rotation{}, invalid(fieldPath, "expected bool, got %s", field.Kind())
			}
			switch key {
			case "on_AT":
				builder.OnAT(flag)
			case "on_other":
				builder.OnOther(flag)
			case "auto_revoke":
				builder.AutoRevoke(flag)
			}
		case "lifetime":
			seconds, ok := field.AsInt()
			if !ok || seconds < 0 || seconds > math.MaxInt64/int64(time.Second) {
				return Rotation{}, invalid(fieldPath, "expected non-negative integer seconds")
			}
			builder.Lifetime(time.Duration(seconds) * time.Second)
		default:
			return Rotation{}, invalid(fieldPath, "unknown key")
		}
	}

	rotation, err := builder.Build()
	if err != nil {
		return Rotation{}, fmt.Errorf("%w: rotation: %w", ErrInvalidProfile, err)
	}
	return rotation, nil
}

func stringList(path string, value codec.Value) ([]string, error) {
	items, ok := value.AsArray()
	if !ok {
		return nil, invalid(path, "expected array of strings, got %s", value.Kind())
	}
	values := make([]string, len(items))
	for index, item := range items {
		text, ok := item.AsString()
		if !ok {
			return nil, invalid(fmt.Sprintf("%s[%d]", path, index), "expected string, got %s", item.Kind())
		}
		values[index] = text
	}
	return values, nil
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidProfile, path, fmt.Sprintf(format, args...))
}
