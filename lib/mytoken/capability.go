// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mytoken

import (
	"errors"
	"fmt"
)

// ErrUnknownCapability is returned by ParseCapability for a string
// outside the mytoken capability vocabulary.
var ErrUnknownCapability = errors.New("unknown capability")

// Capability is a permission a mytoken may carry. The value is the
// exact wire string understood by the mytoken server.
type Capability string

const (
	// AT allows obtaining OIDC access tokens.
	AT Capability = "AT"

	// CreateMytoken allows creating sub-mytokens.
	CreateMytoken Capability = "create_mytoken"
)

// TokenInfoPermission selects which tokeninfo endpoints a mytoken may
// use.
type TokenInfoPermission uint8

const (
	TokenInfoAll TokenInfoPermission = iota
	TokenInfoIntrospect
	TokenInfoSubtokens
	TokenInfoHistory
)

// ManagementPermission selects which mytoken management operations a
// mytoken may perform.
type ManagementPermission uint8

const (
	ManagementAll ManagementPermission = iota
	ManagementList
	ManagementRevoke
	ManagementHistory
)

// SettingsPermission selects read or write access to the user's
// settings, optionally narrowed to grants or SSH grants.
type SettingsPermission uint8

const (
	SettingsAll SettingsPermission = iota
	SettingsGrants
	SettingsSSH
	SettingsReadAll
	SettingsReadGrants
	SettingsReadSSH
)

// TokenInfo returns the tokeninfo capability for permission.
func TokenInfo(permission TokenInfoPermission) Capability {
	switch permission {
	case TokenInfoIntrospect:
		return "tokeninfo:introspect"
	case TokenInfoSubtokens:
		return "tokeninfo:subtokens"
	case TokenInfoHistory:
		return "tokeninfo:history"
	default:
		return "tokeninfo"
	}
}

// ManageMytoken returns the manage_mytoken capability for permission.
func ManageMytoken(permission ManagementPermission) Capability {
	switch permission {
	case ManagementList:
		return "manage_mytoken:list"
	case ManagementRevoke:
		return "manage_mytoken:revoke"
	case ManagementHistory:
		return "manage_mytoken:history"
	default:
		return "manage_mytoken"
	}
}

// Settings returns the settings capability for permission.
func Settings(permission SettingsPermission) Capability {
	switch permission {
	case SettingsGrants:
		return "settings:grants"
	case SettingsSSH:
		return "settings:grants:ssh"
	case SettingsReadAll:
		return "read@settings"
	case SettingsReadGrants:
		return "read@settings:grants"
	case SettingsReadSSH:
		return "read@settings:grants:ssh"
	default:
		return "settings"
	}
}

var vocabulary = map[Capability]struct{}{
	AT:                               {},
	CreateMytoken:                    {},
	TokenInfo(TokenInfoAll):          {},
	TokenInfo(TokenInfoIntrospect):   {},
	TokenInfo(TokenInfoSubtokens):    {},
	TokenInfo(TokenInfoHistory):      {},
	ManageMytoken(ManagementAll):     {},
	ManageMytoken(ManagementList):    {},
	ManageMytoken(ManagementRevoke):  {},
	ManageMytoken(ManagementHistory): {},
	Settings(SettingsAll):            {},
	Settings(SettingsGrants):         {},
	Settings(SettingsSSH):            {},
	Settings(SettingsReadAll):        {},
	Settings(SettingsReadGrants):     {},
	Settings(SettingsReadSSH):        {},
}

// Valid reports whether c is part of the capability vocabulary.
func (c Capability) Valid() bool {
	_, ok := vocabulary[c]
	return ok
}

func (c Capability) String() string { return string(c) }

// ParseCapability converts a wire string into a Capability. The match
// is exact: the vocabulary is case-sensitive.
func ParseCapability(name string) (Capability, error) {
	capability := Capability(name)
	if !capability.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, name)
	}
	return capability, nil
}
