// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mytoken models the profile attached to a mytoken request:
// the capabilities the new token carries, the restrictions on its use,
// and the rotation policy.
//
// The vocabulary is fixed by the mytoken server and mirrored here
// byte for byte. [Capability] values are the wire strings themselves
// ("AT", "tokeninfo:introspect", "read@settings:grants", ...);
// [TokenInfo], [ManageMytoken] and [Settings] select the permission
// variant of their family. [Restriction] and [Rotation] are built with
// their own builders and are immutable afterwards. [Profile] is the
// mutable container that holds them until it is attached to a request.
//
// Profiles can also be written by hand as JSONC documents and loaded
// with [ParseProfile] or [ReadProfileFile]:
//
//	{
//	  "capabilities": ["AT", "tokeninfo:introspect"],
//	  "restrictions": [
//	    {"usages_AT": 5, "geoip_allow": ["pl", "de"]}, // EU only
//	  ],
//	  "rotation": {"on_AT": true, "lifetime": 1000},
//	}
//
// Every type here converts to a [codec.Value] with Value; nothing in
// this package performs I/O except ReadProfileFile.
package mytoken
