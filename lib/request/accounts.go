// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import "github.com/bureau-foundation/oidcagent/lib/codec"

// LoadedAccountsRequest asks the daemon which account configurations
// are currently loaded. It has no fields.
type LoadedAccountsRequest struct{}

// NewLoadedAccountsRequest returns the request. It cannot fail to
// build, so there is no builder.
func NewLoadedAccountsRequest() LoadedAccountsRequest { return LoadedAccountsRequest{} }

// Kind returns KindLoadedAccounts.
func (LoadedAccountsRequest) Kind() Kind { return KindLoadedAccounts }

// Value returns the wire form, {"request":"loaded_accounts"}.
func (LoadedAccountsRequest) Value() codec.Value {
	return codec.ObjectValue(header(KindLoadedAccounts))
}
