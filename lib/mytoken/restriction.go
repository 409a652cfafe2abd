// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mytoken

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// Restriction narrows when, where and how often a mytoken may be used.
// Every constraint is optional; only the ones that were set are sent.
// A Restriction is immutable once built, so it can be shared between
// profiles.
type Restriction struct {
	notBefore     time.Time
	expires       time.Time
	scopes        []string
	audiences     []string
	hosts         []string
	geoIPAllow    []string
	geoIPDisallow []string
	usagesAT      *uint64
	usagesOther   *uint64
}

// NotBefore returns the start of the validity window, or the zero time
// when unset.
func (r Restriction) NotBefore() time.Time { return r.notBefore }

// Expires returns the end of the validity window, or the zero time
// when unset.
func (r Restriction) Expires() time.Time { return r.expires }

// Scope returns the space-separated scope narrowing, or "" when unset.
func (r Restriction) Scope() string { return strings.Join(r.scopes, " ") }

func (r Restriction) Audiences() []string     { return slices.Clone(r.audiences) }
func (r Restriction) Hosts() []string         { return slices.Clone(r.hosts) }
func (r Restriction) GeoIPAllow() []string    { return slices.Clone(r.geoIPAllow) }
func (r Restriction) GeoIPDisallow() []string { return slices.Clone(r.geoIPDisallow) }

// UsagesAT returns the access-token usage ceiling and whether it is
// set.
func (r Restriction) UsagesAT() (uint64, bool) {
	if r.usagesAT == nil {
		return 0, false
	}
	return *r.usagesAT, true
}

// UsagesOther returns the ceiling on non-AT usages and whether it is
// set.
func (r Restriction) UsagesOther() (uint64, bool) {
	if r.usagesOther == nil {
		return 0, false
	}
	return *r.usagesOther, true
}

// IsEmpty reports whether no constraint is set. The server accepts an
// empty restriction but it restricts nothing.
func (r Restriction) IsEmpty() bool {
	return r.notBefore.IsZero() && r.expires.IsZero() &&
		r.scopes == nil && r.audiences == nil && r.hosts == nil &&
		r.geoIPAllow == nil && r.geoIPDisallow == nil &&
		r.usagesAT == nil && r.usagesOther == nil
}

// Equal reports whether both restrictions send the same constraints.
func (r Restriction) Equal(other Restriction) bool {
	return r.Value().Equal(other.Value())
}

// Value returns the wire form: an object holding only the set
// constraints, in the order nbf, exp, scope, audience, hosts,
// geoip_allow, geoip_disallow, usages_AT, usages_other.
func (r Restriction) Value() codec.Value {
	object := codec.NewObject()
	if !r.notBefore.IsZero() {
		object.Set("nbf", codec.Int(r.notBefore.Unix()))
	}
	if !r.expires.IsZero() {
		object.Set("exp", codec.Int(r.expires.Unix()))
	}
	if r.scopes != nil {
		object.Set("scope", codec.String(r.Scope()))
	}
	if r.audiences != nil {
		object.Set("audience", codec.Strings(r.audiences))
	}
	if r.hosts != nil {
		object.Set("hosts", codec.Strings(r.hosts))
	}
	if r.geoIPAllow != nil {
		object.Set("geoip_allow", codec.Strings(r.geoIPAllow))
	}
	if r.geoIPDisallow != nil {
		object.Set("geoip_disallow", codec.Strings(r.geoIPDisallow))
	}
	if r.usagesAT != nil {
		object.Set("usages_AT", codec.Int(int64(*r.usagesAT)))
	}
	if r.usagesOther != nil {
		object.Set("usages_other", codec.Int(int64(*r.usagesOther)))
	}
	return codec.ObjectValue(object)
}

// RestrictionBuilder accumulates constraints for one Restriction. The
// list-valued setters append; calling AddHosts twice keeps both sets.
type RestrictionBuilder struct {
	restriction Restriction
}

// NewRestrictionBuilder returns a builder with no constraints set.
func NewRestrictionBuilder() *RestrictionBuilder {
	return &RestrictionBuilder{}
}

// NotBefore sets the earliest time the mytoken may be used. Sent with
// one-second precision. The zero time.Time clears the constraint, so
// nbf is omitted from the wire form.
func (b *RestrictionBuilder) NotBefore(when time.Time) *RestrictionBuilder {
	b.restriction.notBefore = when.Truncate(time.Second)
	return b
}

// Expires sets the time after which the mytoken may no longer be used.
// Sent with one-second precision. The zero time.Time clears the
// constraint, so exp is omitted from the wire form.
func (b *RestrictionBuilder) Expires(when time.Time) *RestrictionBuilder {
	b.restriction.expires = when.Truncate(time.Second)
	return b
}

// AddScope appends scope values; on the wire they are joined with a
// single space.
func (b *RestrictionBuilder) AddScope(scopes ...string) *RestrictionBuilder {
	b.restriction.scopes = appendFields(b.restriction.scopes, scopes)
	return b
}

func (b *RestrictionBuilder) AddAudiences(audiences ...string) *RestrictionBuilder {
	b.restriction.audiences = appendOwned(b.restriction.audiences, audiences)
	return b
}

func (b *RestrictionBuilder) AddHosts(hosts ...string) *RestrictionBuilder {
	b.restriction.hosts = appendOwned(b.restriction.hosts, hosts)
	return b
}

// AddGeoIPAllow appends country codes the mytoken may be used from.
func (b *RestrictionBuilder) AddGeoIPAllow(countries ...string) *RestrictionBuilder {
	b.restriction.geoIPAllow = appendOwned(b.restriction.geoIPAllow, countries)
	return b
}

// AddGeoIPDisallow appends country codes the mytoken may not be used
// from.
func (b *RestrictionBuilder) AddGeoIPDisallow(countries ...string) *RestrictionBuilder {
	b.restriction.geoIPDisallow = appendOwned(b.restriction.geoIPDisallow, countries)
	return b
}

// UsagesAT caps how many access tokens may be obtained with the
// mytoken. Counts above math.MaxInt64 are clamped to it, the largest
// integer the wire form carries.
func (b *RestrictionBuilder) UsagesAT(count uint64) *RestrictionBuilder {
	count = min(count, math.MaxInt64)
	b.restriction.usagesAT = &count
	return b
}

// UsagesOther caps how many non-AT requests the mytoken may be used
// for. Counts are clamped like UsagesAT.
func (b *RestrictionBuilder) UsagesOther(count uint64) *RestrictionBuilder {
	count = min(count, math.MaxInt64)
	b.restriction.usagesOther = &count
	return b
}

// Build returns the accumulated Restriction. The builder may be reused;
// later calls do not affect restrictions already built.
func (b *RestrictionBuilder) Build() Restriction {
	built := b.restriction
	built.scopes = slices.Clone(built.scopes)
	built.audiences = slices.Clone(built.audiences)
	built.hosts = slices.Clone(built.hosts)
	built.geoIPAllow = slices.Clone(built.geoIPAllow)
	built.geoIPDisallow = slices.Clone(built.geoIPDisallow)
	built.usagesAT = clonePointer(built.usagesAT)
	built.usagesOther = clonePointer(built.usagesOther)
	return built
}

// appendOwned appends values to list, allocating a non-nil list even
// when values is empty so that "set to nothing" stays distinguishable
// from "unset".
func appendOwned(list, values []string) []string {
	if list == nil {
		list = make([]string, 0, len(values))
	}
	return append(list, values...)
}

// appendFields appends the whitespace-separated fields of each value.
func appendFields(list, values []string) []string {
	if list == nil {
		list = make([]string, 0, len(values))
	}
	for _, value := range values {
		list = append(list, strings.Fields(value)...)
	}
	return list
}
