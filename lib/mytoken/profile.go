// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mytoken

import (
	"slices"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// Profile is the policy attached to a mytoken request: the capabilities
// the new mytoken carries, the restrictions on its use, and an optional
// rotation policy. The zero Profile is empty and valid; an empty
// profile asks for "no constraints" and encodes as {}.
//
// A Profile is mutable and not safe for concurrent mutation. Request
// builders copy it when it is attached, so later changes do not reach
// requests that were already built.
type Profile struct {
	capabilities []Capability
	restrictions []Restriction
	rotation     *Rotation
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{}
}

// AddCapabilities adds capabilities to the set. Capabilities already
// present are ignored; the first insertion fixes the output position.
func (p *Profile) AddCapabilities(capabilities ...Capability) {
	for _, capability := range capabilities {
		if !slices.Contains(p.capabilities, capability) {
			p.capabilities = append(p.capabilities, capability)
		}
	}
}

// AddRestrictions appends restrictions in order. Identical restrictions
// are all kept; the server applies every entry.
func (p *Profile) AddRestrictions(restrictions ...Restriction) {
	p.restrictions = append(p.restrictions, restrictions...)
}

// SetRotation replaces any previously set rotation.
func (p *Profile) SetRotation(rotation Rotation) {
	p.rotation = &rotation
}

// ClearRotation removes the rotation policy.
func (p *Profile) ClearRotation() {
	p.rotation = nil
}

// Capabilities returns the capability set in insertion order.
func (p *Profile) Capabilities() []Capability {
	return slices.Clone(p.capabilities)
}

func (p *Profile) HasCapability(capability Capability) bool {
	return slices.Contains(p.capabilities, capability)
}

// Restrictions returns the restrictions in the order they were added.
func (p *Profile) Restrictions() []Restriction {
	return slices.Clone(p.restrictions)
}

// Rotation returns the rotation policy and whether one is set.
func (p *Profile) Rotation() (Rotation, bool) {
	if p.rotation == nil {
		return Rotation{}, false
	}
	return *p.rotation, true
}

// IsEmpty reports whether the profile sets nothing.
func (p *Profile) IsEmpty() bool {
	return len(p.capabilities) == 0 && len(p.restrictions) == 0 && p.rotation == nil
}

// Clone returns an independent copy of p. Restriction and Rotation are
// immutable, so copying the containers is enough. Clone of nil is nil.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := &Profile{
		capabilities: slices.Clone(p.capabilities),
		restrictions: slices.Clone(p.restrictions),
	}
	if p.rotation != nil {
		rotation := *p.rotation
		clone.rotation = &rotation
	}
	return clone
}

// Equal reports whether both profiles encode identically.
func (p *Profile) Equal(other *Profile) bool {
	return p.Value().Equal(other.Value())
}

// Value returns the wire form. Keys are emitted only when set:
// "capabilities" (array of capability strings), "restrictions" (array
// of restriction objects) and "rotation" (object).
func (p *Profile) Value() codec.Value {
	object := codec.NewObject()
	if p == nil {
		return codec.ObjectValue(object)
	}
	if len(p.capabilities) > 0 {
		names := make([]codec.Value, len(p.capabilities))
		for index, capability := range p.capabilities {
			names[index] = codec.String(string(capability))
		}
		object.Set("capabilities", codec.Array(names...))
	}
	if len(p.restrictions) > 0 {
		restrictions := make([]codec.Value, len(p.restrictions))
		for index, restriction := range p.restrictions {
			restrictions[index] = restriction.Value()
		}
		object.Set("restrictions", codec.Array(restrictions...))
	}
	if p.rotation != nil {
		object.Set("rotation", p.rotation.Value())
	}
	return codec.ObjectValue(object)
}

// ProfileBuilder is the fluent form of Profile's mutators.
type ProfileBuilder struct {
	profile Profile
}

// NewProfileBuilder returns a builder for an empty profile.
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{}
}

// AddCapabilities appends capabilities, skipping ones already present.
func (b *ProfileBuilder) AddCapabilities(capabilities ...Capability) *ProfileBuilder {
	b.profile.AddCapabilities(capabilities...)
	return b
}

// AddRestrictions appends restrictions. Duplicates are kept.
func (b *ProfileBuilder) AddRestrictions(restrictions ...Restriction) *ProfileBuilder {
	b.profile.AddRestrictions(restrictions...)
	return b
}

// SetRotation replaces the rotation policy.
func (b *ProfileBuilder) SetRotation(rotation Rotation) *ProfileBuilder {
	b.profile.SetRotation(rotation)
	return b
}

// Build returns a copy of the accumulated profile.
func (b *ProfileBuilder) Build() *Profile {
	return b.profile.Clone()
}
