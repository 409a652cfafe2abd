// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mytoken

import (
	"errors"
	"time"

	"github.com/bureau-foundation/oidcagent/lib/codec"
)

// ErrRotationTrigger is returned by RotationBuilder.Build when neither
// on_AT nor on_other is enabled.
var ErrRotationTrigger = errors.New("rotation requires on_AT or on_other to be enabled")

// Rotation describes when the mytoken server replaces a mytoken with a
// fresh one. Every field is optional on the wire; a flag explicitly set
// to false is sent as false. A Rotation is immutable once built.
type Rotation struct {
	onAT       *bool
	onOther    *bool
	lifetime   *int64
	autoRevoke *bool
}

// OnAT reports whether rotation on access-token requests is enabled,
// and whether the flag was set at all.
func (r Rotation) OnAT() (enabled, set bool) { return optionalBool(r.onAT) }

// OnOther reports whether rotation on other requests is enabled, and
// whether the flag was set at all.
func (r Rotation) OnOther() (enabled, set bool) { return optionalBool(r.onOther) }

// AutoRevoke reports whether the server revokes a rotated mytoken when
// an older generation is reused, and whether the flag was set at all.
func (r Rotation) AutoRevoke() (enabled, set bool) { return optionalBool(r.autoRevoke) }

// Lifetime returns the maximum lifetime of a rotated generation and
// whether it is set.
func (r Rotation) Lifetime() (time.Duration, bool) {
	if r.lifetime == nil {
		return 0, false
	}
	return time.Duration(*r.lifetime) * time.Second, true
}

// Equal reports whether both rotations send the same settings.
func (r Rotation) Equal(other Rotation) bool {
	return r.Value().Equal(other.Value())
}

// Value returns the wire form with only the set keys, in the order
// on_AT, on_other, lifetime, auto_revoke.
func (r Rotation) Value() codec.Value {
	object := codec.NewObject()
	if r.onAT != nil {
		object.Set("on_AT", codec.Bool(*r.onAT))
	}
	if r.onOther != nil {
		object.Set("on_other", codec.Bool(*r.onOther))
	}
	if r.lifetime != nil {
		object.Set("lifetime", codec.Int(*r.lifetime))
	}
	if r.autoRevoke != nil {
		object.Set("auto_revoke", codec.Bool(*r.autoRevoke))
	}
	return codec.ObjectValue(object)
}

// RotationBuilder accumulates rotation settings.
type RotationBuilder struct {
	rotation Rotation
}

// NewRotationBuilder returns a builder with nothing set. At least one
// of OnAT and OnOther must be enabled before Build.
func NewRotationBuilder() *RotationBuilder {
	return &RotationBuilder{}
}

// OnAT sets whether requesting an access token rotates the mytoken.
func (b *RotationBuilder) OnAT(enabled bool) *RotationBuilder {
	b.rotation.onAT = &enabled
	return b
}

// OnOther sets whether any other use rotates the mytoken.
func (b *RotationBuilder) OnOther(enabled bool) *RotationBuilder {
	b.rotation.onOther = &enabled
	return b
}

// Lifetime sets the maximum lifetime of one rotated generation. Sent
// in whole seconds; negative durations are sent as zero.
func (b *RotationBuilder) Lifetime(lifetime time.Duration) *RotationBuilder {
	seconds := max(int64(lifetime/time.Second), 0)
	b.rotation.lifetime = &seconds
	return b
}

// AutoRevoke sets whether reusing an older generation revokes the
// whole rotation chain.
func (b *RotationBuilder) AutoRevoke(enabled bool) *RotationBuilder {
	b.rotation.autoRevoke = &enabled
	return b
}

// Build returns the Rotation, or ErrRotationTrigger if neither trigger
// is enabled.
func (b *RotationBuilder) Build() (Rotation, error) {
	onAT, _ := optionalBool(b.rotation.onAT)
	onOther, _ := optionalBool(b.rotation.onOther)
	if !onAT && !onOther {
		return Rotation{}, ErrRotationTrigger
	}
	return Rotation{
		onAT:       clonePointer(b.rotation.onAT),
		onOther:    clonePointer(b.rotation.onOther),
		lifetime:   clonePointer(b.rotation.lifetime),
		autoRevoke: clonePointer(b.rotation.autoRevoke),
	}, nil
}

func optionalBool(flag *bool) (value, set bool) {
	if flag == nil {
		return false, false
	}
	return *flag, true
}

func clonePointer[T any](pointer *T) *T {
	if pointer == nil {
		return nil
	}
	copied := *pointer
	return &copied
}
