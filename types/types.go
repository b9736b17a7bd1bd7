// Package types defines the core data types shared by inherent
// providers, inherent modules and the block executive.
//
// Wire-facing types are plain Go structs with cramberry struct tags
// for deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

import (
	"fmt"
	"strconv"
)

// IdentifierSize is the width of an inherent identifier in bytes.
const IdentifierSize = 8

// Identifier names one inherent-data channel. Identifiers are compared
// by value and must be unique among the channels of a runtime.
type Identifier [IdentifierSize]byte

// NewIdentifier builds an Identifier from an exactly 8-byte string.
func NewIdentifier(s string) (Identifier, error) {
	var id Identifier
	if len(s) != IdentifierSize {
		return id, fmt.Errorf("inherent identifier must be %d bytes, got %d (%q)", IdentifierSize, len(s), s)
	}
	copy(id[:], s)
	return id, nil
}

// MustIdentifier is like NewIdentifier but panics on a malformed tag.
// Intended for package-level channel constants.
func MustIdentifier(s string) Identifier {
	id, err := NewIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders printable identifiers as text and anything else as hex.
func (id Identifier) String() string {
	for _, b := range id {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("0x%x", id[:])
		}
	}
	return string(id[:])
}

// BlockNumber is the height of a block.
type BlockNumber uint64

func (n BlockNumber) String() string { return strconv.FormatUint(uint64(n), 10) }

// Weight is the computational cost reported by hooks and calls.
// Cost accounting is not modelled; hooks report ZeroWeight.
type Weight uint64

// ZeroWeight is the weight reported by hooks that do no metered work.
const ZeroWeight Weight = 0
