package types

import (
	"errors"
	"fmt"
)

// ErrBadOrigin is returned when a call is dispatched from an origin
// it does not accept.
var ErrBadOrigin = errors.New("bad origin")

// AccountID identifies the signer of an extrinsic.
type AccountID [32]byte

// OriginKind classifies where a dispatched call came from.
type OriginKind uint8

const (
	// OriginNone: the call was injected by the block-construction path
	// itself. Inherents are dispatched with this origin.
	OriginNone OriginKind = iota
	// OriginSigned: the call was submitted and signed by an account.
	OriginSigned
	// OriginRoot: the call was dispatched with elevated privileges.
	OriginRoot
)

func (k OriginKind) String() string {
	switch k {
	case OriginNone:
		return "None"
	case OriginSigned:
		return "Signed"
	case OriginRoot:
		return "Root"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Origin is the dispatch origin of a call.
type Origin struct {
	Kind   OriginKind
	Signer AccountID // Only meaningful for OriginSigned.
}

// NoneOrigin returns the origin used for inherents.
func NoneOrigin() Origin { return Origin{Kind: OriginNone} }

// SignedOrigin returns an origin signed by who.
func SignedOrigin(who AccountID) Origin {
	return Origin{Kind: OriginSigned, Signer: who}
}

// RootOrigin returns the privileged origin.
func RootOrigin() Origin { return Origin{Kind: OriginRoot} }

// EnsureNone fails with ErrBadOrigin unless o is the none origin.
func EnsureNone(o Origin) error {
	if o.Kind != OriginNone {
		return fmt.Errorf("%w: expected None, got %s", ErrBadOrigin, o.Kind)
	}
	return nil
}
