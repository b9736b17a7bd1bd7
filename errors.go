package inherents

import (
	"errors"
	"fmt"

	"github.com/blockberries/inherents/types"
)

// ErrUnknownCall is returned when a module is handed a call variant it
// does not define.
var ErrUnknownCall = errors.New("inherents: unknown call")

// PreconditionError signals an unrecoverable configuration defect in
// a provider, such as a strict provider holding no data.
//
// When the authoring pipeline receives a PreconditionError it must
// abandon the block being built rather than produce one without the
// inherent.
type PreconditionError struct {
	Identifier types.Identifier
	Reason     string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("PRECONDITION %s: %s", e.Identifier, e.Reason)
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(id types.Identifier, reason string) *PreconditionError {
	return &PreconditionError{Identifier: id, Reason: reason}
}

// IsPrecondition checks whether an error is a PreconditionError and returns it.
func IsPrecondition(err error) (*PreconditionError, bool) {
	var p *PreconditionError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}

// FatalError is a provider's verdict on an error reported for its
// channel: the block is invalid and must not be built or accepted.
type FatalError struct {
	Identifier types.Identifier
	Message    string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("inherent %s: %s", e.Identifier, e.Message)
}

// NewFatalError creates a new FatalError.
func NewFatalError(id types.Identifier, msg string) *FatalError {
	return &FatalError{Identifier: id, Message: msg}
}

// IsFatal checks whether an error is a FatalError and returns it.
func IsFatal(err error) (*FatalError, bool) {
	var f *FatalError
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
