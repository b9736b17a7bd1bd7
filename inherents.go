// Package inherents defines the protocol for injecting node-known
// ("inherent") data into a block exactly once per block.
//
// Two asymmetric roles meet through the per-block inherent-data bag:
// an off-chain [InherentDataProvider] packages external data into the
// bag while a block is authored, and an on-chain [InherentModule]
// turns the bag into a privileged call, stores the value for the rest
// of the block, and tells the executive whether a block lacking the
// inherent must be rejected.
//
// Optional capabilities such as [Identified] are discovered via Go
// type assertion.
package inherents

import (
	"context"

	"github.com/blockberries/inherents/store"
	"github.com/blockberries/inherents/types"
)

// InherentDataProvider supplies inherent data while a block is authored.
//
// Providers are polled once per block, in unspecified order; each must
// be correct regardless of the order in which it is polled.
type InherentDataProvider interface {
	// ProvideInherentData puts this provider's envelopes into data.
	// A provider with nothing to offer returns nil without writing.
	//
	// A *PreconditionError reports a configuration defect that must
	// abort the authoring attempt.
	ProvideInherentData(ctx context.Context, data *types.InherentData) error

	// TryHandleError classifies an error reported for a channel while
	// checking the inherents of a block.
	//
	// handled is false when id belongs to another provider. When
	// handled is true, err is the verdict: nil means ignorable, non-nil
	// means the block must not be built.
	TryHandleError(ctx context.Context, id types.Identifier, raw []byte) (handled bool, err error)
}

// Identified is implemented by providers and modules bound to a single
// channel.
type Identified interface {
	InherentIdentifier() types.Identifier
}

// Module is an on-chain state machine driven by the block executive.
// Modules hold no state of their own; the executive passes the block's
// store into every transition.
type Module interface {
	// Name routes extrinsics to the module. Unique within a runtime.
	Name() string

	// OnInitialize runs at the start of every block, before any call.
	OnInitialize(st store.Store, n types.BlockNumber) types.Weight

	// Dispatch applies call with the given origin, depositing any
	// events into ev.
	Dispatch(st store.Store, ev EventSink, origin types.Origin, call types.Call) error
}

// EventSink receives the events deposited by modules.
type EventSink interface {
	Deposit(ev types.Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(types.Event)

func (f EventSinkFunc) Deposit(ev types.Event) { f(ev) }

// InherentModule is a Module that consumes one inherent channel.
type InherentModule interface {
	Module
	Identified

	// CreateInherent builds the inherent call from the bag, or reports
	// false when the bag offers nothing usable.
	CreateInherent(data *types.InherentData) (types.Call, bool)

	// IsInherentRequired returns a non-nil InherentError when a block
	// lacking this inherent must be rejected. The second return value
	// reports a failure of the check itself.
	IsInherentRequired(data *types.InherentData) (InherentError, error)

	// IsInherent reports whether call originated from the inherent path.
	IsInherent(call types.Call) bool
}

// InherentError is an error reported while checking inherents. Its
// encoding travels back to the authoring node's providers.
type InherentError interface {
	error
	IsFatalError() bool
	Encode() ([]byte, error)
}
