package runtime

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/store"
	"github.com/blockberries/inherents/types"
)

// Result codes of ApplyOutcome.
const (
	CodeOK uint32 = iota
	CodeDispatchFailed
	CodeUnknownModule
)

var (
	ErrDuplicateModule     = errors.New("inherents/runtime: duplicate module name")
	ErrDuplicateIdentifier = errors.New("inherents/runtime: duplicate inherent identifier")
	ErrBlockInProgress     = errors.New("inherents/runtime: block in progress")
	ErrUnknownModule       = errors.New("inherents/runtime: unknown module")
	// ErrInherentFailed is returned when an inherent extrinsic fails to
	// dispatch. The block is invalid.
	ErrInherentFailed = errors.New("inherents/runtime: inherent extrinsic failed")
	// ErrInherentViaPool rejects inherent calls submitted as ordinary
	// transactions.
	ErrInherentViaPool = errors.New("inherents/runtime: inherent call submitted as transaction")
	// ErrSignedInherent flags an inherent call that carries a signer.
	ErrSignedInherent = errors.New("inherents/runtime: inherent call carries a signer")
	// ErrInherentPosition flags an inherent placed after an ordinary
	// extrinsic.
	ErrInherentPosition = errors.New("inherents/runtime: inherent after non-inherent extrinsic")
	// ErrInherentCheckFailed is returned by ImportBlock when the block
	// fails its inherent checks.
	ErrInherentCheckFailed = errors.New("inherents/runtime: inherent check failed")
)

// Runtime executes blocks against a MemStore. Modules are registered
// before the first block and run in registration order.
type Runtime struct {
	log   zerolog.Logger
	guard *BlockGuard
	store *store.MemStore

	// Written by Register under the sequential lock and regMu.
	regMu    sync.RWMutex
	modules  []inherents.Module
	byName   map[string]inherents.Module
	inherent []inherents.InherentModule

	// Current block (held between InitializeBlock and FinalizeBlock).
	mu       sync.Mutex
	number   types.BlockNumber
	weight   types.Weight
	outcomes []types.ApplyOutcome
	last     *types.BlockNumber
}

// New creates a runtime over st.
func New(log zerolog.Logger, st *store.MemStore) *Runtime {
	return &Runtime{
		log:    log.With().Str("component", "runtime").Logger(),
		guard:  NewBlockGuard(),
		store:  st,
		byName: make(map[string]inherents.Module),
	}
}

// Register adds a module. Names must be unique, and so must the
// identifiers of inherent modules. It fails with ErrBlockInProgress
// unless the runtime is between blocks.
func (r *Runtime) Register(m inherents.Module) error {
	return r.guard.WhileIdle(func() error {
		r.regMu.Lock()
		defer r.regMu.Unlock()
		if _, ok := r.byName[m.Name()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name())
		}
		if im, ok := m.(inherents.InherentModule); ok {
			id := im.InherentIdentifier()
			for _, other := range r.inherent {
				if other.InherentIdentifier() == id {
					return fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateIdentifier, id, other.Name(), m.Name())
				}
			}
			r.inherent = append(r.inherent, im)
		} else if _, ok := m.(inherents.Identified); ok {
			r.log.Warn().Str("module", m.Name()).
				Msg("Module declares an inherent identifier but does not implement InherentModule")
		}
		r.modules = append(r.modules, m)
		r.byName[m.Name()] = m
		return nil
	})
}

// Store returns the runtime's state.
func (r *Runtime) Store() *store.MemStore { return r.store }

// Phase returns the current lifecycle phase.
func (r *Runtime) Phase() string { return r.guard.Phase() }

// LastFinalized returns the number of the last finalized block.
func (r *Runtime) LastFinalized() (types.BlockNumber, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return 0, false
	}
	return *r.last, true
}

// InitializeBlock opens block n and runs every module's OnInitialize.
func (r *Runtime) InitializeBlock(n types.BlockNumber) {
	r.guard.AcquireInitialize()

	var w types.Weight
	for _, m := range r.modules {
		w += m.OnInitialize(r.store, n)
	}

	r.mu.Lock()
	r.number = n
	r.weight = w
	r.outcomes = nil
	r.mu.Unlock()

	r.log.Debug().Stringer("block", n).Int("modules", len(r.modules)).Msg("Block initialized")
	r.guard.CompleteInitialize()
}

// ApplyExtrinsic dispatches one extrinsic into the open block.
//
// A failing ordinary call is recorded in the outcome and returns nil.
// A failing inherent call returns ErrInherentFailed: the block must be
// abandoned.
func (r *Runtime) ApplyExtrinsic(ext types.Extrinsic) (types.ApplyOutcome, error) {
	r.guard.AcquireApply()
	defer r.guard.ReleaseApply()

	r.mu.Lock()
	out := types.ApplyOutcome{Index: uint32(len(r.outcomes))}
	r.mu.Unlock()

	m, ok := r.byName[ext.Module]
	if !ok {
		out.Code = CodeUnknownModule
		out.Info = fmt.Sprintf("%s: %s", ErrUnknownModule, ext.Module)
		r.record(out)
		return out, nil
	}

	var events []types.Event
	sink := inherents.EventSinkFunc(func(ev types.Event) { events = append(events, ev) })
	err := m.Dispatch(r.store, sink, ext.Origin(), ext.Call)
	if err != nil {
		out.Code = CodeDispatchFailed
		out.Info = err.Error()
		if isInherentCall(m, ext.Call) {
			return out, fmt.Errorf("%w: %s.%s: %w", ErrInherentFailed, ext.Module, callName(ext.Call), err)
		}
		r.log.Debug().Err(err).Str("module", ext.Module).Msg("Extrinsic failed")
	} else {
		out.Events = events
	}
	r.record(out)
	return out, nil
}

func (r *Runtime) record(out types.ApplyOutcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, out)
	r.mu.Unlock()
}

// FinalizeBlock commits the open block and returns its outcome.
func (r *Runtime) FinalizeBlock() types.BlockOutcome {
	r.guard.AcquireFinalize()

	r.store.Commit()

	r.mu.Lock()
	outcome := types.BlockOutcome{
		Number:   r.number,
		Weight:   r.weight,
		Outcomes: r.outcomes,
	}
	n := r.number
	r.last = &n
	r.outcomes = nil
	r.mu.Unlock()

	r.log.Info().Stringer("block", outcome.Number).Int("extrinsics", len(outcome.Outcomes)).
		Msg("Block finalized")
	r.guard.CompleteFinalize()
	return outcome
}

// AbortBlock discards every change made by the open block.
func (r *Runtime) AbortBlock() {
	r.guard.Abort()
	r.store.Discard()
	r.mu.Lock()
	r.outcomes = nil
	r.mu.Unlock()
	r.log.Debug().Msg("Block aborted")
}

// InherentExtrinsics builds the inherent extrinsics offered by data,
// in module registration order.
func (r *Runtime) InherentExtrinsics(data *types.InherentData) []types.Extrinsic {
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	var exts []types.Extrinsic
	for _, m := range r.inherent {
		call, ok := m.CreateInherent(data)
		if !ok {
			continue
		}
		exts = append(exts, types.Extrinsic{Module: m.Name(), Call: call})
	}
	return exts
}

// CheckInherents checks block against the inherent data the node
// holds. Per-channel verdicts go into the result; structural defects
// of the block (signed or misplaced inherents, failing oracles) are
// returned as an aggregated error.
func (r *Runtime) CheckInherents(block types.Block, data *types.InherentData) (*types.CheckInherentsResult, error) {
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	result := types.NewCheckInherentsResult()
	var errs *multierror.Error

	present := make(map[string]bool)
	seenOrdinary := false
	for i, ext := range block.Extrinsics {
		m, ok := r.byName[ext.Module]
		if !ok || !isInherentCall(m, ext.Call) {
			seenOrdinary = true
			continue
		}
		if ext.Signer != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: extrinsic %d (%s)", ErrSignedInherent, i, ext.Module))
			continue
		}
		if seenOrdinary {
			errs = multierror.Append(errs, fmt.Errorf("%w: extrinsic %d (%s)", ErrInherentPosition, i, ext.Module))
		}
		present[ext.Module] = true
	}

	for _, m := range r.inherent {
		if present[m.Name()] {
			continue
		}
		ierr, err := m.IsInherentRequired(data)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: required check: %w", m.Name(), err))
			continue
		}
		if ierr == nil {
			continue
		}
		encoded, err := ierr.Encode()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: encode inherent error: %w", m.Name(), err))
			continue
		}
		if err := result.PutError(m.InherentIdentifier(), encoded, ierr.IsFatalError()); err != nil {
			// A fatal error is already recorded; the block is rejected
			// either way.
			r.log.Debug().Err(err).Str("module", m.Name()).Msg("Inherent error dropped")
			continue
		}
		ev := r.log.Warn()
		if ierr.IsFatalError() {
			ev = r.log.Error()
		}
		ev.Err(ierr).Str("module", m.Name()).Stringer("block", block.Number).Msg("Inherent missing from block")
	}

	return result, errs.ErrorOrNil()
}

// ValidateTransaction is the pool admission rule: ordinary
// transactions must address a known module and must not carry an
// inherent call.
func (r *Runtime) ValidateTransaction(ext types.Extrinsic) error {
	r.regMu.RLock()
	m, ok := r.byName[ext.Module]
	r.regMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, ext.Module)
	}
	if isInherentCall(m, ext.Call) {
		return fmt.Errorf("%w: %s.%s", ErrInherentViaPool, ext.Module, callName(ext.Call))
	}
	return nil
}

// ImportBlock checks and re-executes a block received from another
// node. A block failing its inherent checks or any inherent dispatch
// is rejected and leaves the state untouched.
func (r *Runtime) ImportBlock(block types.Block, data *types.InherentData) (types.BlockOutcome, error) {
	result, err := r.CheckInherents(block, data)
	if err != nil {
		return types.BlockOutcome{}, fmt.Errorf("%w: block %s: %w", ErrInherentCheckFailed, block.Number, err)
	}
	if result.FatalError() {
		return types.BlockOutcome{}, fmt.Errorf("%w: block %s: %d fatal inherent error(s)",
			ErrInherentCheckFailed, block.Number, len(result.Errors()))
	}
	for _, e := range result.Errors() {
		r.log.Warn().Stringer("inherent", e.Identifier).Stringer("block", block.Number).
			Msg("Non-fatal inherent error on import")
	}

	r.InitializeBlock(block.Number)
	for _, ext := range block.Extrinsics {
		if _, err := r.ApplyExtrinsic(ext); err != nil {
			r.AbortBlock()
			return types.BlockOutcome{}, err
		}
	}
	return r.FinalizeBlock(), nil
}

func isInherentCall(m inherents.Module, call types.Call) bool {
	im, ok := m.(inherents.InherentModule)
	return ok && im.IsInherent(call)
}

func callName(call types.Call) string {
	if call == nil {
		return "<nil>"
	}
	return call.CallName()
}
