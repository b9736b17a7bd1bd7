// Package runtime is the block executive. It drives registered
// modules through the per-block lifecycle, builds and checks the
// inherent extrinsics of a block, and hosts the authoring pipeline
// that polls inherent-data providers.
package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// blockPhase represents a state in the block lifecycle state machine.
type blockPhase uint32

const (
	// phaseIdle: no block in progress. InitializeBlock is the only
	// valid next sequential call.
	phaseIdle blockPhase = iota
	// phaseInitializing: module OnInitialize hooks are running.
	phaseInitializing
	// phaseOpen: the block accepts extrinsics until FinalizeBlock.
	phaseOpen
	// phaseFinalizing: FinalizeBlock has been called. Waiting for the
	// commit to return.
	phaseFinalizing
)

func (p blockPhase) String() string {
	switch p {
	case phaseIdle:
		return "Idle"
	case phaseInitializing:
		return "Initializing"
	case phaseOpen:
		return "Open"
	case phaseFinalizing:
		return "Finalizing"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// BlockGuard enforces the block lifecycle state machine. Calling a
// transition from the wrong phase is a programming error and panics.
type BlockGuard struct {
	phase atomic.Uint32
	// Serializes the sequential transitions (initialize, apply,
	// finalize).
	seqMu sync.Mutex
}

// NewBlockGuard creates a guard in the Idle phase.
func NewBlockGuard() *BlockGuard {
	g := &BlockGuard{}
	g.phase.Store(uint32(phaseIdle))
	return g
}

// Phase returns the current lifecycle phase.
func (g *BlockGuard) Phase() string {
	return blockPhase(g.phase.Load()).String()
}

// AcquireInitialize transitions Idle → Initializing.
// Panics if not in Idle phase.
func (g *BlockGuard) AcquireInitialize() {
	g.seqMu.Lock()
	if p := blockPhase(g.phase.Load()); p != phaseIdle {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("inherents/runtime: InitializeBlock called in phase %s (expected Idle)", p))
	}
	g.phase.Store(uint32(phaseInitializing))
}

// CompleteInitialize transitions Initializing → Open.
func (g *BlockGuard) CompleteInitialize() {
	g.phase.Store(uint32(phaseOpen))
	g.seqMu.Unlock()
}

// AcquireApply holds the sequential lock for one extrinsic.
// Panics if not in Open phase.
func (g *BlockGuard) AcquireApply() {
	g.seqMu.Lock()
	if p := blockPhase(g.phase.Load()); p != phaseOpen {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("inherents/runtime: ApplyExtrinsic called in phase %s (expected Open)", p))
	}
}

// ReleaseApply releases the lock taken by AcquireApply.
func (g *BlockGuard) ReleaseApply() {
	g.seqMu.Unlock()
}

// AcquireFinalize transitions Open → Finalizing.
// Panics if not in Open phase.
func (g *BlockGuard) AcquireFinalize() {
	g.seqMu.Lock()
	if p := blockPhase(g.phase.Load()); p != phaseOpen {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("inherents/runtime: FinalizeBlock called in phase %s (expected Open)", p))
	}
	g.phase.Store(uint32(phaseFinalizing))
}

// CompleteFinalize transitions Finalizing → Idle.
func (g *BlockGuard) CompleteFinalize() {
	g.phase.Store(uint32(phaseIdle))
	g.seqMu.Unlock()
}

// WhileIdle runs fn holding the sequential lock. It fails with
// ErrBlockInProgress unless the guard is Idle.
func (g *BlockGuard) WhileIdle(fn func() error) error {
	g.seqMu.Lock()
	defer g.seqMu.Unlock()
	if blockPhase(g.phase.Load()) != phaseIdle {
		return ErrBlockInProgress
	}
	return fn()
}

// Abort returns an Open block to Idle without finalizing it.
// Panics if not in Open phase.
func (g *BlockGuard) Abort() {
	g.seqMu.Lock()
	if p := blockPhase(g.phase.Load()); p != phaseOpen {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("inherents/runtime: AbortBlock called in phase %s (expected Open)", p))
	}
	g.phase.Store(uint32(phaseIdle))
	g.seqMu.Unlock()
}

// IsIdle returns true if no block is in progress.
func (g *BlockGuard) IsIdle() bool {
	return blockPhase(g.phase.Load()) == phaseIdle
}

// IsOpen returns true if the current block accepts extrinsics.
func (g *BlockGuard) IsOpen() bool {
	return blockPhase(g.phase.Load()) == phaseOpen
}
