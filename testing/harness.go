package inherentstest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/runtime"
	"github.com/blockberries/inherents/store"
	"github.com/blockberries/inherents/types"
)

// Chain is a test harness driving a runtime block by block.
type Chain struct {
	t  *testing.T
	rt *runtime.Runtime
}

// NewChain creates a runtime over a fresh MemStore and registers the
// given modules.
func NewChain(t *testing.T, modules ...inherents.Module) *Chain {
	t.Helper()
	rt := runtime.New(zerolog.Nop(), store.NewMemStore())
	for _, m := range modules {
		if err := rt.Register(m); err != nil {
			t.Fatalf("Register(%s) failed: %v", m.Name(), err)
		}
	}
	return &Chain{t: t, rt: rt}
}

// Runtime returns the underlying runtime for direct access.
func (c *Chain) Runtime() *runtime.Runtime {
	return c.rt
}

// Store returns the runtime's state.
func (c *Chain) Store() store.Store {
	return c.rt.Store()
}

// Author builds block n with provider, failing the test on error.
func (c *Chain) Author(provider inherents.InherentDataProvider, n types.BlockNumber, pending ...types.Extrinsic) (types.Block, types.BlockOutcome) {
	c.t.Helper()
	a := runtime.NewAuthor(zerolog.Nop(), c.rt, provider)
	block, outcome, err := a.BuildBlock(context.Background(), n, pending)
	if err != nil {
		c.t.Fatalf("BuildBlock (block=%d) failed: %v", n, err)
	}
	return block, outcome
}

// TryAuthor builds block n and returns the pipeline's error.
func (c *Chain) TryAuthor(provider inherents.InherentDataProvider, n types.BlockNumber, pending ...types.Extrinsic) error {
	c.t.Helper()
	a := runtime.NewAuthor(zerolog.Nop(), c.rt, provider)
	_, _, err := a.BuildBlock(context.Background(), n, pending)
	return err
}

// Import imports block against data, failing the test on error.
func (c *Chain) Import(block types.Block, data *types.InherentData) types.BlockOutcome {
	c.t.Helper()
	outcome, err := c.rt.ImportBlock(block, data)
	if err != nil {
		c.t.Fatalf("ImportBlock (block=%d) failed: %v", block.Number, err)
	}
	return outcome
}

// MustRejectImport asserts that block is rejected and returns the error.
func (c *Chain) MustRejectImport(block types.Block, data *types.InherentData) error {
	c.t.Helper()
	_, err := c.rt.ImportBlock(block, data)
	if err == nil {
		c.t.Fatalf("expected block %d rejected, got accepted", block.Number)
	}
	return err
}

// Execute initializes block n, applies exts in order and finalizes.
// Inherent dispatch failures fail the test.
func (c *Chain) Execute(n types.BlockNumber, exts ...types.Extrinsic) types.BlockOutcome {
	c.t.Helper()
	c.rt.InitializeBlock(n)
	for i, ext := range exts {
		if _, err := c.rt.ApplyExtrinsic(ext); err != nil {
			c.rt.AbortBlock()
			c.t.Fatalf("ApplyExtrinsic (block=%d, index=%d) failed: %v", n, i, err)
		}
	}
	return c.rt.FinalizeBlock()
}

// --- Helper Factories ---

// MakeBlock creates a block with the provided extrinsics.
func MakeBlock(n types.BlockNumber, exts ...types.Extrinsic) types.Block {
	return types.Block{Number: n, Extrinsics: exts}
}

// Unsigned creates an unsigned extrinsic.
func Unsigned(module string, call types.Call) types.Extrinsic {
	return types.Extrinsic{Module: module, Call: call}
}

// Signed creates an extrinsic signed by who.
func Signed(module string, call types.Call, who types.AccountID) types.Extrinsic {
	return types.Extrinsic{Module: module, Call: call, Signer: &who}
}

// Bag builds an inherent-data bag from identifier/data pairs.
func Bag(entries ...types.DataEntry) *types.InherentData {
	return types.InherentDataFromEntries(entries)
}
