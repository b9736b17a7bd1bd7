// Package inherentstest provides test utilities for inherent channel
// development: configurable mock providers and modules, a chain
// harness over the runtime, and a provider compliance suite.
package inherentstest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/store"
	"github.com/blockberries/inherents/types"
)

// Compile-time interface checks.
var (
	_ inherents.InherentDataProvider = (*MockProvider)(nil)
	_ inherents.Identified           = (*MockProvider)(nil)
	_ inherents.InherentModule       = (*MockModule)(nil)
)

// MockCall is a call variant with a configurable name.
type MockCall struct {
	Name  string
	Value []byte
}

func (c MockCall) CallName() string { return c.Name }

// MockProvider is a configurable inherent-data provider.
// Unconfigured, it supplies nothing and claims errors reported for
// its own identifier with a fatal verdict, like a single-channel
// provider.
type MockProvider struct {
	ID types.Identifier

	ProvideFn        func(context.Context, *types.InherentData) error
	TryHandleErrorFn func(context.Context, types.Identifier, []byte) (bool, error)

	// Call counters (atomic for concurrent access).
	ProvideCalls     atomic.Int64
	HandleErrorCalls atomic.Int64
}

func (p *MockProvider) InherentIdentifier() types.Identifier { return p.ID }

func (p *MockProvider) ProvideInherentData(ctx context.Context, data *types.InherentData) error {
	p.ProvideCalls.Add(1)
	if p.ProvideFn != nil {
		return p.ProvideFn(ctx, data)
	}
	return nil
}

func (p *MockProvider) TryHandleError(ctx context.Context, id types.Identifier, raw []byte) (bool, error) {
	p.HandleErrorCalls.Add(1)
	if p.TryHandleErrorFn != nil {
		return p.TryHandleErrorFn(ctx, id, raw)
	}
	if id != p.ID {
		return false, nil
	}
	return true, inherents.NewFatalError(p.ID, fmt.Sprintf("%d byte error payload", len(raw)))
}

// MockModule is a configurable inherent module. By default it creates
// a MockCall "inherent" carrying the raw bag entry for its identifier,
// accepts any call, and never requires its inherent.
type MockModule struct {
	ModuleName string
	ID         types.Identifier

	OnInitializeFn       func(store.Store, types.BlockNumber) types.Weight
	DispatchFn           func(store.Store, inherents.EventSink, types.Origin, types.Call) error
	CreateInherentFn     func(*types.InherentData) (types.Call, bool)
	IsInherentRequiredFn func(*types.InherentData) (inherents.InherentError, error)
	IsInherentFn         func(types.Call) bool

	// Call counters (atomic for concurrent access).
	InitializeCalls atomic.Int64
	DispatchCalls   atomic.Int64
}

func (m *MockModule) Name() string { return m.ModuleName }

func (m *MockModule) InherentIdentifier() types.Identifier { return m.ID }

func (m *MockModule) OnInitialize(st store.Store, n types.BlockNumber) types.Weight {
	m.InitializeCalls.Add(1)
	if m.OnInitializeFn != nil {
		return m.OnInitializeFn(st, n)
	}
	return types.ZeroWeight
}

func (m *MockModule) Dispatch(st store.Store, ev inherents.EventSink, origin types.Origin, call types.Call) error {
	m.DispatchCalls.Add(1)
	if m.DispatchFn != nil {
		return m.DispatchFn(st, ev, origin, call)
	}
	return nil
}

func (m *MockModule) CreateInherent(data *types.InherentData) (types.Call, bool) {
	if m.CreateInherentFn != nil {
		return m.CreateInherentFn(data)
	}
	raw, ok := data.Get(m.ID)
	if !ok {
		return nil, false
	}
	return MockCall{Name: "inherent", Value: raw}, true
}

func (m *MockModule) IsInherentRequired(data *types.InherentData) (inherents.InherentError, error) {
	if m.IsInherentRequiredFn != nil {
		return m.IsInherentRequiredFn(data)
	}
	return nil, nil
}

func (m *MockModule) IsInherent(call types.Call) bool {
	if m.IsInherentFn != nil {
		return m.IsInherentFn(call)
	}
	c, ok := call.(MockCall)
	return ok && c.Name == "inherent"
}

// MockInherentError is an InherentError with a fixed encoding.
type MockInherentError struct {
	Fatal   bool
	Payload []byte
}

func (e MockInherentError) Error() string {
	return fmt.Sprintf("mock inherent error (fatal=%v)", e.Fatal)
}

func (e MockInherentError) IsFatalError() bool { return e.Fatal }

func (e MockInherentError) Encode() ([]byte, error) { return e.Payload, nil }
