package inherentstest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/types"
)

// foreignID is a channel no provider under test owns.
var foreignID = types.MustIdentifier("cmpl_frn")

// RunProviderComplianceSuite runs a standard compliance test suite
// against an inherent-data provider.
//
// The factory function should return a fresh provider instance for
// each test. Providers that implement inherents.Identified get the
// channel-ownership checks as well.
func RunProviderComplianceSuite(t *testing.T, factory func() inherents.InherentDataProvider) {
	t.Helper()

	supply := func(t *testing.T, p inherents.InherentDataProvider, data *types.InherentData) {
		t.Helper()
		err := p.ProvideInherentData(context.Background(), data)
		if _, ok := inherents.IsPrecondition(err); ok {
			t.Skipf("provider reports a precondition failure: %v", err)
		}
		if err != nil {
			t.Fatalf("ProvideInherentData failed: %v", err)
		}
	}

	t.Run("writes_only_own_channel", func(t *testing.T) {
		p := factory()
		id, ok := p.(inherents.Identified)
		if !ok {
			t.Skip("provider does not declare an identifier")
		}
		data := types.NewInherentData()
		supply(t, p, data)
		for _, got := range data.Identifiers() {
			if got != id.InherentIdentifier() {
				t.Errorf("provider wrote channel %s, owns %s", got, id.InherentIdentifier())
			}
		}
	})

	t.Run("preserves_foreign_entries", func(t *testing.T) {
		p := factory()
		data := types.NewInherentData()
		data.Put(foreignID, []byte("keep"))
		supply(t, p, data)
		raw, ok := data.Get(foreignID)
		if !ok || string(raw) != "keep" {
			t.Errorf("foreign entry changed: %q (present=%v)", raw, ok)
		}
	})

	t.Run("ignores_foreign_errors", func(t *testing.T) {
		p := factory()
		handled, err := p.TryHandleError(context.Background(), foreignID, []byte{0x01})
		if handled || err != nil {
			t.Errorf("foreign error: handled=%v err=%v", handled, err)
		}
	})

	t.Run("handles_own_errors", func(t *testing.T) {
		p := factory()
		id, ok := p.(inherents.Identified)
		if !ok {
			t.Skip("provider does not declare an identifier")
		}
		handled, _ := p.TryHandleError(context.Background(), id.InherentIdentifier(), []byte{0x01})
		if !handled {
			t.Error("provider must claim errors reported for its own channel")
		}
	})

	t.Run("cancelled_context_supply_terminates", func(t *testing.T) {
		p := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		// Either outcome is acceptable; the call must return.
		_ = p.ProvideInherentData(ctx, types.NewInherentData())
	})

	t.Run("concurrent_supply", func(t *testing.T) {
		p := factory()
		var wg sync.WaitGroup
		errs := make([]error, 10)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = p.ProvideInherentData(context.Background(), types.NewInherentData())
			}(i)
		}
		wg.Wait()
		for i, err := range errs {
			if err == nil {
				continue
			}
			if _, ok := inherents.IsPrecondition(err); !ok {
				t.Errorf("supply %d: unexpected error %v", i, err)
			}
		}
	})
}
