package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/extdata"
	"github.com/blockberries/inherents/provider"
	"github.com/blockberries/inherents/runtime"
	inherentstest "github.com/blockberries/inherents/testing"
	"github.com/blockberries/inherents/types"
)

func u64Env() codec.Envelope[uint64] {
	return codec.NewEnvelope[uint64](extdata.DefaultIdentifier, codec.Uint64{}, nil)
}

func TestAuthor_StaticValue(t *testing.T) {
	m := newExtData(t)
	rt := newRuntime(t, m)
	v := uint64(42)
	a := runtime.NewAuthor(zerolog.Nop(), rt, provider.NewStatic(u64Env(), &v))

	block, outcome, err := a.BuildBlock(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, block.Extrinsics, 1)
	require.Equal(t, extdata.SetCall[uint64]{Value: 42}, block.Extrinsics[0].Call)
	require.Len(t, outcome.Events(), 1)

	got, ok, err := m.Get(rt.Store())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), got)
}

func TestAuthor_CounterAcrossBlocks(t *testing.T) {
	m := newExtData(t)
	rt := newRuntime(t, m)
	v := uint64(5)
	counter := provider.NewCounter(u64Env(), &v)
	a := runtime.NewAuthor(zerolog.Nop(), rt, counter)

	for n, want := range []uint64{5, 6, 7} {
		_, _, err := a.BuildBlock(context.Background(), types.BlockNumber(n+1), nil)
		require.NoError(t, err)
		got, _, _ := m.Get(rt.Store())
		require.Equal(t, want, got)
	}
	cur, _ := counter.Current()
	require.Equal(t, uint64(8), cur)
}

func TestAuthor_NoData(t *testing.T) {
	m := newExtData(t)
	rt := newRuntime(t, m)
	a := runtime.NewAuthor(zerolog.Nop(), rt, provider.NewStatic[uint64](u64Env(), nil))

	block, _, err := a.BuildBlock(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Empty(t, block.Extrinsics)
	_, ok, _ := m.Get(rt.Store())
	require.False(t, ok)
}

func TestAuthor_StrictProviderAborts(t *testing.T) {
	rt := newRuntime(t, newExtData(t))
	a := runtime.NewAuthor(zerolog.Nop(), rt,
		provider.NewStatic[uint64](u64Env(), nil, provider.WithPolicy(provider.Strict)))

	_, _, err := a.BuildBlock(context.Background(), 1, nil)
	_, ok := inherents.IsPrecondition(err)
	require.True(t, ok, "expected precondition error, got %v", err)
	require.Equal(t, "Idle", rt.Phase())
}

func TestAuthor_DropsInherentsFromPool(t *testing.T) {
	m := newExtData(t)
	rt := newRuntime(t, m)
	a := runtime.NewAuthor(zerolog.Nop(), rt, provider.NewStatic[uint64](u64Env(), nil))

	block, _, err := a.BuildBlock(context.Background(), 1, []types.Extrinsic{setExt(99)})
	require.NoError(t, err)
	require.Empty(t, block.Extrinsics)
	_, ok, _ := m.Get(rt.Store())
	require.False(t, ok)
}

// A module that never builds its inherent but always requires it
// makes the built block fail its own check.
func requiringModule() *inherentstest.MockModule {
	return &inherentstest.MockModule{
		ModuleName:       "needy",
		ID:               types.MustIdentifier("needy___"),
		CreateInherentFn: func(*types.InherentData) (types.Call, bool) { return nil, false },
		IsInherentRequiredFn: func(*types.InherentData) (inherents.InherentError, error) {
			return inherentstest.MockInherentError{Fatal: true, Payload: []byte{0x07}}, nil
		},
	}
}

func TestAuthor_RoutesCheckErrors(t *testing.T) {
	mod := requiringModule()

	t.Run("handled fatal verdict aborts", func(t *testing.T) {
		rt := newRuntime(t, mod)
		verdict := errors.New("bad block")
		p := &inherentstest.MockProvider{
			ID: mod.ID,
			TryHandleErrorFn: func(_ context.Context, id types.Identifier, raw []byte) (bool, error) {
				require.Equal(t, mod.ID, id)
				require.Equal(t, []byte{0x07}, raw)
				return true, verdict
			},
		}
		_, _, err := runtime.NewAuthor(zerolog.Nop(), rt, p).BuildBlock(context.Background(), 1, nil)
		require.ErrorIs(t, err, verdict)
		require.EqualValues(t, 1, p.HandleErrorCalls.Load())
		require.Equal(t, "Idle", rt.Phase())
		_, finalized := rt.LastFinalized()
		require.False(t, finalized)
	})

	t.Run("handled ignorable verdict finalizes", func(t *testing.T) {
		rt := newRuntime(t, mod)
		p := &inherentstest.MockProvider{
			TryHandleErrorFn: func(context.Context, types.Identifier, []byte) (bool, error) { return true, nil },
		}
		_, _, err := runtime.NewAuthor(zerolog.Nop(), rt, p).BuildBlock(context.Background(), 1, nil)
		require.NoError(t, err)
		n, ok := rt.LastFinalized()
		require.True(t, ok)
		require.Equal(t, types.BlockNumber(1), n)
	})

	t.Run("unhandled fatal aborts", func(t *testing.T) {
		rt := newRuntime(t, mod)
		_, _, err := runtime.NewAuthor(zerolog.Nop(), rt, &inherentstest.MockProvider{}).
			BuildBlock(context.Background(), 1, nil)
		require.ErrorIs(t, err, runtime.ErrUnhandledInherentError)
	})
}

func TestAuthor_ProviderList(t *testing.T) {
	m := newExtData(t)
	oracle := mustOracle(t)
	rt := newRuntime(t, m, oracle)

	v := uint64(1)
	price := []byte("btc=42")
	list, err := provider.NewList(zerolog.Nop(),
		provider.NewCounter(u64Env(), &v),
		provider.NewStatic(oracle.Envelope(), &price),
	)
	require.NoError(t, err)

	block, _, err := runtime.NewAuthor(zerolog.Nop(), rt, list).BuildBlock(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, block.Extrinsics, 2)

	got, ok, err := oracle.Get(rt.Store())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, price, got)

	// A second node holding the same data accepts the block.
	verifier := newRuntime(t, newExtData(t), mustOracle(t))
	data, err := list.CreateInherentData(context.Background())
	require.NoError(t, err)
	// The counter advanced; the verifier's bag is its own view.
	_, err = verifier.ImportBlock(block, data)
	require.NoError(t, err)
}

func mustOracle(t *testing.T) *extdata.Module[[]byte] {
	t.Helper()
	m, err := extdata.New(zerolog.Nop(), extdata.Config[[]byte]{
		Name:       "oracle",
		Identifier: types.MustIdentifier("oracle00"),
		Codec:      codec.Bytes{Max: 32},
		Shape:      codec.Fixed(),
	})
	require.NoError(t, err)
	return m
}
