package provider_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/metrics"
	"github.com/blockberries/inherents/provider"
	"github.com/blockberries/inherents/types"
)

var (
	extID   = types.MustIdentifier("ext_data")
	otherID = types.MustIdentifier("timstap0")
)

func u64Envelope(id types.Identifier) codec.Envelope[uint64] {
	return codec.NewEnvelope[uint64](id, codec.Uint64{}, nil)
}

func ptr[T any](v T) *T { return &v }

func supplyOnce(t *testing.T, p inherents.InherentDataProvider) *types.InherentData {
	t.Helper()
	data := types.NewInherentData()
	require.NoError(t, p.ProvideInherentData(context.Background(), data))
	return data
}

func TestStatic_ProvidesHeldValue(t *testing.T) {
	env := u64Envelope(extID)
	p := provider.NewStatic(env, ptr[uint64](42))

	data := supplyOnce(t, p)
	v, ok, err := env.Get(data)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), v)
}

func TestStatic_OverwritesPriorEntry(t *testing.T) {
	env := u64Envelope(extID)
	data := types.NewInherentData()
	require.NoError(t, env.Put(data, 7))

	p := provider.NewStatic(env, ptr[uint64](42))
	require.NoError(t, p.ProvideInherentData(context.Background(), data))

	v, _, _ := env.Get(data)
	require.Equal(t, uint64(42), v)
	require.Equal(t, 1, data.Len())
}

func TestStatic_AbsentOptional(t *testing.T) {
	p := provider.NewStatic[uint64](u64Envelope(extID), nil)
	data := supplyOnce(t, p)
	require.Zero(t, data.Len())

	_, has := p.Value()
	require.False(t, has)
}

func TestStatic_AbsentStrict(t *testing.T) {
	p := provider.NewStatic[uint64](u64Envelope(extID), nil, provider.WithPolicy(provider.Strict))

	data := types.NewInherentData()
	err := p.ProvideInherentData(context.Background(), data)
	pe, ok := inherents.IsPrecondition(err)
	require.True(t, ok, "expected precondition error, got %v", err)
	require.Equal(t, extID, pe.Identifier)
	require.Zero(t, data.Len())
}

func TestStatic_EncodeFailure(t *testing.T) {
	env := codec.NewEnvelope[[]byte](extID, codec.Bytes{Max: 2}, nil)
	p := provider.NewStatic(env, ptr([]byte{1, 2, 3}))

	err := p.ProvideInherentData(context.Background(), types.NewInherentData())
	require.True(t, errors.Is(err, codec.ErrTooLarge))
}

type countingMetrics struct {
	metrics.Noop
	provided int
}

func (m *countingMetrics) InherentProvided(types.Identifier) { m.provided++ }

func TestStatic_Metrics(t *testing.T) {
	m := &countingMetrics{}
	p := provider.NewStatic(u64Envelope(extID), ptr[uint64](1), provider.WithMetrics(m), provider.WithLogger(zerolog.Nop()))
	supplyOnce(t, p)
	supplyOnce(t, p)
	require.Equal(t, 2, m.provided)

	absent := provider.NewStatic[uint64](u64Envelope(extID), nil, provider.WithMetrics(m))
	supplyOnce(t, absent)
	require.Equal(t, 2, m.provided, "absent supply must not count")
}

func TestCounter_EmitsThenAdvances(t *testing.T) {
	env := u64Envelope(extID)
	c := provider.NewCounter(env, ptr[uint64](5))

	first := supplyOnce(t, c)
	v, _, err := env.Get(first)
	require.NoError(t, err)
	require.Equal(t, uint64(5), v)

	held, ok := c.Current()
	require.True(t, ok)
	require.Equal(t, uint64(6), held)

	second := supplyOnce(t, c)
	v, _, err = env.Get(second)
	require.NoError(t, err)
	require.Equal(t, uint64(6), v)
}

func TestCounter_ResetAndClear(t *testing.T) {
	env := u64Envelope(extID)
	c := provider.NewCounter(env, ptr[uint64](1))
	supplyOnce(t, c)

	c.Reset(100)
	v, _, _ := env.Get(supplyOnce(t, c))
	require.Equal(t, uint64(100), v)

	c.Clear()
	require.Zero(t, supplyOnce(t, c).Len())
}

func TestCounter_AbsentStrict(t *testing.T) {
	c := provider.NewCounter[uint64](u64Envelope(extID), nil, provider.WithPolicy(provider.Strict))
	err := c.ProvideInherentData(context.Background(), types.NewInherentData())
	_, ok := inherents.IsPrecondition(err)
	require.True(t, ok)
}

func TestCounter_Exhausted(t *testing.T) {
	env := codec.NewEnvelope[uint8](extID, u8Codec{}, nil)
	c := provider.NewCounter(env, ptr[uint8](255))

	err := c.ProvideInherentData(context.Background(), types.NewInherentData())
	_, ok := inherents.IsPrecondition(err)
	require.True(t, ok, "expected precondition error on overflow, got %v", err)

	held, _ := c.Current()
	require.Equal(t, uint8(255), held, "exhausted counter must not wrap")
}

func TestCounter_ConcurrentSuppliesAreDistinct(t *testing.T) {
	const n = 64
	env := u64Envelope(extID)
	c := provider.NewCounter(env, ptr[uint64](0))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []uint64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := types.NewInherentData()
			if err := c.ProvideInherentData(context.Background(), data); err != nil {
				t.Errorf("supply: %v", err)
				return
			}
			v, _, _ := env.Get(data)
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		}()
		// Diagnostics reading concurrently with supplies.
		go c.Current()
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, uint64(i), v)
	}
}

// TestHandleError_Routing checks the classifier for arbitrary
// identifiers and payloads.
func TestHandleError_Routing(t *testing.T) {
	providers := []inherents.InherentDataProvider{
		provider.NewStatic[uint64](u64Envelope(extID), nil),
		provider.NewCounter[uint64](u64Envelope(extID), nil),
	}
	rapid.Check(t, func(t *rapid.T) {
		var id types.Identifier
		copy(id[:], rapid.SliceOfN(rapid.Byte(), 8, 8).Draw(t, "id"))
		raw := rapid.SliceOf(rapid.Byte()).Draw(t, "raw")

		for _, p := range providers {
			handled, err := p.TryHandleError(context.Background(), id, raw)
			if id != extID {
				if handled || err != nil {
					t.Fatalf("foreign identifier %s must not be handled", id)
				}
				continue
			}
			if !handled {
				t.Fatal("own identifier must be handled")
			}
			if _, ok := inherents.IsFatal(err); !ok {
				t.Fatalf("own identifier must be fatal, got %v", err)
			}
		}
	})

	handled, err := providers[0].TryHandleError(context.Background(), extID, nil)
	require.True(t, handled)
	require.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]provider.Policy{"": provider.Optional, "optional": provider.Optional, "STRICT": provider.Strict} {
		got, err := provider.ParsePolicy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := provider.ParsePolicy("sometimes")
	require.Error(t, err)
	require.Equal(t, "strict", provider.Strict.String())
}

type u8Codec struct{}

func (u8Codec) Encode(v uint8) ([]byte, error) { return []byte{v}, nil }
func (u8Codec) Decode(b []byte) (uint8, error) {
	if len(b) != 1 {
		return 0, errors.New("uint8 must be 1 byte")
	}
	return b[0], nil
}
func (u8Codec) MaxEncodedLen() int { return 1 }
