package inherentsgrpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/extdata"
	inherentsgrpc "github.com/blockberries/inherents/grpc"
	"github.com/blockberries/inherents/provider"
	inherentstest "github.com/blockberries/inherents/testing"
	"github.com/blockberries/inherents/types"
)

var extID = types.MustIdentifier("ext_data")

// startServer starts a gRPC server on a random port and returns
// the listener address and a cleanup function.
func startServer(t *testing.T, gs *inherentsgrpc.GRPCServer) (string, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer()
	gs.Register(s)

	go func() {
		// Errors from graceful stop are ignored.
		_ = s.Serve(lis)
	}()

	return lis.Addr().String(), func() {
		s.GracefulStop()
	}
}

func dial(t *testing.T, addr string) *inherentsgrpc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := inherentsgrpc.Dial(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func serve(t *testing.T, p inherents.InherentDataProvider) *inherentsgrpc.Client {
	t.Helper()
	addr, cleanup := startServer(t, inherentsgrpc.NewGRPCServer(zerolog.Nop(), p))
	t.Cleanup(cleanup)
	client := dial(t, addr)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func u64Env() codec.Envelope[uint64] {
	return codec.NewEnvelope[uint64](extID, codec.Uint64{}, nil)
}

func TestGRPC_ProvideInherentData(t *testing.T) {
	v := uint64(42)
	client := serve(t, provider.NewStatic(u64Env(), &v))

	data := types.NewInherentData()
	foreign := types.MustIdentifier("timstap0")
	data.Put(foreign, []byte{1, 2, 3})
	require.NoError(t, client.ProvideInherentData(context.Background(), data))

	got, ok, err := u64Env().Get(data)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), got)

	raw, ok := data.Get(foreign)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, raw)
}

func TestGRPC_CounterAdvancesRemotely(t *testing.T) {
	v := uint64(5)
	counter := provider.NewCounter(u64Env(), &v)
	client := serve(t, counter)

	for _, want := range []uint64{5, 6} {
		data := types.NewInherentData()
		require.NoError(t, client.ProvideInherentData(context.Background(), data))
		got, _, _ := u64Env().Get(data)
		require.Equal(t, want, got)
	}
	cur, _ := counter.Current()
	require.Equal(t, uint64(7), cur)
}

func TestGRPC_PreconditionRoundTrip(t *testing.T) {
	client := serve(t, provider.NewStatic[uint64](u64Env(), nil, provider.WithPolicy(provider.Strict)))

	err := client.ProvideInherentData(context.Background(), types.NewInherentData())
	p, ok := inherents.IsPrecondition(err)
	require.True(t, ok, "expected precondition error, got %v", err)
	require.Equal(t, extID, p.Identifier)
}

func TestGRPC_InternalError(t *testing.T) {
	client := serve(t, &inherentstest.MockProvider{
		ProvideFn: func(context.Context, *types.InherentData) error { return errors.New("disk on fire") },
	})

	err := client.ProvideInherentData(context.Background(), types.NewInherentData())
	require.Error(t, err)
	_, ok := inherents.IsPrecondition(err)
	require.False(t, ok)
	require.Contains(t, err.Error(), "disk on fire")
}

func TestGRPC_TryHandleError(t *testing.T) {
	v := uint64(1)
	client := serve(t, provider.NewStatic(u64Env(), &v))
	ctx := context.Background()

	handled, err := client.TryHandleError(ctx, types.MustIdentifier("timstap0"), []byte{0x01})
	require.False(t, handled)
	require.NoError(t, err)

	handled, err = client.TryHandleError(ctx, extID, []byte{0xab})
	require.True(t, handled)
	f, ok := inherents.IsFatal(err)
	require.True(t, ok, "expected fatal verdict, got %v", err)
	require.Equal(t, extID, f.Identifier)
	require.Contains(t, f.Message, "ab")
}

func TestGRPC_TryHandleError_NonFatalVerdict(t *testing.T) {
	client := serve(t, &inherentstest.MockProvider{
		TryHandleErrorFn: func(context.Context, types.Identifier, []byte) (bool, error) {
			return true, errors.New("stale")
		},
	})
	handled, err := client.TryHandleError(context.Background(), extID, nil)
	require.True(t, handled)
	require.EqualError(t, err, "stale")
	_, fatal := inherents.IsFatal(err)
	require.False(t, fatal)
}

func TestGRPC_Identifiers(t *testing.T) {
	v := uint64(1)
	oracleID := types.MustIdentifier("oracle00")
	price := []byte("p")
	list, err := provider.NewList(zerolog.Nop(),
		provider.NewStatic(u64Env(), &v),
		provider.NewStatic(codec.NewEnvelope[[]byte](oracleID, codec.Bytes{Max: 8}, nil), &price),
	)
	require.NoError(t, err)

	client := serve(t, list)
	ids, err := client.Identifiers(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []types.Identifier{extID, oracleID}, ids)
}

// TestGRPC_AuthorWithRemoteProvider authors blocks on a local chain
// whose only provider lives behind the gRPC transport.
func TestGRPC_AuthorWithRemoteProvider(t *testing.T) {
	v := uint64(5)
	client := serve(t, provider.NewCounter(u64Env(), &v))

	m, err := extdata.New(zerolog.Nop(), extdata.Config[uint64]{Codec: codec.Uint64{}})
	require.NoError(t, err)
	chain := inherentstest.NewChain(t, m)

	chain.Author(client, 1)
	got, _, _ := m.Get(chain.Store())
	require.Equal(t, uint64(5), got)

	chain.Author(client, 2)
	got, _, _ = m.Get(chain.Store())
	require.Equal(t, uint64(6), got)
}

func TestGRPC_Compliance(t *testing.T) {
	inherentstest.RunProviderComplianceSuite(t, func() inherents.InherentDataProvider {
		v := uint64(9)
		return serve(t, provider.NewStatic(u64Env(), &v))
	})
}

func TestCramberryCodec_RoundTripsEntries(t *testing.T) {
	c := inherentsgrpc.CramberryCodec{}
	require.Equal(t, "cramberry", c.Name())

	in := &inherentsgrpc.ProvideResponse{Entries: []types.DataEntry{{Identifier: extID, Data: []byte{0, 0, 0, 42}}}}
	raw, err := c.Marshal(in)
	require.NoError(t, err)

	var out inherentsgrpc.ProvideResponse
	require.NoError(t, c.Unmarshal(raw, &out))
	require.Equal(t, in.Entries, out.Entries)
}
