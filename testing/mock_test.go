package inherentstest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/inherents"
	inherentstest "github.com/blockberries/inherents/testing"
	"github.com/blockberries/inherents/types"
)

func TestMockProvider_DefaultErrorHandling(t *testing.T) {
	id := types.MustIdentifier("mockprov")
	p := &inherentstest.MockProvider{ID: id}
	ctx := context.Background()

	handled, err := p.TryHandleError(ctx, id, []byte{0x01, 0x02})
	require.True(t, handled)
	f, ok := inherents.IsFatal(err)
	require.True(t, ok, "expected fatal verdict, got %v", err)
	require.Equal(t, id, f.Identifier)

	handled, err = p.TryHandleError(ctx, types.MustIdentifier("elsewhre"), []byte{0x01})
	require.False(t, handled)
	require.NoError(t, err)

	require.EqualValues(t, 2, p.HandleErrorCalls.Load())
}

func TestMockProvider_HandlerOverridesDefault(t *testing.T) {
	id := types.MustIdentifier("mockprov")
	p := &inherentstest.MockProvider{
		ID:               id,
		TryHandleErrorFn: func(context.Context, types.Identifier, []byte) (bool, error) { return false, nil },
	}
	handled, err := p.TryHandleError(context.Background(), id, nil)
	require.False(t, handled)
	require.NoError(t, err)
}
