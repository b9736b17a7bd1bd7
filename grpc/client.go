package inherentsgrpc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/types"
)

// Compile-time interface check.
var _ inherents.InherentDataProvider = (*Client)(nil)

// Client is an inherent-data provider backed by a remote GRPCServer.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote provider.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("inherents client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// ProvideInherentData sends the bag to the remote provider and
// replaces its contents with the reply.
func (c *Client) ProvideInherentData(ctx context.Context, data *types.InherentData) error {
	req := &ProvideRequest{Entries: data.Entries()}
	resp := new(ProvideResponse)
	var trailer metadata.MD
	if err := c.cc.Invoke(ctx, fullMethod("ProvideInherentData"), req, resp, grpc.Trailer(&trailer)); err != nil {
		return fromStatus(err, trailer)
	}
	for _, e := range resp.Entries {
		data.Put(e.Identifier, e.Data)
	}
	return nil
}

// TryHandleError asks the remote provider to classify the error. A
// transport failure leaves the error unhandled and is returned for
// logging only.
func (c *Client) TryHandleError(ctx context.Context, id types.Identifier, raw []byte) (bool, error) {
	req := &HandleErrorRequest{Identifier: id, Data: raw}
	resp := new(HandleErrorResponse)
	if err := c.cc.Invoke(ctx, fullMethod("TryHandleError"), req, resp); err != nil {
		return false, fmt.Errorf("inherents client: try handle error: %w", err)
	}
	switch {
	case !resp.Handled || resp.Verdict == "":
		return resp.Handled, nil
	case resp.Fatal:
		return true, inherents.NewFatalError(id, resp.Verdict)
	default:
		return true, errors.New(resp.Verdict)
	}
}

// Identifiers lists the channels owned by the remote provider.
func (c *Client) Identifiers(ctx context.Context) ([]types.Identifier, error) {
	resp := new(IdentifiersResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Identifiers"), &IdentifiersRequest{}, resp); err != nil {
		return nil, err
	}
	return resp.Identifiers, nil
}

// fromStatus restores the provider error kinds mapped by the server.
func fromStatus(err error, trailer metadata.MD) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.FailedPrecondition {
		return err
	}
	var id types.Identifier
	if vals := trailer.Get(trailerIdentifier); len(vals) > 0 {
		if b, derr := hex.DecodeString(vals[0]); derr == nil && len(b) == types.IdentifierSize {
			copy(id[:], b)
		}
	}
	return inherents.NewPreconditionError(id, st.Message())
}
