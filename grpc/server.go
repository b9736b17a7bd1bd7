package inherentsgrpc

import (
	"context"
	"encoding/hex"
	"errors"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/types"
)

// Compile-time interface check.
var _ ProviderServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes an inherent-data provider as a gRPC service.
type GRPCServer struct {
	log      zerolog.Logger
	provider inherents.InherentDataProvider
}

// NewGRPCServer creates a gRPC server wrapping the given provider.
func NewGRPCServer(log zerolog.Logger, p inherents.InherentDataProvider) *GRPCServer {
	return &GRPCServer{
		log:      log.With().Str("component", "inherents_grpc").Logger(),
		provider: p,
	}
}

// Register adds the provider service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterProviderServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Provider returns the underlying provider.
func (s *GRPCServer) Provider() inherents.InherentDataProvider {
	return s.provider
}

func (s *GRPCServer) ProvideInherentData(ctx context.Context, req *ProvideRequest) (*ProvideResponse, error) {
	data := types.InherentDataFromEntries(req.Entries)
	if err := s.provider.ProvideInherentData(ctx, data); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ProvideResponse{Entries: data.Entries()}, nil
}

func (s *GRPCServer) TryHandleError(ctx context.Context, req *HandleErrorRequest) (*HandleErrorResponse, error) {
	handled, verdict := s.provider.TryHandleError(ctx, req.Identifier, req.Data)
	resp := &HandleErrorResponse{Handled: handled}
	if verdict != nil {
		resp.Verdict = verdict.Error()
		if f, ok := inherents.IsFatal(verdict); ok {
			resp.Verdict = f.Message
			resp.Fatal = true
		}
	}
	return resp, nil
}

func (s *GRPCServer) Identifiers(_ context.Context, _ *IdentifiersRequest) (*IdentifiersResponse, error) {
	switch p := s.provider.(type) {
	case interface{ Identifiers() []types.Identifier }:
		return &IdentifiersResponse{Identifiers: p.Identifiers()}, nil
	case inherents.Identified:
		return &IdentifiersResponse{Identifiers: []types.Identifier{p.InherentIdentifier()}}, nil
	default:
		return &IdentifiersResponse{}, nil
	}
}

// toStatus maps provider errors onto gRPC status codes. The channel of
// a precondition failure travels in the trailer.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	if p, ok := inherents.IsPrecondition(err); ok {
		if terr := grpc.SetTrailer(ctx, metadata.Pairs(trailerIdentifier, hex.EncodeToString(p.Identifier[:]))); terr != nil {
			s.log.Warn().Err(terr).Msg("Failed to set trailer")
		}
		return status.Error(codes.FailedPrecondition, p.Reason)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	s.log.Error().Err(err).Msg("Provider failed")
	return status.Error(codes.Internal, err.Error())
}
