package inherentsgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const serviceName = "inherents.v1.InherentDataProvider"

// trailerIdentifier carries the channel of a precondition failure.
const trailerIdentifier = "inherent-identifier"

// ProviderServiceServer is the server-side interface for the provider
// gRPC service.
type ProviderServiceServer interface {
	ProvideInherentData(context.Context, *ProvideRequest) (*ProvideResponse, error)
	TryHandleError(context.Context, *HandleErrorRequest) (*HandleErrorResponse, error)
	Identifiers(context.Context, *IdentifiersRequest) (*IdentifiersResponse, error)
}

// RegisterProviderServiceServer registers the ProviderServiceServer on a gRPC server.
func RegisterProviderServiceServer(s *grpc.Server, srv ProviderServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerProvideInherentData(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ProvideRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ProviderServiceServer).ProvideInherentData(ctx, req)
}

func handlerTryHandleError(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(HandleErrorRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ProviderServiceServer).TryHandleError(ctx, req)
}

func handlerIdentifiers(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(IdentifiersRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ProviderServiceServer).Identifiers(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the provider service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ProviderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProvideInherentData", Handler: handlerProvideInherentData},
		{MethodName: "TryHandleError", Handler: handlerTryHandleError},
		{MethodName: "Identifiers", Handler: handlerIdentifiers},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inherents/v1/provider.cram",
}
