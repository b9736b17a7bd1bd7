// Package inherentsgrpc serves and consumes inherent-data providers
// over gRPC, using cramberry for deterministic binary serialization.
//
// No protobuf code generation is required. Bag entries from
// inherents/types are serialized directly via cramberry struct tags.
package inherentsgrpc

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"
)

// codecName is forced on every client connection (see Dial); servers
// pick the codec by the content-subtype the client sends.
const codecName = "cramberry"

// CramberryCodec is the gRPC wire codec for provider traffic. Bag
// entries cross the wire as raw envelope bytes and a remote bag
// decodes byte-identical to the one the provider filled.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("inherentsgrpc: marshal %T: %w", v, err)
	}
	return data, nil
}

func (CramberryCodec) Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("inherentsgrpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
