package inherentsgrpc

import "github.com/blockberries/inherents/types"

// Transport-specific wrapper types for the provider RPCs.
// These are used only for gRPC serialization boundaries.

// ProvideRequest carries the caller's bag so the remote provider sees
// (and may overwrite) the entries already present.
type ProvideRequest struct {
	Entries []types.DataEntry `cramberry:"1"`
}

// ProvideResponse is the bag after the remote provider ran.
type ProvideResponse struct {
	Entries []types.DataEntry `cramberry:"1"`
}

// HandleErrorRequest wraps the parameters of TryHandleError.
type HandleErrorRequest struct {
	Identifier types.Identifier `cramberry:"1"`
	Data       []byte           `cramberry:"2"`
}

// HandleErrorResponse is the remote provider's classification.
// Verdict is empty when the error is ignorable.
type HandleErrorResponse struct {
	Handled bool   `cramberry:"1"`
	Verdict string `cramberry:"2"`
	Fatal   bool   `cramberry:"3"`
}

// IdentifiersRequest is the (empty) request for Identifiers.
type IdentifiersRequest struct{}

// IdentifiersResponse lists the channels the remote provider owns.
type IdentifiersResponse struct {
	Identifiers []types.Identifier `cramberry:"1"`
}
