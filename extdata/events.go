package extdata

import (
	"encoding/hex"

	"github.com/blockberries/inherents/types"
)

// EventExternalDataSet is the kind of the event deposited by a
// successful set.
const EventExternalDataSet = "ExternalDataSet"

// ExternalDataSet is the typed notification of a successful set.
type ExternalDataSet[T any] struct {
	Identifier types.Identifier
	Data       T
}

// ErrorSink is told about every rejected call.
type ErrorSink interface {
	CallRejected(id types.Identifier, call types.Call, err error)
}

type nopErrorSink struct{}

func (nopErrorSink) CallRejected(types.Identifier, types.Call, error) {}

func dataSetEvent(module string, id types.Identifier, encoded []byte) types.Event {
	return types.Event{
		Module: module,
		Kind:   EventExternalDataSet,
		Attributes: []types.EventAttribute{
			{Key: "inherent", Value: id.String(), Index: true},
			{Key: "data", Value: hex.EncodeToString(encoded)},
		},
	}
}
