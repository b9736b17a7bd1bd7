package codec

import (
	"fmt"

	"github.com/blockberries/inherents/types"
)

// Envelope binds a channel identifier to the codec and shape used to
// move values of type T through an inherent-data bag.
type Envelope[T any] struct {
	ID    types.Identifier
	Codec Codec[T]
	Shape Shape
}

// NewEnvelope returns an envelope for the given channel. A nil shape
// selects VarBytes.
func NewEnvelope[T any](id types.Identifier, c Codec[T], shape Shape) Envelope[T] {
	if shape == nil {
		shape = VarBytes{}
	}
	return Envelope[T]{ID: id, Codec: c, Shape: shape}
}

// Encode produces the raw bag payload for v.
func (e Envelope[T]) Encode(v T) ([]byte, error) {
	enc, err := e.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s inherent: %w", e.ID, err)
	}
	raw, err := e.Shape.Wrap(enc)
	if err != nil {
		return nil, fmt.Errorf("wrap %s inherent: %w", e.ID, err)
	}
	return raw, nil
}

// DecodeRaw recovers a value from a raw bag payload.
func (e Envelope[T]) DecodeRaw(raw []byte) (T, error) {
	var zero T
	enc, err := e.Shape.Unwrap(raw)
	if err != nil {
		return zero, fmt.Errorf("unwrap %s inherent: %w", e.ID, err)
	}
	v, err := e.Codec.Decode(enc)
	if err != nil {
		return zero, fmt.Errorf("decode %s inherent: %w", e.ID, err)
	}
	return v, nil
}

// Put encodes v and stores it in d, replacing any previous envelope
// for this channel.
func (e Envelope[T]) Put(d *types.InherentData, v T) error {
	raw, err := e.Encode(v)
	if err != nil {
		return err
	}
	d.Put(e.ID, raw)
	return nil
}

// Get looks up and decodes this channel's envelope. ok is false when
// the bag has no entry; err is set when an entry exists but does not
// decode.
func (e Envelope[T]) Get(d *types.InherentData) (v T, ok bool, err error) {
	raw, ok := d.Get(e.ID)
	if !ok {
		return v, false, nil
	}
	v, err = e.DecodeRaw(raw)
	if err != nil {
		return v, true, err
	}
	return v, true, nil
}
