package store

import (
	"errors"
	"fmt"

	"github.com/blockberries/inherents/codec"
)

// ErrCorrupt is returned when a stored value does not decode.
var ErrCorrupt = errors.New("corrupt storage value")

// Value is a typed single-value storage slot under a fixed key.
// An absent key means the slot holds no value.
type Value[T any] struct {
	Key   []byte
	Codec codec.Codec[T]
}

// NewValue returns a slot named name under the module prefix.
func NewValue[T any](prefix, name string, c codec.Codec[T]) Value[T] {
	return Value[T]{Key: []byte(prefix + "/" + name), Codec: c}
}

// Get returns the slot's value and whether it is present.
func (sv Value[T]) Get(st Store) (T, bool, error) {
	var zero T
	raw, ok := st.Get(sv.Key)
	if !ok {
		return zero, false, nil
	}
	v, err := sv.Codec.Decode(raw)
	if err != nil {
		return zero, true, fmt.Errorf("%w: %s: %v", ErrCorrupt, sv.Key, err)
	}
	return v, true, nil
}

// Exists reports whether the slot holds a value.
func (sv Value[T]) Exists(st Store) bool {
	_, ok := st.Get(sv.Key)
	return ok
}

// Put replaces the slot's value and returns its stored encoding.
func (sv Value[T]) Put(st Store, v T) ([]byte, error) {
	raw, err := sv.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", sv.Key, err)
	}
	st.Set(sv.Key, raw)
	return raw, nil
}

// Kill clears the slot.
func (sv Value[T]) Kill(st Store) {
	st.Delete(sv.Key)
}
