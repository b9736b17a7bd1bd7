// Package codec defines the binary encoding contract between inherent
// providers and inherent modules: deterministic value codecs and the
// envelope shapes that carry encoded values through the inherent-data
// bag.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// ErrTooLarge is returned when an encoding exceeds a codec's bound.
var ErrTooLarge = errors.New("encoded value exceeds maximum length")

// Codec deterministically encodes and decodes values of type T.
//
// Encode must produce identical bytes for equal values on every node.
// MaxEncodedLen bounds the encoding; both directions enforce it.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
	MaxEncodedLen() int
}

func checkLen(n, max int) error {
	if n > max {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, n, max)
	}
	return nil
}

// Cramberry encodes T with cramberry struct tags. T is expected to be
// a struct whose fields carry `cramberry:"N"` tags.
type Cramberry[T any] struct {
	Max int
}

// NewCramberry returns a cramberry codec bounded to max bytes.
func NewCramberry[T any](max int) Cramberry[T] {
	return Cramberry[T]{Max: max}
}

func (c Cramberry[T]) Encode(v T) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	if err := checkLen(len(data), c.Max); err != nil {
		return nil, err
	}
	return data, nil
}

func (c Cramberry[T]) Decode(b []byte) (T, error) {
	var v T
	if err := checkLen(len(b), c.Max); err != nil {
		return v, err
	}
	if err := cramberry.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("cramberry unmarshal: %w", err)
	}
	return v, nil
}

func (c Cramberry[T]) MaxEncodedLen() int { return c.Max }

// Uint64 encodes a uint64 as 8 big-endian bytes.
type Uint64 struct{}

func (Uint64) Encode(v uint64) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf, nil
}

func (Uint64) Decode(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("uint64 must be 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func (Uint64) MaxEncodedLen() int { return 8 }

// Bytes passes opaque byte values through unchanged, bounded to Max.
type Bytes struct {
	Max int
}

func (c Bytes) Encode(v []byte) ([]byte, error) {
	if err := checkLen(len(v), c.Max); err != nil {
		return nil, err
	}
	return bytes.Clone(v), nil
}

func (c Bytes) Decode(b []byte) ([]byte, error) {
	if err := checkLen(len(b), c.Max); err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (c Bytes) MaxEncodedLen() int { return c.Max }
