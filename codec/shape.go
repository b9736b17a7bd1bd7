package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// ErrMalformedEnvelope is returned when raw bag bytes do not match the
// channel's declared shape.
var ErrMalformedEnvelope = errors.New("malformed inherent envelope")

// DefaultFixedSize is the width of the fixed envelope shape.
const DefaultFixedSize = 100

// Shape is the declared layout of a channel's raw bag payload.
// Wrap turns a value encoding into the raw payload; Unwrap recovers it.
type Shape interface {
	Wrap(encoded []byte) ([]byte, error)
	Unwrap(raw []byte) ([]byte, error)
	String() string
}

type varPayload struct {
	Data []byte `cramberry:"1"`
}

// VarBytes carries the encoding as an unbounded byte sequence.
type VarBytes struct{}

func (VarBytes) Wrap(encoded []byte) ([]byte, error) {
	raw, err := cramberry.Marshal(varPayload{Data: encoded})
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return raw, nil
}

func (VarBytes) Unwrap(raw []byte) ([]byte, error) {
	var p varPayload
	if err := cramberry.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return p.Data, nil
}

func (VarBytes) String() string { return "bytes" }

// FixedBytes carries the encoding in an array of exactly Size bytes:
// a uvarint length prefix, the encoding, then zero padding.
type FixedBytes struct {
	Size int
}

// Fixed returns the fixed shape with the default width.
func Fixed() FixedBytes { return FixedBytes{Size: DefaultFixedSize} }

func (s FixedBytes) Wrap(encoded []byte) ([]byte, error) {
	prefix := binary.AppendUvarint(nil, uint64(len(encoded)))
	if len(prefix)+len(encoded) > s.Size {
		return nil, fmt.Errorf("%w: %d bytes do not fit a %d-byte envelope", ErrTooLarge, len(encoded), s.Size)
	}
	raw := make([]byte, s.Size)
	n := copy(raw, prefix)
	copy(raw[n:], encoded)
	return raw, nil
}

func (s FixedBytes) Unwrap(raw []byte) ([]byte, error) {
	if len(raw) != s.Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedEnvelope, s.Size, len(raw))
	}
	l, n := binary.Uvarint(raw)
	if n <= 0 || l > uint64(s.Size-n) {
		return nil, fmt.Errorf("%w: bad length prefix", ErrMalformedEnvelope)
	}
	end := n + int(l)
	for _, b := range raw[end:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrMalformedEnvelope)
		}
	}
	return raw[n:end:end], nil
}

func (s FixedBytes) String() string { return fmt.Sprintf("fixed:%d", s.Size) }
