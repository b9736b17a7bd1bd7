package extdata

import (
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/inherents"
)

// ErrAlreadySet is returned when set is called twice in one block.
var ErrAlreadySet = errors.New("extdata: already set")

// InherentErrorCode enumerates the inherent check failures.
type InherentErrorCode uint32

const (
	CodeOther InherentErrorCode = iota
	// CodeInherentRequiredForDataPresent: the bag offered decodable
	// data but the block carries no set call.
	CodeInherentRequiredForDataPresent
)

func (c InherentErrorCode) String() string {
	switch c {
	case CodeOther:
		return "Other"
	case CodeInherentRequiredForDataPresent:
		return "InherentRequiredForDataPresent"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// Compile-time interface check.
var _ inherents.InherentError = InherentError{}

// InherentError is reported by the module's inherent checks. Every
// code is fatal.
type InherentError struct {
	Code InherentErrorCode `cramberry:"1"`
}

func (e InherentError) Error() string {
	return "extdata inherent: " + e.Code.String()
}

func (InherentError) IsFatalError() bool { return true }

// Encode returns the deterministic binary form reported back to providers.
func (e InherentError) Encode() ([]byte, error) {
	data, err := cramberry.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return data, nil
}

// DecodeInherentError parses the binary form produced by Encode.
func DecodeInherentError(raw []byte) (InherentError, error) {
	var e InherentError
	if err := cramberry.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("cramberry unmarshal: %w", err)
	}
	return e, nil
}
