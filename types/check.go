package types

import "errors"

// ErrFatalErrorReported is returned by CheckInherentsResult.PutError
// once a fatal error has been recorded.
var ErrFatalErrorReported = errors.New("fatal inherent error already reported")

// CheckInherentsResult collects the per-channel errors found while
// checking the inherents of a block.
//
// A fatal error makes the block invalid. Recording one discards all
// previously recorded non-fatal errors, and no further errors may be
// recorded afterwards.
type CheckInherentsResult struct {
	fatal  bool
	errors *InherentData
}

// NewCheckInherentsResult returns an empty (okay) result.
func NewCheckInherentsResult() *CheckInherentsResult {
	return &CheckInherentsResult{errors: NewInherentData()}
}

// PutError records the encoded error for a channel.
func (r *CheckInherentsResult) PutError(id Identifier, encoded []byte, fatal bool) error {
	if r.fatal {
		return ErrFatalErrorReported
	}
	if fatal {
		r.errors = NewInherentData()
		r.fatal = true
	}
	r.errors.Put(id, encoded)
	return nil
}

// Ok reports whether no error was recorded.
func (r *CheckInherentsResult) Ok() bool { return r.errors.Len() == 0 }

// FatalError reports whether a fatal error was recorded.
func (r *CheckInherentsResult) FatalError() bool { return r.fatal }

// Error returns the encoded error recorded for id.
func (r *CheckInherentsResult) Error(id Identifier) ([]byte, bool) {
	return r.errors.Get(id)
}

// Errors returns every recorded error ordered by identifier.
func (r *CheckInherentsResult) Errors() []DataEntry {
	return r.errors.Entries()
}
