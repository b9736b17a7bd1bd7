package extdata

// SetCall stores Value in the module's slot. It is the module's
// inherent call and is only accepted from the none origin.
type SetCall[T any] struct {
	Value T
}

func (SetCall[T]) CallName() string { return "set" }
