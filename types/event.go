package types

// EventAttribute is a single key-value tag within an event.
type EventAttribute struct {
	Key   string `cramberry:"1"`
	Value string `cramberry:"2"`
	Index bool   `cramberry:"3"` // Whether indexers should pick this up.
}

// Event is a module-emitted notification.
type Event struct {
	Module     string           `cramberry:"1"`
	Kind       string           `cramberry:"2"`
	Attributes []EventAttribute `cramberry:"3"`
}

// Attribute returns the value of the first attribute named key.
func (e Event) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
