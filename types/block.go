package types

// Call is a state-changing operation routed to one module.
// Modules define their own call variants; the executive only needs
// the variant name for logging and outcomes.
type Call interface {
	CallName() string
}

// Extrinsic is one entry of a block body: a call addressed to a module,
// optionally signed. Unsigned extrinsics are dispatched with the none
// origin.
type Extrinsic struct {
	Module string
	Call   Call
	Signer *AccountID
}

// Origin derives the dispatch origin of the extrinsic.
func (x Extrinsic) Origin() Origin {
	if x.Signer == nil {
		return NoneOrigin()
	}
	return SignedOrigin(*x.Signer)
}

// Block is a built block: its number and ordered extrinsics.
// Inherent extrinsics come first.
type Block struct {
	Number     BlockNumber
	Extrinsics []Extrinsic
}

// ApplyOutcome is the result of applying a single extrinsic.
type ApplyOutcome struct {
	// Position of this extrinsic in the block (0-indexed).
	Index uint32 `cramberry:"1"`
	// Result code. 0 = success.
	Code uint32 `cramberry:"2"`
	// Human-readable failure reason (for debugging).
	Info string `cramberry:"3"`
	// Events emitted while applying this extrinsic.
	Events []Event `cramberry:"4"`
}

// OK returns true if the extrinsic was applied successfully.
func (o ApplyOutcome) OK() bool { return o.Code == 0 }

// BlockOutcome is the output of executing a block.
type BlockOutcome struct {
	Number BlockNumber `cramberry:"1"`
	// Total weight reported by initialization hooks and calls.
	Weight Weight `cramberry:"2"`
	// Per-extrinsic results, in block order.
	Outcomes []ApplyOutcome `cramberry:"3"`
}

// Events returns every event of the block in emission order.
func (b BlockOutcome) Events() []Event {
	var out []Event
	for _, o := range b.Outcomes {
		out = append(out, o.Events...)
	}
	return out
}
