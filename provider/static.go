package provider

import (
	"context"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/types"
)

// Compile-time interface checks.
var (
	_ inherents.InherentDataProvider = (*Static[uint64])(nil)
	_ inherents.Identified           = (*Static[uint64])(nil)
)

// Static offers a fixed value, or nothing, on every supply.
type Static[T any] struct {
	env   codec.Envelope[T]
	opts  options
	value T
	has   bool
}

// NewStatic creates a provider offering *value, or nothing when value
// is nil.
func NewStatic[T any](env codec.Envelope[T], value *T, opts ...Option) *Static[T] {
	p := &Static[T]{env: env, opts: buildOptions(env.ID, opts)}
	if value != nil {
		p.value, p.has = *value, true
	}
	return p
}

func (p *Static[T]) InherentIdentifier() types.Identifier { return p.env.ID }

// Value returns the held value.
func (p *Static[T]) Value() (T, bool) { return p.value, p.has }

func (p *Static[T]) ProvideInherentData(_ context.Context, data *types.InherentData) error {
	if !p.has {
		return p.opts.absent(p.env.ID)
	}
	if err := p.env.Put(data, p.value); err != nil {
		return err
	}
	p.opts.metrics.InherentProvided(p.env.ID)
	p.opts.log.Debug().Msg("Provided inherent data")
	return nil
}

func (p *Static[T]) TryHandleError(_ context.Context, id types.Identifier, raw []byte) (bool, error) {
	return HandleError(p.env.ID, id, raw)
}
