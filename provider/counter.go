package provider

import (
	"context"
	"sync"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/types"
)

// Integer is the set of value types a Counter can advance.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Compile-time interface checks.
var (
	_ inherents.InherentDataProvider = (*Counter[uint64])(nil)
	_ inherents.Identified           = (*Counter[uint64])(nil)
)

// Counter emits its held value and advances it by one on every supply,
// producing a strictly increasing sequence absent external resets.
//
// The held value is guarded by a mutex so diagnostic and update paths
// may touch it while the authoring path polls; the lock covers only
// the read-then-increment, never the encoding.
type Counter[T Integer] struct {
	env  codec.Envelope[T]
	opts options

	mu    sync.Mutex
	value T
	has   bool
}

// NewCounter creates a counter starting at *initial, or holding
// nothing when initial is nil.
func NewCounter[T Integer](env codec.Envelope[T], initial *T, opts ...Option) *Counter[T] {
	c := &Counter[T]{env: env, opts: buildOptions(env.ID, opts)}
	if initial != nil {
		c.value, c.has = *initial, true
	}
	return c
}

func (c *Counter[T]) InherentIdentifier() types.Identifier { return c.env.ID }

// advance returns the current value and replaces it with its successor.
func (c *Counter[T]) advance() (cur T, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return cur, false, nil
	}
	cur = c.value
	next := cur + 1
	if next < cur {
		return cur, true, inherents.NewPreconditionError(c.env.ID, "counter exhausted")
	}
	c.value = next
	return cur, true, nil
}

func (c *Counter[T]) ProvideInherentData(_ context.Context, data *types.InherentData) error {
	cur, ok, err := c.advance()
	if err != nil {
		return err
	}
	if !ok {
		return c.opts.absent(c.env.ID)
	}
	if err := c.env.Put(data, cur); err != nil {
		return err
	}
	c.opts.metrics.InherentProvided(c.env.ID)
	c.opts.log.Debug().Uint64("value", uint64(cur)).Msg("Provided inherent data")
	return nil
}

func (c *Counter[T]) TryHandleError(_ context.Context, id types.Identifier, raw []byte) (bool, error) {
	return HandleError(c.env.ID, id, raw)
}

// Current returns the value the next supply will emit.
func (c *Counter[T]) Current() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.has
}

// Reset replaces the held value.
func (c *Counter[T]) Reset(v T) {
	c.mu.Lock()
	c.value, c.has = v, true
	c.mu.Unlock()
}

// Clear drops the held value.
func (c *Counter[T]) Clear() {
	c.mu.Lock()
	var zero T
	c.value, c.has = zero, false
	c.mu.Unlock()
}
