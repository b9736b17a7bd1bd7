// Package counter wires a self-incrementing uint64 inherent channel
// end to end: a node-side provider built from configuration, the
// on-chain extdata module, and a runtime authoring blocks.
//
// The channel value is an 8-byte big-endian uint64.
package counter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/config"
	"github.com/blockberries/inherents/extdata"
	"github.com/blockberries/inherents/metrics"
	"github.com/blockberries/inherents/provider"
	"github.com/blockberries/inherents/runtime"
	"github.com/blockberries/inherents/store"
	"github.com/blockberries/inherents/types"
)

// App is a single-node chain carrying one uint64 inherent channel.
type App struct {
	log      zerolog.Logger
	module   *extdata.Module[uint64]
	provider inherents.InherentDataProvider
	counter  *provider.Counter[uint64] // nil for the static variant
	rt       *runtime.Runtime
	author   *runtime.Author

	mu      sync.RWMutex
	history []uint64
}

// New builds the app from cfg. m may be nil.
func New(log zerolog.Logger, cfg config.Config, m metrics.InherentMetrics) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.Noop{}
	}
	id, err := cfg.ChannelIdentifier()
	if err != nil {
		return nil, err
	}
	initial, err := cfg.InitialValue()
	if err != nil {
		return nil, err
	}

	app := &App{log: log.With().Str("component", "counter").Logger()}

	app.module, err = extdata.New(log, extdata.Config[uint64]{
		Identifier: id,
		Codec:      codec.Uint64{},
		Shape:      cfg.EnvelopeShape(),
		Observer:   app.observe,
		Metrics:    m,
	})
	if err != nil {
		return nil, fmt.Errorf("counter: %w", err)
	}

	opts := []provider.Option{
		provider.WithPolicy(cfg.ProviderPolicy()),
		provider.WithLogger(log),
		provider.WithMetrics(m),
	}
	switch cfg.Variant {
	case config.VariantCounter:
		app.counter = provider.NewCounter(app.module.Envelope(), initial, opts...)
		app.provider = app.counter
	default:
		app.provider = provider.NewStatic(app.module.Envelope(), initial, opts...)
	}

	app.rt = runtime.New(log, store.NewMemStore())
	if err := app.rt.Register(app.module); err != nil {
		return nil, err
	}
	app.author = runtime.NewAuthor(log, app.rt, app.provider)
	return app, nil
}

func (app *App) observe(ev extdata.ExternalDataSet[uint64]) {
	app.mu.Lock()
	app.history = append(app.history, ev.Data)
	app.mu.Unlock()
	app.log.Info().Uint64("value", ev.Data).Msg("Received inherent value")
}

// ProduceBlock authors and finalizes block n.
func (app *App) ProduceBlock(ctx context.Context, n types.BlockNumber) (types.Block, types.BlockOutcome, error) {
	return app.author.BuildBlock(ctx, n, nil)
}

// Value reads the value set in the last block, if any.
func (app *App) Value() (uint64, bool, error) {
	return app.module.Get(app.rt.Store())
}

// History returns every value accepted so far, in block order.
func (app *App) History() []uint64 {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return append([]uint64(nil), app.history...)
}

// Counter returns the self-incrementing provider, or nil for the
// static variant.
func (app *App) Counter() *provider.Counter[uint64] { return app.counter }

// Provider returns the node-side provider.
func (app *App) Provider() inherents.InherentDataProvider { return app.provider }

// Module returns the on-chain module.
func (app *App) Module() *extdata.Module[uint64] { return app.module }

// Runtime returns the block executive.
func (app *App) Runtime() *runtime.Runtime { return app.rt }
