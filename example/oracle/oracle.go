// Package oracle carries an asset price into every block through a
// fixed-width inherent channel. Prices are cramberry-encoded structs;
// the node updates its feed from outside and the chain reads the
// latest price for the current block only.
package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/extdata"
	"github.com/blockberries/inherents/metrics"
	"github.com/blockberries/inherents/provider"
	"github.com/blockberries/inherents/types"
)

const (
	// ModuleName routes price extrinsics.
	ModuleName = "oracle"
	// MaxPriceLen bounds the encoded price.
	MaxPriceLen = 64
)

// Identifier is the price channel.
var Identifier = types.MustIdentifier("oracle00")

// Price is an asset quote with a fixed number of decimals.
type Price struct {
	Symbol   string `cramberry:"1"`
	Value    uint64 `cramberry:"2"`
	Decimals uint32 `cramberry:"3"`
}

func (p Price) String() string {
	return fmt.Sprintf("%s=%d/10^%d", p.Symbol, p.Value, p.Decimals)
}

// Codec is the price codec shared by the feed and the module.
func Codec() codec.Cramberry[Price] {
	return codec.NewCramberry[Price](MaxPriceLen)
}

// Envelope is the price channel's envelope: fixed 100-byte width.
func Envelope() codec.Envelope[Price] {
	return codec.NewEnvelope[Price](Identifier, Codec(), codec.Fixed())
}

// NewModule returns the on-chain price module.
func NewModule(log zerolog.Logger, observer func(extdata.ExternalDataSet[Price]), m metrics.InherentMetrics) (*extdata.Module[Price], error) {
	return extdata.New(log, extdata.Config[Price]{
		Name:       ModuleName,
		Identifier: Identifier,
		Codec:      Codec(),
		Shape:      codec.Fixed(),
		Observer:   observer,
		Metrics:    m,
	})
}

// Compile-time interface checks.
var (
	_ inherents.InherentDataProvider = (*Feed)(nil)
	_ inherents.Identified           = (*Feed)(nil)
)

// Feed is the node-side provider. It offers the latest price it was
// told about; a quote is offered to one block only when Once is set.
type Feed struct {
	log  zerolog.Logger
	env  codec.Envelope[Price]
	once bool

	mu     sync.Mutex
	latest *Price
}

// NewFeed creates an empty feed. With once set, each update is offered
// to a single block.
func NewFeed(log zerolog.Logger, once bool) *Feed {
	return &Feed{
		log:  log.With().Str("component", "oracle_feed").Logger(),
		env:  Envelope(),
		once: once,
	}
}

// Update replaces the latest price.
func (f *Feed) Update(p Price) {
	f.mu.Lock()
	f.latest = &p
	f.mu.Unlock()
	f.log.Debug().Stringer("price", p).Msg("Price updated")
}

func (f *Feed) InherentIdentifier() types.Identifier { return Identifier }

func (f *Feed) ProvideInherentData(_ context.Context, data *types.InherentData) error {
	f.mu.Lock()
	p := f.latest
	if f.once {
		f.latest = nil
	}
	f.mu.Unlock()

	if p == nil {
		return nil
	}
	return f.env.Put(data, *p)
}

func (f *Feed) TryHandleError(_ context.Context, id types.Identifier, raw []byte) (bool, error) {
	return provider.HandleError(Identifier, id, raw)
}
