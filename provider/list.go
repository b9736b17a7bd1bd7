package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/types"
)

// Compile-time interface check.
var _ inherents.InherentDataProvider = (*List)(nil)

// List polls a set of providers as one.
type List struct {
	log       zerolog.Logger
	providers []inherents.InherentDataProvider
	ids       []types.Identifier
}

// NewList combines providers. Providers that declare their channel via
// inherents.Identified must not share an identifier.
func NewList(log zerolog.Logger, providers ...inherents.InherentDataProvider) (*List, error) {
	l := &List{
		log:       log.With().Str("component", "provider_list").Logger(),
		providers: providers,
	}
	seen := make(map[types.Identifier]int, len(providers))
	for i, p := range providers {
		idp, ok := p.(inherents.Identified)
		if !ok {
			// Warn (but don't error): uniqueness can't be checked.
			l.log.Warn().Int("index", i).Msg("Provider does not declare an inherent identifier")
			continue
		}
		id := idp.InherentIdentifier()
		if j, dup := seen[id]; dup {
			return nil, fmt.Errorf("inherents: providers %d and %d share identifier %s", j, i, id)
		}
		seen[id] = i
		l.ids = append(l.ids, id)
	}
	return l, nil
}

// Len returns the number of providers.
func (l *List) Len() int { return len(l.providers) }

// Identifiers returns the declared identifiers in provider order.
func (l *List) Identifiers() []types.Identifier {
	return append([]types.Identifier(nil), l.ids...)
}

// ProvideInherentData polls every provider in order into data. Every
// provider is polled even after a failure; failures are aggregated.
func (l *List) ProvideInherentData(ctx context.Context, data *types.InherentData) error {
	var errs *multierror.Error
	for i, p := range l.providers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.ProvideInherentData(ctx, data); err != nil {
			l.log.Debug().Err(err).Int("index", i).Msg("Provider failed")
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// CreateInherentData polls every provider into a fresh bag.
func (l *List) CreateInherentData(ctx context.Context) (*types.InherentData, error) {
	data := types.NewInherentData()
	if err := l.ProvideInherentData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// TryHandleError routes the error to the first provider that claims it.
func (l *List) TryHandleError(ctx context.Context, id types.Identifier, raw []byte) (bool, error) {
	for _, p := range l.providers {
		if handled, err := p.TryHandleError(ctx, id, raw); handled {
			return true, err
		}
	}
	return false, nil
}
