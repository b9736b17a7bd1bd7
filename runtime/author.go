package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/types"
)

// ErrUnhandledInherentError is returned when a fatal inherent error
// reported for a built block is claimed by no provider.
var ErrUnhandledInherentError = errors.New("inherents/runtime: unhandled fatal inherent error")

// Author builds blocks on a Runtime, gathering inherent data from a
// provider.
type Author struct {
	log      zerolog.Logger
	rt       *Runtime
	provider inherents.InherentDataProvider
}

// NewAuthor creates an authoring pipeline. provider is usually a
// provider.List.
func NewAuthor(log zerolog.Logger, rt *Runtime, provider inherents.InherentDataProvider) *Author {
	return &Author{
		log:      log.With().Str("component", "author").Logger(),
		rt:       rt,
		provider: provider,
	}
}

// BuildBlock authors block n: it polls the provider, applies the
// resulting inherents followed by the admissible pending transactions,
// checks the built block and routes every reported error back to the
// provider. The block is finalized only when nothing aborts it.
func (a *Author) BuildBlock(ctx context.Context, n types.BlockNumber, pending []types.Extrinsic) (types.Block, types.BlockOutcome, error) {
	data := types.NewInherentData()
	if err := a.provider.ProvideInherentData(ctx, data); err != nil {
		return types.Block{}, types.BlockOutcome{}, fmt.Errorf("inherents/runtime: provide inherent data: %w", err)
	}

	block := types.Block{Number: n}
	a.rt.InitializeBlock(n)

	for _, ext := range a.rt.InherentExtrinsics(data) {
		if _, err := a.rt.ApplyExtrinsic(ext); err != nil {
			a.rt.AbortBlock()
			return types.Block{}, types.BlockOutcome{}, err
		}
		block.Extrinsics = append(block.Extrinsics, ext)
	}

	for _, ext := range pending {
		if err := a.rt.ValidateTransaction(ext); err != nil {
			a.log.Warn().Err(err).Msg("Dropping inadmissible transaction")
			continue
		}
		if _, err := a.rt.ApplyExtrinsic(ext); err != nil {
			a.rt.AbortBlock()
			return types.Block{}, types.BlockOutcome{}, err
		}
		block.Extrinsics = append(block.Extrinsics, ext)
	}

	if err := a.check(ctx, block, data); err != nil {
		a.rt.AbortBlock()
		return types.Block{}, types.BlockOutcome{}, err
	}

	outcome := a.rt.FinalizeBlock()
	a.log.Info().Stringer("block", n).Int("inherents", data.Len()).Msg("Block authored")
	return block, outcome, nil
}

func (a *Author) check(ctx context.Context, block types.Block, data *types.InherentData) error {
	result, err := a.rt.CheckInherents(block, data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInherentCheckFailed, err)
	}

	var errs *multierror.Error
	for _, e := range result.Errors() {
		handled, verdict := a.provider.TryHandleError(ctx, e.Identifier, e.Data)
		switch {
		case handled && verdict != nil:
			errs = multierror.Append(errs, verdict)
		case handled:
			a.log.Debug().Stringer("inherent", e.Identifier).Msg("Inherent error ignored by provider")
		case result.FatalError():
			errs = multierror.Append(errs, fmt.Errorf("%w: %s", ErrUnhandledInherentError, e.Identifier))
		default:
			a.log.Warn().Stringer("inherent", e.Identifier).Msg("Unhandled non-fatal inherent error")
		}
	}
	return errs.ErrorOrNil()
}
