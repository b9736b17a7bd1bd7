// Package provider implements off-chain inherent data providers.
//
// A provider owns the value it offers. Static holds a fixed value;
// Counter emits its value and advances it on every supply. Both share
// the same error classification: every error reported for their own
// channel is fatal, errors for other channels are not their concern.
package provider

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/metrics"
	"github.com/blockberries/inherents/types"
)

// Policy decides what supplying without a held value means.
type Policy uint8

const (
	// Optional: absence is legal; nothing is put in the bag.
	Optional Policy = iota
	// Strict: absence is a configuration defect reported as a
	// *inherents.PreconditionError.
	Strict
)

func (p Policy) String() string {
	switch p {
	case Optional:
		return "optional"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ParsePolicy parses "optional" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "optional", "":
		return Optional, nil
	case "strict":
		return Strict, nil
	default:
		return Optional, fmt.Errorf("unknown provider policy %q", s)
	}
}

type options struct {
	policy  Policy
	log     zerolog.Logger
	metrics metrics.InherentMetrics
}

func defaultOptions() options {
	return options{
		policy:  Optional,
		log:     zerolog.Nop(),
		metrics: metrics.Noop{},
	}
}

// Option configures a provider.
type Option func(*options)

// WithPolicy sets the absence policy. The default is Optional.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the provider's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics sets the provider's metrics sink.
func WithMetrics(m metrics.InherentMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(id types.Identifier, opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With().Str("component", "provider").Str("inherent", id.String()).Logger()
	return o
}

// absent applies the policy to a supply attempt with no held value.
func (o options) absent(id types.Identifier) error {
	if o.policy == Strict {
		return inherents.NewPreconditionError(id, "strict provider holds no data")
	}
	o.log.Debug().Msg("No inherent data held, skipping")
	return nil
}

// HandleError is the classifier for single-channel providers.
func HandleError(own, id types.Identifier, raw []byte) (bool, error) {
	if id != own {
		return false, nil
	}
	return true, inherents.NewFatalError(own, fmt.Sprintf("error processing inherent: %x", raw))
}
