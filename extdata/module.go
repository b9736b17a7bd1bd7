package extdata

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blockberries/inherents"
	"github.com/blockberries/inherents/codec"
	"github.com/blockberries/inherents/metrics"
	"github.com/blockberries/inherents/store"
	"github.com/blockberries/inherents/types"
)

// DefaultName is the module name used when Config.Name is empty.
const DefaultName = "extdata"

// DefaultIdentifier is the channel used when Config.Identifier is zero.
var DefaultIdentifier = types.MustIdentifier("ext_data")

// Config binds the module to its value type and collaborators.
type Config[T any] struct {
	// Name routes extrinsics to the module.
	Name string
	// Identifier names the inherent channel.
	Identifier types.Identifier
	// Codec encodes values both in the bag and in storage. Required.
	Codec codec.Codec[T]
	// Shape of the bag payload. Defaults to codec.VarBytes.
	Shape codec.Shape
	// Observer, when set, receives every accepted value.
	Observer func(ExternalDataSet[T])
	// Errors is told about rejected calls.
	Errors ErrorSink
	// Metrics receives lifecycle signals.
	Metrics metrics.InherentMetrics
}

func (c Config[T]) withDefaults() Config[T] {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Identifier == (types.Identifier{}) {
		c.Identifier = DefaultIdentifier
	}
	if c.Shape == nil {
		c.Shape = codec.VarBytes{}
	}
	if c.Errors == nil {
		c.Errors = nopErrorSink{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop{}
	}
	return c
}

// Compile-time interface check.
var _ inherents.InherentModule = (*Module[uint64])(nil)

// Module is the external-data state machine. It holds configuration
// only; the slot lives in the store passed to each transition.
type Module[T any] struct {
	log  zerolog.Logger
	cfg  Config[T]
	env  codec.Envelope[T]
	slot store.Value[T]
}

// New creates the module.
func New[T any](log zerolog.Logger, cfg Config[T]) (*Module[T], error) {
	if cfg.Codec == nil {
		return nil, errors.New("extdata: config requires a codec")
	}
	cfg = cfg.withDefaults()
	return &Module[T]{
		log: log.With().
			Str("component", "module").
			Str("module", cfg.Name).
			Str("inherent", cfg.Identifier.String()).
			Logger(),
		cfg:  cfg,
		env:  codec.NewEnvelope(cfg.Identifier, cfg.Codec, cfg.Shape),
		slot: store.NewValue(cfg.Name, "ExternalData", cfg.Codec),
	}, nil
}

func (m *Module[T]) Name() string { return m.cfg.Name }

func (m *Module[T]) InherentIdentifier() types.Identifier { return m.cfg.Identifier }

// Envelope returns the channel envelope, for providers feeding this module.
func (m *Module[T]) Envelope() codec.Envelope[T] { return m.env }

// Get reads the value set in the current block, if any.
func (m *Module[T]) Get(st store.Store) (T, bool, error) {
	return m.slot.Get(st)
}

// Set stores v. Only the none origin may set, and only once per block.
func (m *Module[T]) Set(st store.Store, ev inherents.EventSink, origin types.Origin, v T) error {
	call := SetCall[T]{Value: v}
	if err := types.EnsureNone(origin); err != nil {
		return m.reject(call, metrics.ReasonBadOrigin, err)
	}
	if m.slot.Exists(st) {
		return m.reject(call, metrics.ReasonAlreadySet, ErrAlreadySet)
	}
	encoded, err := m.slot.Put(st, v)
	if err != nil {
		return m.reject(call, metrics.ReasonEncoding, fmt.Errorf("extdata: encode value: %w", err))
	}

	ev.Deposit(dataSetEvent(m.cfg.Name, m.cfg.Identifier, encoded))
	if m.cfg.Observer != nil {
		m.cfg.Observer(ExternalDataSet[T]{Identifier: m.cfg.Identifier, Data: v})
	}
	m.cfg.Metrics.InherentSet(m.cfg.Identifier)
	m.log.Info().Int("bytes", len(encoded)).Msg("External data set")
	return nil
}

func (m *Module[T]) reject(call types.Call, reason string, err error) error {
	m.cfg.Metrics.InherentRejected(m.cfg.Identifier, reason)
	m.cfg.Errors.CallRejected(m.cfg.Identifier, call, err)
	m.log.Warn().Err(err).Str("reason", reason).Msg("Set rejected")
	return err
}

// OnInitialize clears the slot. It runs at the start of every block,
// whether or not the block carries the inherent.
func (m *Module[T]) OnInitialize(st store.Store, n types.BlockNumber) types.Weight {
	m.slot.Kill(st)
	m.cfg.Metrics.SlotReset(m.cfg.Identifier)
	m.log.Debug().Stringer("block", n).Msg("Slot reset")
	return types.ZeroWeight
}

func (m *Module[T]) Dispatch(st store.Store, ev inherents.EventSink, origin types.Origin, call types.Call) error {
	switch c := call.(type) {
	case SetCall[T]:
		return m.Set(st, ev, origin, c.Value)
	case *SetCall[T]:
		return m.Set(st, ev, origin, c.Value)
	default:
		return fmt.Errorf("%w: %s cannot dispatch %T", inherents.ErrUnknownCall, m.cfg.Name, call)
	}
}

// Decode reads this channel's value from the bag. An absent entry and
// an undecodable entry both yield false.
func (m *Module[T]) Decode(data *types.InherentData) (T, bool) {
	v, ok, err := m.env.Get(data)
	if err != nil {
		m.log.Debug().Err(err).Msg("Undecodable inherent envelope treated as absent")
		var zero T
		return zero, false
	}
	return v, ok
}

func (m *Module[T]) CreateInherent(data *types.InherentData) (types.Call, bool) {
	v, ok := m.Decode(data)
	if !ok {
		return nil, false
	}
	return SetCall[T]{Value: v}, true
}

func (m *Module[T]) IsInherentRequired(data *types.InherentData) (inherents.InherentError, error) {
	_, ok := m.Decode(data)
	m.cfg.Metrics.InherentRequired(m.cfg.Identifier, ok)
	if !ok {
		return nil, nil
	}
	return InherentError{Code: CodeInherentRequiredForDataPresent}, nil
}

func (m *Module[T]) IsInherent(call types.Call) bool {
	switch call.(type) {
	case SetCall[T], *SetCall[T]:
		return true
	default:
		return false
	}
}
