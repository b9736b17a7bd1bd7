// Package metrics exposes Prometheus collectors for inherent channels.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blockberries/inherents/types"
)

const (
	namespace = "inherents"

	LabelInherent = "inherent"
	LabelReason   = "reason"
)

// Rejection reasons reported by modules.
const (
	ReasonBadOrigin  = "bad_origin"
	ReasonAlreadySet = "already_set"
	ReasonEncoding   = "encoding"
)

// InherentMetrics receives per-channel lifecycle signals from
// providers and modules.
type InherentMetrics interface {
	// InherentProvided records that a provider put an envelope in a bag.
	InherentProvided(id types.Identifier)
	// InherentSet records an accepted set call.
	InherentSet(id types.Identifier)
	// InherentRejected records a rejected set call.
	InherentRejected(id types.Identifier, reason string)
	// SlotReset records the per-block storage reset.
	SlotReset(id types.Identifier)
	// InherentRequired records the latest required-ness decision.
	InherentRequired(id types.Identifier, required bool)
}

// Compile-time interface checks.
var (
	_ InherentMetrics = (*Collector)(nil)
	_ InherentMetrics = Noop{}
)

// Collector implements InherentMetrics on Prometheus vectors.
type Collector struct {
	provided *prometheus.CounterVec
	set      *prometheus.CounterVec
	rejected *prometheus.CounterVec
	resets   *prometheus.CounterVec
	required *prometheus.GaugeVec
}

// NewCollector creates the inherent collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		provided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provided_total",
			Help:      "number of envelopes put into inherent-data bags by providers",
		}, []string{LabelInherent}),
		set: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "set_total",
			Help:      "number of accepted inherent set calls",
		}, []string{LabelInherent}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "number of rejected inherent set calls",
		}, []string{LabelInherent, LabelReason}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_resets_total",
			Help:      "number of per-block inherent slot resets",
		}, []string{LabelInherent}),
		required: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "required",
			Help:      "1 if the last required-ness check found the inherent required, else 0",
		}, []string{LabelInherent}),
	}
	for _, col := range []prometheus.Collector{c.provided, c.set, c.rejected, c.resets, c.required} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) InherentProvided(id types.Identifier) {
	c.provided.With(prometheus.Labels{LabelInherent: id.String()}).Inc()
}

func (c *Collector) InherentSet(id types.Identifier) {
	c.set.With(prometheus.Labels{LabelInherent: id.String()}).Inc()
}

func (c *Collector) InherentRejected(id types.Identifier, reason string) {
	c.rejected.With(prometheus.Labels{LabelInherent: id.String(), LabelReason: reason}).Inc()
}

func (c *Collector) SlotReset(id types.Identifier) {
	c.resets.With(prometheus.Labels{LabelInherent: id.String()}).Inc()
}

func (c *Collector) InherentRequired(id types.Identifier, required bool) {
	v := 0.0
	if required {
		v = 1
	}
	c.required.With(prometheus.Labels{LabelInherent: id.String()}).Set(v)
}

// Noop discards all signals.
type Noop struct{}

func (Noop) InherentProvided(types.Identifier)         {}
func (Noop) InherentSet(types.Identifier)              {}
func (Noop) InherentRejected(types.Identifier, string) {}
func (Noop) SlotReset(types.Identifier)                {}
func (Noop) InherentRequired(types.Identifier, bool)   {}
