package types

import (
	"bytes"
	"sort"
)

// InherentData is the per-block bag of inherent envelopes, keyed by
// channel identifier. It holds at most one raw payload per identifier;
// a second put for the same identifier overwrites the first.
//
// The zero value is not usable; construct with NewInherentData.
type InherentData struct {
	data map[Identifier][]byte
}

// DataEntry is one envelope of an InherentData bag in wire form.
type DataEntry struct {
	Identifier Identifier `cramberry:"1"`
	Data       []byte     `cramberry:"2"`
}

// NewInherentData returns an empty bag.
func NewInherentData() *InherentData {
	return &InherentData{data: make(map[Identifier][]byte)}
}

// InherentDataFromEntries rebuilds a bag from its wire form.
// Later entries win over earlier ones with the same identifier.
func InherentDataFromEntries(entries []DataEntry) *InherentData {
	d := NewInherentData()
	for _, e := range entries {
		d.Put(e.Identifier, e.Data)
	}
	return d
}

// Put stores raw under id, replacing any previous payload.
// The bag keeps its own copy of raw.
func (d *InherentData) Put(id Identifier, raw []byte) {
	d.data[id] = bytes.Clone(raw)
}

// Get returns the raw payload stored under id.
func (d *InherentData) Get(id Identifier) ([]byte, bool) {
	raw, ok := d.data[id]
	if !ok {
		return nil, false
	}
	return bytes.Clone(raw), true
}

// Has reports whether an envelope exists for id.
func (d *InherentData) Has(id Identifier) bool {
	_, ok := d.data[id]
	return ok
}

// Remove deletes the envelope for id, if any.
func (d *InherentData) Remove(id Identifier) {
	delete(d.data, id)
}

// Len returns the number of envelopes in the bag.
func (d *InherentData) Len() int { return len(d.data) }

// Identifiers returns the identifiers present, in ascending byte order.
func (d *InherentData) Identifiers() []Identifier {
	ids := make([]Identifier, 0, len(d.data))
	for id := range d.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Entries returns the bag in wire form, ordered by identifier so the
// encoding is deterministic.
func (d *InherentData) Entries() []DataEntry {
	ids := d.Identifiers()
	out := make([]DataEntry, len(ids))
	for i, id := range ids {
		out[i] = DataEntry{Identifier: id, Data: bytes.Clone(d.data[id])}
	}
	return out
}
