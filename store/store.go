// Package store provides the explicit state object that block
// execution threads through module transitions.
//
// Modules never hold state themselves: the executive owns a Store for
// the duration of a block and passes it to every hook and call.
package store

import (
	"bytes"
	"sync"
)

// Store is the key-value view a module reads and writes during a block.
type Store interface {
	Get(key []byte) ([]byte, bool)
	Set(key, value []byte)
	Delete(key []byte)
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store with a staging layer.
//
// Writes land in the staged layer and become visible to reads
// immediately. Commit folds them into the committed layer; Discard
// drops them, restoring the last committed state.
type MemStore struct {
	mu        sync.RWMutex
	committed map[string][]byte
	// Staging area (between block initialization and Commit).
	// A nil value marks a deletion.
	staged map[string][]byte
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		committed: make(map[string][]byte),
		staged:    make(map[string][]byte),
	}
}

func (s *MemStore) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.staged[string(key)]; ok {
		if v == nil {
			return nil, false
		}
		return bytes.Clone(v), true
	}
	v, ok := s.committed[string(key)]
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

func (s *MemStore) Set(key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	s.mu.Lock()
	s.staged[string(key)] = bytes.Clone(value)
	s.mu.Unlock()
}

func (s *MemStore) Delete(key []byte) {
	s.mu.Lock()
	s.staged[string(key)] = nil
	s.mu.Unlock()
}

// Commit makes all staged writes durable in the committed layer.
func (s *MemStore) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.staged {
		if v == nil {
			delete(s.committed, k)
			continue
		}
		s.committed[k] = v
	}
	s.staged = make(map[string][]byte)
}

// Discard drops all staged writes.
func (s *MemStore) Discard() {
	s.mu.Lock()
	s.staged = make(map[string][]byte)
	s.mu.Unlock()
}

// Pending reports whether there are staged writes.
func (s *MemStore) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staged) > 0
}
