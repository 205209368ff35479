// Package store provides the concurrent schema store and the change-aware
// loader that populates it from a source directory.
//
// A Store maps caller-chosen primary keys (typically a schema's id) to parsed
// schema documents. It is safe for many concurrent readers alongside
// occasional writer batches from Loader.Update. Alongside each document the
// store records which source produced it and when that source was last
// modified; the source stem is used only for staleness comparison during
// reloads, never for lookup.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// Entry is one keyed schema document with its load metadata.
type Entry struct {
	// Key is the primary lookup key, supplied by the caller
	Key string
	// Source is the stem of the source that produced the document
	Source string
	// ModTime is the source's modification time when it was read
	ModTime time.Time
	// Schema is the parsed schema document
	Schema any
}

// Store is a concurrent keyed store of parsed schema documents.
// The zero value is not usable; construct with New.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	sources map[string]time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]Entry),
		sources: make(map[string]time.Time),
	}
}

// Get returns the schema stored under key. A missing key is always a
// *jesseerrors.NotFoundError, including when the store was never populated.
func (s *Store) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, &jesseerrors.NotFoundError{Key: key}
	}
	return e.Schema, nil
}

// Put inserts entries, overwriting any existing entry with the same Key
// (last write wins). Each entry becomes visible atomically on its own; a
// multi-entry batch does not appear atomically as a whole.
func (s *Store) Put(entries ...Entry) {
	for _, e := range entries {
		s.mu.Lock()
		s.entries[e.Key] = e
		if e.Source != "" {
			s.sources[e.Source] = e.ModTime
		}
		s.mu.Unlock()
	}
}

// SourceModTime returns the recorded modification time for a source stem.
// It exists for staleness comparison during reloads; it never resolves
// schema lookups.
func (s *Store) SourceModTime(source string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.sources[source]
	return t, ok
}

// Keys returns every primary key currently in the store, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
