// Package memstore is an in-process Backend used for tests and dry runs.
package memstore

import (
	"context"
	"sync"

	"budgeter/internal/store"
)

type Store struct {
	mu       sync.Mutex
	docs     map[store.Kind][]byte
	writeErr error
	writes   int
}

func New() *Store {
	return &Store{docs: make(map[store.Kind][]byte)}
}

// Read returns a copy of the stored document.
func (s *Store) Read(_ context.Context, kind store.Kind) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[kind]
	if !ok {
		return nil, store.ErrNoDocument
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Write(_ context.Context, kind store.Kind, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.docs[kind] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Put seeds a raw document, bypassing any failure set with FailWrites.
func (s *Store) Put(kind store.Kind, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[kind] = append([]byte(nil), data...)
}

// FailWrites makes every following Write return err; nil restores writes.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes reports how many writes succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
