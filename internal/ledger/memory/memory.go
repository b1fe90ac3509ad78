// Package memory provides an in-memory ledger store, used for local
// development and tests.
package memory

import (
	"context"
	"sync"

	"donnote/internal/core"
	"donnote/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	ledgers map[string][]core.Entry
}

func New() *Store {
	return &Store{ledgers: make(map[string][]core.Entry)}
}

// Append stores the entry at the tail of the user's ledger, creating the
// ledger if absent.
func (s *Store) Append(_ context.Context, userID string, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[userID] = append(s.ledgers[userID], e)
	return nil
}

// UndoLast removes and returns the tail entry.
func (s *Store) UndoLast(_ context.Context, userID string) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.ledgers[userID]
	if len(entries) == 0 {
		return core.Entry{}, ledger.ErrEmptyLedger
	}
	last := entries[len(entries)-1]
	s.ledgers[userID] = entries[:len(entries)-1]
	return last, nil
}

// Snapshot returns a copy of the user's entries in insertion order.
func (s *Store) Snapshot(_ context.Context, userID string) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.ledgers[userID]
	out := make([]core.Entry, len(entries))
	copy(out, entries)
	return out, nil
}
